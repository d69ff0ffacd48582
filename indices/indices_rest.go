package indices

import (
	"net/http"

	"payflow/bizerror"
	"payflow/session"

	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests = "/v1/index-requests"
	PathRequestSearch = "/v1/request-search"
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequests)

	q := r.Group(PathRequestSearch, middleWares...)
	q.GET("", handleSearchRequests)
}

func handleIndexRequests(c *gin.Context) {
	success, err := ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": success})
}

func handleSearchRequests(c *gin.Context) {
	query := RequestSearchQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := SearchRequestsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
