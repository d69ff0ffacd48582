package settings

import (
	"net/http"

	"payflow/bizerror"
	"payflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathWorkflowConfig = "/v1/workflow-config"

func RegisterWorkflowConfigRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkflowConfig, middleWares...)
	g.GET("", handleQueryConfigs)
	g.PUT(":key", handleSetConfig)
}

func handleQueryConfigs(c *gin.Context) {
	records, err := QueryConfigsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleSetConfig(c *gin.Context) {
	key := c.Param("key")
	updating := ConfigUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := SetConfigValueFunc(key, &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
