package costcenter

import (
	"net/http"

	"payflow/bizerror"
	"payflow/misc"
	"payflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathCostCenters = "/v1/cost-centers"
	PathCompanies   = "/v1/companies"
)

func RegisterCostCentersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathCostCenters, middleWares...)
	g.GET("", handleQueryCostCenters)
	g.POST("", handleCreateCostCenter)
	g.PUT(":id", handleUpdateCostCenter)

	c := r.Group(PathCompanies, middleWares...)
	c.GET("", handleQueryCompanies)
	c.POST("", handleCreateCompany)
	c.PUT(":id", handleUpdateCompany)
}

func handleQueryCostCenters(c *gin.Context) {
	query := CostCenterQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := QueryCostCentersFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCreateCostCenter(c *gin.Context) {
	creation := CostCenterCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := CreateCostCenterFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleUpdateCostCenter(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	updating := CostCenterUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateCostCenterFunc(id, &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryCompanies(c *gin.Context) {
	records, err := QueryCompaniesFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCreateCompany(c *gin.Context) {
	creation := CompanyCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := CreateCompanyFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleUpdateCompany(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	updating := CompanyUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateCompanyFunc(id, &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
