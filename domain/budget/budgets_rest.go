package budget

import (
	"net/http"

	"payflow/bizerror"
	"payflow/misc"
	"payflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathBudgets = "/v1/budgets"

func RegisterBudgetsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathBudgets, middleWares...)
	g.GET("", handleQueryBudgets)
	g.POST("", handleCreateBudget)
	g.PUT(":id", handleUpdateBudget)
}

func handleQueryBudgets(c *gin.Context) {
	query := BudgetQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := QueryBudgetsFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCreateBudget(c *gin.Context) {
	creation := BudgetCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := CreateBudgetFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleUpdateBudget(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	updating := BudgetUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateBudgetFunc(id, &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
