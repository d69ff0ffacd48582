package flow

import (
	"net/http"

	"payflow/bizerror"
	"payflow/misc"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathWorkflowSteps      = "/v1/workflow-steps"
	PathWorkflowStepOrders = "/v1/workflow-step-orders"
	PathStepApprovers      = "/v1/step-approvers"
)

type stepQuery struct {
	CostCenterID *types.ID `form:"costCenterId"`
	CompanyID    *types.ID `form:"companyId"`
	ActiveOnly   bool      `form:"activeOnly"`
}

type resolutionQuery struct {
	CostCenterID types.ID  `form:"costCenterId" binding:"required"`
	CompanyID    *types.ID `form:"companyId"`
	Amount       float64   `form:"amount"`
}

func RegisterWorkflowStepsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkflowSteps, middleWares...)
	g.GET("", handleQuerySteps)
	g.POST("", handleCreateStep)
	g.PUT(":id", handleUpdateStep)
	g.DELETE(":id", handleDeleteStep)
	g.GET("resolved", handleResolveSteps)
	g.POST(":id/approvers", handleAddStepApprover)

	o := r.Group(PathWorkflowStepOrders, middleWares...)
	o.PUT("", handleUpdateStepOrders)

	a := r.Group(PathStepApprovers, middleWares...)
	a.DELETE(":id", handleRemoveStepApprover)
}

func handleQuerySteps(c *gin.Context) {
	query := stepQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	steps, err := ListStepsFunc(StepFilter{
		CostCenterID: query.CostCenterID, CompanyID: query.CompanyID, ActiveOnly: query.ActiveOnly,
	}, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, steps)
}

func handleCreateStep(c *gin.Context) {
	creation := StepCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := CreateStepFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func handleUpdateStep(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	updating := StepUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateStepFunc(id, &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteStep(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := DeleteStepFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleResolveSteps(c *gin.Context) {
	query := resolutionQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	steps, err := ResolveStepsFunc(query.CostCenterID, query.CompanyID, query.Amount,
		session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, steps)
}

func handleUpdateStepOrders(c *gin.Context) {
	var wantedOrders []StepOrderRangeUpdating
	if err := c.ShouldBindBodyWith(&wantedOrders, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateStepRangeOrdersFunc(wantedOrders, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleAddStepApprover(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation := ApproverCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	approver, err := AddStepApproverFunc(id, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, approver)
}

func handleRemoveStepApprover(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := RemoveStepApproverFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
