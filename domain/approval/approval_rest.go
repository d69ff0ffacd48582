package approval

import (
	"net/http"

	"payflow/bizerror"
	"payflow/domain/flow"
	"payflow/domain/request"
	"payflow/misc"
	"payflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathApprovals = "/v1/payment-requests"

func RegisterApprovalsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathApprovals, middleWares...)
	g.GET(":id/workflow", handleQueryRequestWorkflow)
	g.GET(":id/current-step", handleQueryCurrentStep)
	g.GET(":id/approval-history", handleQueryApprovalHistory)
	g.POST(":id/decisions", handleDecide)
}

func handleQueryRequestWorkflow(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s := session.ExtractSessionFromGinContext(c)

	r, err := request.DetailRequestFunc(id, s)
	if err != nil {
		panic(err)
	}
	steps, err := flow.ResolveStepsFunc(r.CostCenterID, r.CompanyID, r.Amount, s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, steps)
}

func handleQueryCurrentStep(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s := session.ExtractSessionFromGinContext(c)

	r, err := request.DetailRequestFunc(id, s)
	if err != nil {
		panic(err)
	}
	steps, err := flow.ResolveStepsFunc(r.CostCenterID, r.CompanyID, r.Amount, s)
	if err != nil {
		panic(err)
	}
	cur, err := LocateCurrentStepFunc(r, steps, s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, cur)
}

func handleQueryApprovalHistory(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	details, err := QueryApprovalHistoryFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, details)
}

func handleDecide(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation := DecisionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	result, err := DecideFunc(id, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
