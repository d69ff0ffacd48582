package domain

import (
	"github.com/fundwit/go-commons/types"
)

type StepKind string

const (
	// the step approver is derived from the cost center's manager field
	StepKindCostCenterManager StepKind = "cost_center_manager"
	// the step is approvable by any holder of one of the configured roles
	StepKindRole StepKind = "role"
	// the step is approvable by the configured users only
	StepKindUser StepKind = "user"
)

// WorkflowStep is one ordered stage of an approval workflow. Scope is encoded by
// CompanyID/CostCenterID: both nil = global default, CompanyID set = company-wide,
// CostCenterID set = cost-center specific (strongest).
type WorkflowStep struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	CompanyID    *types.ID `json:"companyId"`
	CostCenterID *types.ID `json:"costCenterId"`

	Name  string   `json:"name"`
	Order int      `json:"order" gorm:"column:order"`
	Kind  StepKind `json:"kind"`

	AmountMin *float64 `json:"amountMin" sql:"type:DECIMAL(14,2)"`
	AmountMax *float64 `json:"amountMax" sql:"type:DECIMAL(14,2)"`

	Active bool `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (s *WorkflowStep) TableName() string {
	return "workflow_steps"
}

// AppliesToAmount reports whether amount falls into the step's configured range.
// A nil bound does not constrain.
func (s *WorkflowStep) AppliesToAmount(amount float64) bool {
	if s.AmountMin != nil && amount < *s.AmountMin {
		return false
	}
	if s.AmountMax != nil && amount > *s.AmountMax {
		return false
	}
	return true
}

// StepApprover is one approver entry of a step: either a user or a role, never both.
type StepApprover struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	StepID types.ID `json:"stepId" gorm:"index:idx_step_approvers_step"`

	UserID *types.ID `json:"userId"`
	Role   string    `json:"role"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (a *StepApprover) TableName() string {
	return "step_approvers"
}

// StepDetail carries a step with its approver list, the shape the resolver returns.
type StepDetail struct {
	WorkflowStep
	Approvers []StepApprover `json:"approvers" gorm:"-"`
}
