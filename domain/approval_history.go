package domain

import (
	"github.com/fundwit/go-commons/types"
)

type ApprovalAction string

const (
	ActionApproved ApprovalAction = "approved"
	ActionRejected ApprovalAction = "rejected"
)

// ApprovalHistoryEntry is append-only, one row per decision taken on a request.
// StepID is nil when the decision was taken without a configured workflow.
type ApprovalHistoryEntry struct {
	ID        types.ID  `json:"id" gorm:"primary_key"`
	RequestID types.ID  `json:"requestId" gorm:"index:idx_approval_history_request"`
	StepID    *types.ID `json:"stepId"`
	Level     int       `json:"level"`

	ActorID types.ID       `json:"actorId"`
	Action  ApprovalAction `json:"action"`
	Note    string         `json:"note"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (e *ApprovalHistoryEntry) TableName() string {
	return "approval_history"
}
