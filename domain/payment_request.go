package domain

import (
	"github.com/fundwit/go-commons/types"
)

type RequestStatus string

const (
	StatusDraft           RequestStatus = "draft"
	StatusPendingApproval RequestStatus = "pending_approval"
	StatusApproved        RequestStatus = "approved"
	StatusRejected        RequestStatus = "rejected"
	StatusPaid            RequestStatus = "paid"
	StatusCancelled       RequestStatus = "cancelled"
)

type PaymentRequest struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Number string   `json:"number" gorm:"unique_index:uni_request_number"`

	CostCenterID types.ID  `json:"costCenterId"`
	CompanyID    *types.ID `json:"companyId"`
	SupplierID   types.ID  `json:"supplierId"`
	RequesterID  types.ID  `json:"requesterId"`

	Description string          `json:"description"`
	Amount      float64         `json:"amount" sql:"type:DECIMAL(14,2) NOT NULL"`
	DueDate     types.Timestamp `json:"dueDate" sql:"type:DATETIME(6)"`

	Status     RequestStatus    `json:"status"`
	ApproverID *types.ID        `json:"approverId"`
	ApprovedAt *types.Timestamp `json:"approvedAt" sql:"type:DATETIME(6)"`
	Note       string           `json:"note"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *PaymentRequest) TableName() string {
	return "payment_requests"
}

// RequestSequence holds the per-year counter behind request numbers like SP-2026-12
type RequestSequence struct {
	Year       int `json:"year" gorm:"primary_key"`
	NextNumber int `json:"nextNumber"`
}

func (s *RequestSequence) TableName() string {
	return "request_sequences"
}
