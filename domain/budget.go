package domain

import (
	"github.com/fundwit/go-commons/types"
)

// Budget is the yearly allocation of one cost center. UsedAmount grows by the
// request amount exactly once per finally approved request.
type Budget struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	CostCenterID types.ID `json:"costCenterId" gorm:"unique_index:uni_budget_cost_center_year"`
	Year         int      `json:"year" gorm:"unique_index:uni_budget_cost_center_year"`

	TotalAmount float64 `json:"totalAmount" sql:"type:DECIMAL(14,2) NOT NULL"`
	UsedAmount  float64 `json:"usedAmount" sql:"type:DECIMAL(14,2) NOT NULL"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (b *Budget) TableName() string {
	return "budgets"
}

func (b *Budget) Available() float64 {
	return b.TotalAmount - b.UsedAmount
}
