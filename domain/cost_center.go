package domain

import (
	"github.com/fundwit/go-commons/types"
)

type CostCenter struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Code string   `json:"code" gorm:"unique_index:uni_cost_center_code"`
	Name string   `json:"name"`

	ManagerID *types.ID `json:"managerId"`
	Active    bool      `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *CostCenter) TableName() string {
	return "cost_centers"
}

type Company struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	CNPJ   string   `json:"cnpj"`
	Active bool     `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *Company) TableName() string {
	return "companies"
}

type Supplier struct {
	ID            types.ID `json:"id" gorm:"primary_key"`
	CNPJ          string   `json:"cnpj" gorm:"unique_index:uni_supplier_cnpj"`
	CorporateName string   `json:"corporateName"`
	TradeName     string   `json:"tradeName"`

	Bank        string `json:"bank"`
	Agency      string `json:"agency"`
	Account     string `json:"account"`
	AccountType string `json:"accountType"`
	PixKey      string `json:"pixKey"`

	Active bool `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (s *Supplier) TableName() string {
	return "suppliers"
}
