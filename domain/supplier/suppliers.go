package supplier

import (
	"payflow/authority"
	"payflow/bizerror"
	"payflow/domain"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

var (
	supplierIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateSupplierFunc = CreateSupplier
	QuerySuppliersFunc = QuerySuppliers
	UpdateSupplierFunc = UpdateSupplier
)

type SupplierCreation struct {
	CNPJ          string `json:"cnpj" binding:"required,lte=18"`
	CorporateName string `json:"corporateName" binding:"required,lte=255"`
	TradeName     string `json:"tradeName" binding:"lte=255"`

	Bank        string `json:"bank"`
	Agency      string `json:"agency"`
	Account     string `json:"account"`
	AccountType string `json:"accountType"`
	PixKey      string `json:"pixKey"`
}

type SupplierUpdating struct {
	CorporateName string `json:"corporateName" binding:"required,lte=255"`
	TradeName     string `json:"tradeName" binding:"lte=255"`

	Bank        string `json:"bank"`
	Agency      string `json:"agency"`
	Account     string `json:"account"`
	AccountType string `json:"accountType"`
	PixKey      string `json:"pixKey"`

	Active bool `json:"active"`
}

type SupplierQuery struct {
	ActiveOnly bool   `form:"activeOnly"`
	Keyword    string `form:"keyword"`
}

func CreateSupplier(c *SupplierCreation, s *session.Session) (*domain.Supplier, error) {
	if !s.Perms.HasAnyRole(authority.RoleAdmin, authority.RoleApprover) {
		return nil, bizerror.ErrForbidden
	}

	record := domain.Supplier{
		ID:            idgen.NextID(supplierIdWorker),
		CNPJ:          c.CNPJ,
		CorporateName: c.CorporateName,
		TradeName:     c.TradeName,
		Bank:          c.Bank,
		Agency:        c.Agency,
		Account:       c.Account,
		AccountType:   c.AccountType,
		PixKey:        c.PixKey,
		Active:        true,
		CreateTime:    types.CurrentTimestamp(),
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func QuerySuppliers(query SupplierQuery, s *session.Session) ([]domain.Supplier, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&domain.Supplier{})
	if query.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if query.Keyword != "" {
		keyword := "%" + query.Keyword + "%"
		q = q.Where("corporate_name LIKE ? OR trade_name LIKE ? OR cnpj LIKE ?", keyword, keyword, keyword)
	}
	var records []domain.Supplier
	if err := q.Order("corporate_name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func UpdateSupplier(id types.ID, u *SupplierUpdating, s *session.Session) error {
	if !s.Perms.HasAnyRole(authority.RoleAdmin, authority.RoleApprover) {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Model(&domain.Supplier{}).Where("id = ?", id).
		Update(map[string]interface{}{
			"corporate_name": u.CorporateName, "trade_name": u.TradeName,
			"bank": u.Bank, "agency": u.Agency, "account": u.Account,
			"account_type": u.AccountType, "pix_key": u.PixKey, "active": u.Active,
		}).Error
}
