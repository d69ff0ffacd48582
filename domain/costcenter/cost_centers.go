package costcenter

import (
	"payflow/bizerror"
	"payflow/domain"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

var (
	costCenterIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateCostCenterFunc = CreateCostCenter
	QueryCostCentersFunc = QueryCostCenters
	UpdateCostCenterFunc = UpdateCostCenter
	ManagerOfFunc        = ManagerOf

	CreateCompanyFunc  = CreateCompany
	QueryCompaniesFunc = QueryCompanies
	UpdateCompanyFunc  = UpdateCompany
)

type CostCenterCreation struct {
	Code string `json:"code" binding:"required,lte=32"`
	Name string `json:"name" binding:"required,lte=255"`

	ManagerID *types.ID `json:"managerId"`
}

type CostCenterUpdating struct {
	Name      string    `json:"name" binding:"required,lte=255"`
	ManagerID *types.ID `json:"managerId"`
	Active    bool      `json:"active"`
}

type CostCenterQuery struct {
	ActiveOnly bool `form:"activeOnly"`
}

func CreateCostCenter(c *CostCenterCreation, s *session.Session) (*domain.CostCenter, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	record := domain.CostCenter{
		ID:         idgen.NextID(costCenterIdWorker),
		Code:       c.Code,
		Name:       c.Name,
		ManagerID:  c.ManagerID,
		Active:     true,
		CreateTime: types.CurrentTimestamp(),
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryCostCenters(query CostCenterQuery, s *session.Session) ([]domain.CostCenter, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&domain.CostCenter{})
	if query.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	var records []domain.CostCenter
	if err := q.Order("code ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func UpdateCostCenter(id types.ID, u *CostCenterUpdating, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Model(&domain.CostCenter{}).Where("id = ?", id).
		Update(map[string]interface{}{"name": u.Name, "manager_id": u.ManagerID, "active": u.Active}).Error
}

// ManagerOf returns the manager of a cost center, nil when none is assigned.
func ManagerOf(id types.ID, s *session.Session) (*types.ID, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.CostCenter{}
	if err := db.Where(&domain.CostCenter{ID: id}).First(&record).Error; err != nil {
		return nil, err
	}
	return record.ManagerID, nil
}

type CompanyCreation struct {
	Name string `json:"name" binding:"required,lte=255"`
	CNPJ string `json:"cnpj" binding:"lte=18"`
}

type CompanyUpdating struct {
	Name   string `json:"name" binding:"required,lte=255"`
	CNPJ   string `json:"cnpj" binding:"lte=18"`
	Active bool   `json:"active"`
}

func CreateCompany(c *CompanyCreation, s *session.Session) (*domain.Company, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	record := domain.Company{
		ID:         idgen.NextID(costCenterIdWorker),
		Name:       c.Name,
		CNPJ:       c.CNPJ,
		Active:     true,
		CreateTime: types.CurrentTimestamp(),
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryCompanies(s *session.Session) ([]domain.Company, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []domain.Company
	if err := db.Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func UpdateCompany(id types.ID, u *CompanyUpdating, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Model(&domain.Company{}).Where("id = ?", id).
		Update(map[string]interface{}{"name": u.Name, "cnpj": u.CNPJ, "active": u.Active}).Error
}
