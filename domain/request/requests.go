package request

import (
	"context"
	"errors"
	"fmt"

	"payflow/authority"
	"payflow/bizerror"
	"payflow/domain"
	"payflow/event"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	requestIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateRequestFunc   = CreateRequest
	UpdateRequestFunc   = UpdateRequest
	DetailRequestFunc   = DetailRequest
	QueryRequestsFunc   = QueryRequests
	SubmitRequestFunc   = SubmitRequest
	CancelRequestFunc   = CancelRequest
	MarkRequestPaidFunc = MarkRequestPaid
	LoadRequestsFunc    = LoadRequests
)

type RequestCreation struct {
	CostCenterID types.ID  `json:"costCenterId" binding:"required"`
	CompanyID    *types.ID `json:"companyId"`
	SupplierID   types.ID  `json:"supplierId" binding:"required"`

	Description string          `json:"description" binding:"required"`
	Amount      float64         `json:"amount" binding:"required,gt=0"`
	DueDate     types.Timestamp `json:"dueDate"`
}

type RequestUpdating struct {
	CostCenterID types.ID  `json:"costCenterId" binding:"required"`
	CompanyID    *types.ID `json:"companyId"`
	SupplierID   types.ID  `json:"supplierId" binding:"required"`

	Description string          `json:"description" binding:"required"`
	Amount      float64         `json:"amount" binding:"required,gt=0"`
	DueDate     types.Timestamp `json:"dueDate"`
}

type RequestQuery struct {
	Status       []domain.RequestStatus `form:"status"`
	CostCenterID *types.ID              `form:"costCenterId"`
	RequesterID  *types.ID              `form:"requesterId"`
	Keyword      string                 `form:"keyword"`
}

func CreateRequest(c *RequestCreation, s *session.Session) (*domain.PaymentRequest, error) {
	if s.Identity.ID == 0 {
		return nil, bizerror.ErrUnauthenticated
	}

	now := types.CurrentTimestamp()
	record := domain.PaymentRequest{
		ID:           idgen.NextID(requestIdWorker),
		CostCenterID: c.CostCenterID,
		CompanyID:    c.CompanyID,
		SupplierID:   c.SupplierID,
		RequesterID:  s.Identity.ID,
		Description:  c.Description,
		Amount:       c.Amount,
		DueDate:      c.DueDate,
		Status:       domain.StatusDraft,
		CreateTime:   now,
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		number, err := NextRequestNumber(now.Time().Year(), tx)
		if err != nil {
			return err
		}
		record.Number = number
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		ev, err = CreateRequestCreatedEvent(&record, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &record, nil
}

// NextRequestNumber consumes the per-year counter and renders a number like SP-2026-12.
// The counter row is created lazily on the first request of a year.
func NextRequestNumber(year int, tx *gorm.DB) (string, error) {
	seq := domain.RequestSequence{}
	err := tx.Where(&domain.RequestSequence{Year: year}).First(&seq).Error
	if gorm.IsRecordNotFoundError(err) {
		seq = domain.RequestSequence{Year: year, NextNumber: 2}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("SP-%d-%d", year, 1), nil
	}
	if err != nil {
		return "", err
	}

	number := fmt.Sprintf("SP-%d-%d", year, seq.NextNumber)
	db := tx.Model(&domain.RequestSequence{}).
		Where(&domain.RequestSequence{Year: year, NextNumber: seq.NextNumber}).
		Update("next_number", seq.NextNumber+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", errors.New("concurrent modification")
	}
	return number, nil
}

// LoadRequests pages through all requests, used by the index synchronizer.
func LoadRequests(page, pageSize int) ([]domain.PaymentRequest, error) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	var records []domain.PaymentRequest
	if err := db.Model(&domain.PaymentRequest{}).Order("id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func DetailRequest(id types.ID, s *session.Session) (*domain.PaymentRequest, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.PaymentRequest{}
	if err := db.Where(&domain.PaymentRequest{ID: id}).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryRequests(query RequestQuery, s *session.Session) ([]domain.PaymentRequest, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&domain.PaymentRequest{})
	if len(query.Status) > 0 {
		q = q.Where("status IN (?)", query.Status)
	}
	if query.CostCenterID != nil {
		q = q.Where("cost_center_id = ?", *query.CostCenterID)
	}
	if query.RequesterID != nil {
		q = q.Where("requester_id = ?", *query.RequesterID)
	}
	if query.Keyword != "" {
		keyword := "%" + query.Keyword + "%"
		q = q.Where("number LIKE ? OR description LIKE ?", keyword, keyword)
	}
	var records []domain.PaymentRequest
	if err := q.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func UpdateRequest(id types.ID, u *RequestUpdating, s *session.Session) (*domain.PaymentRequest, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.PaymentRequest{}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.PaymentRequest{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.RequesterID != s.Identity.ID && !s.Perms.IsAdmin() {
			return bizerror.ErrForbidden
		}
		if record.Status != domain.StatusDraft {
			return bizerror.ErrStatusConflict
		}
		updates := map[string]interface{}{
			"cost_center_id": u.CostCenterID, "company_id": u.CompanyID, "supplier_id": u.SupplierID,
			"description": u.Description, "amount": u.Amount, "due_date": u.DueDate,
		}
		if err := tx.Model(&domain.PaymentRequest{}).Where("id = ?", id).Update(updates).Error; err != nil {
			return err
		}
		return tx.Where(&domain.PaymentRequest{ID: id}).First(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SubmitRequest moves a draft into the approval queue.
func SubmitRequest(id types.ID, s *session.Session) (*domain.PaymentRequest, error) {
	return transitStatus(id, domain.StatusDraft, domain.StatusPendingApproval, s,
		func(record *domain.PaymentRequest) error {
			if record.RequesterID != s.Identity.ID && !s.Perms.IsAdmin() {
				return bizerror.ErrForbidden
			}
			return nil
		})
}

// CancelRequest withdraws a request that has not reached a final decision yet.
func CancelRequest(id types.ID, s *session.Session) (*domain.PaymentRequest, error) {
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.PaymentRequest{}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.PaymentRequest{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.RequesterID != s.Identity.ID && !s.Perms.IsAdmin() {
			return bizerror.ErrForbidden
		}
		if record.Status != domain.StatusDraft && record.Status != domain.StatusPendingApproval {
			return bizerror.ErrStatusConflict
		}
		q := tx.Model(&domain.PaymentRequest{}).
			Where("id = ? AND status = ?", id, record.Status).
			Update("status", domain.StatusCancelled)
		if err := q.Error; err != nil {
			return err
		}
		if q.RowsAffected != 1 {
			return bizerror.ErrStatusConflict
		}
		var err error
		ev, err = CreateRequestPropertyUpdatedEvent(&record,
			StatusUpdatedProperty(record.Status, domain.StatusCancelled), &s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}
		record.Status = domain.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &record, nil
}

// MarkRequestPaid closes an approved request once the payment went out.
func MarkRequestPaid(id types.ID, s *session.Session) (*domain.PaymentRequest, error) {
	return transitStatus(id, domain.StatusApproved, domain.StatusPaid, s,
		func(record *domain.PaymentRequest) error {
			if !s.Perms.HasAnyRole(authority.RoleAdmin, authority.RoleApprover) {
				return bizerror.ErrForbidden
			}
			return nil
		})
}

func transitStatus(id types.ID, from, to domain.RequestStatus, s *session.Session,
	check func(record *domain.PaymentRequest) error) (*domain.PaymentRequest, error) {

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.PaymentRequest{}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.PaymentRequest{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if err := check(&record); err != nil {
			return err
		}
		if record.Status != from {
			return bizerror.ErrStatusConflict
		}
		q := tx.Model(&domain.PaymentRequest{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if err := q.Error; err != nil {
			return err
		}
		if q.RowsAffected != 1 {
			return bizerror.ErrStatusConflict
		}
		var err error
		ev, err = CreateRequestPropertyUpdatedEvent(&record,
			StatusUpdatedProperty(from, to), &s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}
		record.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &record, nil
}
