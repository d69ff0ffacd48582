package flow

import (
	"errors"
	"strconv"

	"payflow/bizerror"
	"payflow/domain"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	stepIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	ListStepsFunc             = ListSteps
	CreateStepFunc            = CreateStep
	UpdateStepFunc            = UpdateStep
	DeleteStepFunc            = DeleteStep
	UpdateStepRangeOrdersFunc = UpdateStepRangeOrders
	AddStepApproverFunc       = AddStepApprover
	RemoveStepApproverFunc    = RemoveStepApprover
)

// StepFilter selects exactly one scope tier: cost-center when CostCenterID is set,
// otherwise company when CompanyID is set, otherwise the global default tier.
type StepFilter struct {
	CostCenterID *types.ID
	CompanyID    *types.ID
	ActiveOnly   bool
}

type StepCreation struct {
	CompanyID    *types.ID `json:"companyId"`
	CostCenterID *types.ID `json:"costCenterId"`

	Name  string          `json:"name" binding:"required,lte=255"`
	Order int             `json:"order" binding:"required,gt=0"`
	Kind  domain.StepKind `json:"kind" binding:"required,oneof=cost_center_manager role user"`

	AmountMin *float64 `json:"amountMin"`
	AmountMax *float64 `json:"amountMax"`

	Approvers []ApproverCreation `json:"approvers"`
}

type StepUpdating struct {
	Name  string          `json:"name" binding:"required,lte=255"`
	Order int             `json:"order" binding:"required,gt=0"`
	Kind  domain.StepKind `json:"kind" binding:"required,oneof=cost_center_manager role user"`

	AmountMin *float64 `json:"amountMin"`
	AmountMax *float64 `json:"amountMax"`

	Active bool `json:"active"`
}

type ApproverCreation struct {
	UserID *types.ID `json:"userId"`
	Role   string    `json:"role"`
}

type StepOrderRangeUpdating struct {
	ID       types.ID `json:"id" binding:"required"`
	NewOrder int      `json:"newOrder" binding:"required,gt=0"`
}

func ListSteps(filter StepFilter, s *session.Session) ([]domain.StepDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Model(&domain.WorkflowStep{})
	if filter.CostCenterID != nil {
		q = q.Where("cost_center_id = ?", *filter.CostCenterID)
	} else if filter.CompanyID != nil {
		q = q.Where("company_id = ? AND cost_center_id IS NULL", *filter.CompanyID)
	} else {
		q = q.Where("company_id IS NULL AND cost_center_id IS NULL")
	}
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}

	var steps []domain.WorkflowStep
	if err := q.Order("`order` ASC").Find(&steps).Error; err != nil {
		return nil, err
	}

	return attachApprovers(db, steps)
}

func attachApprovers(db *gorm.DB, steps []domain.WorkflowStep) ([]domain.StepDetail, error) {
	details := make([]domain.StepDetail, 0, len(steps))
	if len(steps) == 0 {
		return details, nil
	}

	stepIds := make([]types.ID, 0, len(steps))
	for _, step := range steps {
		stepIds = append(stepIds, step.ID)
	}
	var approvers []domain.StepApprover
	if err := db.Where("step_id IN (?)", stepIds).Find(&approvers).Error; err != nil {
		return nil, err
	}
	approversByStep := map[types.ID][]domain.StepApprover{}
	for _, a := range approvers {
		approversByStep[a.StepID] = append(approversByStep[a.StepID], a)
	}

	for _, step := range steps {
		details = append(details, domain.StepDetail{WorkflowStep: step, Approvers: approversByStep[step.ID]})
	}
	return details, nil
}

func CreateStep(c *StepCreation, s *session.Session) (*domain.StepDetail, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	if c.CompanyID != nil && c.CostCenterID != nil {
		return nil, bizerror.ErrStepScopeInvalid
	}

	now := types.CurrentTimestamp()
	detail := &domain.StepDetail{
		WorkflowStep: domain.WorkflowStep{
			ID:           idgen.NextID(stepIdWorker),
			CompanyID:    c.CompanyID,
			CostCenterID: c.CostCenterID,
			Name:         c.Name,
			Order:        c.Order,
			Kind:         c.Kind,
			AmountMin:    c.AmountMin,
			AmountMax:    c.AmountMax,
			Active:       true,
			CreateTime:   now,
		},
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkOrderFree(tx, c.CompanyID, c.CostCenterID, c.Order, 0); err != nil {
			return err
		}
		if err := tx.Create(&detail.WorkflowStep).Error; err != nil {
			return err
		}
		for _, a := range c.Approvers {
			approver := domain.StepApprover{
				ID: idgen.NextID(stepIdWorker), StepID: detail.ID,
				UserID: a.UserID, Role: a.Role, CreateTime: now,
			}
			if err := tx.Create(&approver).Error; err != nil {
				return err
			}
			detail.Approvers = append(detail.Approvers, approver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func UpdateStep(id types.ID, u *StepUpdating, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		step := domain.WorkflowStep{}
		if err := tx.Where(&domain.WorkflowStep{ID: id}).First(&step).Error; err != nil {
			return err
		}
		if u.Order != step.Order {
			if err := checkOrderFree(tx, step.CompanyID, step.CostCenterID, u.Order, step.ID); err != nil {
				return err
			}
		}
		updates := map[string]interface{}{
			"name": u.Name, "order": u.Order, "kind": u.Kind,
			"amount_min": u.AmountMin, "amount_max": u.AmountMax, "active": u.Active,
		}
		return tx.Model(&domain.WorkflowStep{}).Where("id = ?", id).Update(updates).Error
	})
}

func DeleteStep(id types.ID, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.WorkflowStep{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.StepApprover{}, "step_id = ?", id).Error
	})
}

// UpdateStepRangeOrders applies a drag-and-drop reorder in one transaction
func UpdateStepRangeOrders(wantedOrders []StepOrderRangeUpdating, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}
	if len(wantedOrders) == 0 {
		return nil
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		for _, orderUpdating := range wantedOrders {
			q := tx.Model(&domain.WorkflowStep{}).
				Where("id = ?", orderUpdating.ID).
				Update("order", orderUpdating.NewOrder)
			if err := q.Error; err != nil {
				return err
			}
			if q.RowsAffected != 1 {
				return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(q.RowsAffected, 10))
			}
		}
		return nil
	})
}

func AddStepApprover(stepId types.ID, c *ApproverCreation, s *session.Session) (*domain.StepApprover, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	if (c.UserID == nil) == (c.Role == "") {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("an approver carries either a user or a role")}
	}

	approver := domain.StepApprover{
		ID: idgen.NextID(stepIdWorker), StepID: stepId,
		UserID: c.UserID, Role: c.Role, CreateTime: types.CurrentTimestamp(),
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.WorkflowStep{ID: stepId}).First(&domain.WorkflowStep{}).Error; err != nil {
			return err
		}
		return tx.Create(&approver).Error
	})
	if err != nil {
		return nil, err
	}
	return &approver, nil
}

func RemoveStepApprover(approverId types.ID, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Delete(&domain.StepApprover{}, "id = ?", approverId).Error
}

// order must stay unique among active steps of the same scope
func checkOrderFree(tx *gorm.DB, companyId, costCenterId *types.ID, order int, selfId types.ID) error {
	q := tx.Model(&domain.WorkflowStep{}).Where("`order` = ? AND active = ?", order, true)
	if costCenterId != nil {
		q = q.Where("cost_center_id = ?", *costCenterId)
	} else if companyId != nil {
		q = q.Where("company_id = ? AND cost_center_id IS NULL", *companyId)
	} else {
		q = q.Where("company_id IS NULL AND cost_center_id IS NULL")
	}
	if selfId != 0 {
		q = q.Where("id <> ?", selfId)
	}
	var count int
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.ErrOrderConflict
	}
	return nil
}
