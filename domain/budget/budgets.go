package budget

import (
	"time"

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
	budgetIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateBudgetFunc  = CreateBudget
	QueryBudgetsFunc  = QueryBudgets
	UpdateBudgetFunc  = UpdateBudget
	FindBudgetFunc    = FindBudget
	ConsumeBudgetFunc = ConsumeBudget

	CurrentYearFunc = func() int { return time.Now().Year() }
)

type BudgetCreation struct {
	CostCenterID types.ID `json:"costCenterId" binding:"required"`
	Year         int      `json:"year" binding:"required,gte=2000"`

	TotalAmount float64 `json:"totalAmount" binding:"gte=0"`
}

type BudgetUpdating struct {
	TotalAmount float64 `json:"totalAmount" binding:"gte=0"`
}

type BudgetQuery struct {
	CostCenterID *types.ID `form:"costCenterId"`
	Year         *int      `form:"year"`
}

func CreateBudget(c *BudgetCreation, s *session.Session) (*domain.Budget, error) {
	if !s.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	record := domain.Budget{
		ID:           idgen.NextID(budgetIdWorker),
		CostCenterID: c.CostCenterID,
		Year:         c.Year,
		TotalAmount:  c.TotalAmount,
		UsedAmount:   0,
		CreateTime:   types.CurrentTimestamp(),
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int
		if err := tx.Model(&domain.Budget{}).
			Where("cost_center_id = ? AND year = ?", c.CostCenterID, c.Year).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return bizerror.ErrBudgetExisted
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryBudgets(query BudgetQuery, s *session.Session) ([]domain.Budget, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&domain.Budget{})
	if query.CostCenterID != nil {
		q = q.Where("cost_center_id = ?", *query.CostCenterID)
	}
	if query.Year != nil {
		q = q.Where("year = ?", *query.Year)
	}
	var records []domain.Budget
	if err := q.Order("year DESC, cost_center_id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func UpdateBudget(id types.ID, u *BudgetUpdating, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.Budget{ID: id}).First(&domain.Budget{}).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrNotFound
			}
			return err
		}
		return tx.Model(&domain.Budget{}).Where("id = ?", id).
			Update("total_amount", u.TotalAmount).Error
	})
}

// FindBudget returns nil without error when the cost center carries no budget
// for the year, which means spending is unconstrained.
func FindBudget(costCenterId types.ID, year int, s *session.Session) (*domain.Budget, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.Budget{}
	err := db.Where("cost_center_id = ? AND year = ?", costCenterId, year).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ConsumeBudget adds amount to the used total with a single atomic increment.
// It reports false when no budget row exists for the cost center and year.
func ConsumeBudget(costCenterId types.ID, year int, amount float64, s *session.Session) (bool, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&domain.Budget{}).
		Where("cost_center_id = ? AND year = ?", costCenterId, year).
		Update("used_amount", gorm.Expr("used_amount + ?", amount))
	if err := q.Error; err != nil {
		return false, err
	}
	return q.RowsAffected == 1, nil
}
