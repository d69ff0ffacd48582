package approval

import (
	"payflow/authority"
	"payflow/bizerror"
	"payflow/domain"
	"payflow/domain/budget"
	"payflow/domain/flow"
	"payflow/domain/request"
	"payflow/event"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

var (
	approvalIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	DecideFunc = Decide
)

type DecisionCreation struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Note     string `json:"note" binding:"lte=1000"`
}

type DecisionResult struct {
	Request *domain.PaymentRequest `json:"request"`

	NewStatus     domain.RequestStatus `json:"newStatus"`
	BudgetMutated bool                 `json:"budgetMutated"`
}

// Decide applies one approval or rejection to a pending request.
//
// The request's workflow is resolved and its current step located at decision
// time, never from stored state. A rejection ends the workflow wherever it
// stands. An approval advances past the current step and finalizes the request
// when no step remains, consuming budget at that point. The history entry and
// the status change commit in one transaction, guarded by a compare-and-set on
// the pending status, so a concurrent decision loses cleanly.
func Decide(id types.ID, c *DecisionCreation, s *session.Session) (*DecisionResult, error) {
	r, err := request.DetailRequestFunc(id, s)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.StatusPendingApproval {
		return nil, bizerror.ErrRequestNotPending
	}

	steps, err := flow.ResolveStepsFunc(r.CostCenterID, r.CompanyID, r.Amount, s)
	if err != nil {
		return nil, err
	}
	cur, err := LocateCurrentStepFunc(r, steps, s)
	if err != nil {
		return nil, err
	}

	if cur != nil {
		if !cur.CanApprove {
			return nil, bizerror.ErrForbidden
		}
	} else if !s.Perms.HasAnyRole(authority.RoleAdmin, authority.RoleApprover) {
		return nil, bizerror.ErrForbidden
	}

	if c.Decision == DecisionReject && c.Note == "" {
		return nil, bizerror.ErrRejectionNoteRequired
	}

	newStatus := domain.StatusRejected
	if c.Decision == DecisionApprove {
		if cur != nil && cur.Position < cur.Total {
			newStatus = domain.StatusPendingApproval
		} else {
			newStatus = domain.StatusApproved
		}
	}

	year := budget.CurrentYearFunc()
	if newStatus == domain.StatusApproved && !s.Perms.IsAdmin() {
		b, err := budget.FindBudgetFunc(r.CostCenterID, year, s)
		if err != nil {
			return nil, err
		}
		if b != nil && b.Available() < r.Amount {
			return nil, bizerror.ErrInsufficientBudget
		}
	}

	entry := buildHistoryEntry(r, cur, c, s)
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		q := tx.Model(&domain.PaymentRequest{}).
			Where("id = ? AND status = ?", id, domain.StatusPendingApproval).
			Update(map[string]interface{}{
				"status": newStatus, "approver_id": s.Identity.ID,
				"approved_at": now, "note": c.Note,
			})
		if err := q.Error; err != nil {
			return err
		}
		if q.RowsAffected != 1 {
			return bizerror.ErrStatusConflict
		}

		var err error
		ev, err = request.CreateRequestPropertyUpdatedEvent(r,
			request.StatusUpdatedProperty(domain.StatusPendingApproval, newStatus), &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	result := DecisionResult{NewStatus: newStatus}
	if newStatus == domain.StatusApproved {
		// budget consumption stays outside the transaction: a ledger failure
		// must not undo an already committed decision
		mutated, err := budget.ConsumeBudgetFunc(r.CostCenterID, year, r.Amount, s)
		if err != nil {
			logrus.Warnf("failed to consume budget of cost center %d for request %s: %v\n",
				r.CostCenterID, r.Number, err)
		} else {
			result.BudgetMutated = mutated
		}
	}

	updated, err := request.DetailRequestFunc(id, s)
	if err != nil {
		return nil, err
	}
	result.Request = updated
	return &result, nil
}

func buildHistoryEntry(r *domain.PaymentRequest, cur *CurrentStep, c *DecisionCreation,
	s *session.Session) domain.ApprovalHistoryEntry {

	entry := domain.ApprovalHistoryEntry{
		ID:         idgen.NextID(approvalIdWorker),
		RequestID:  r.ID,
		Level:      1,
		ActorID:    s.Identity.ID,
		Note:       c.Note,
		Action:     domain.ActionRejected,
		CreateTime: types.CurrentTimestamp(),
	}
	if c.Decision == DecisionApprove {
		entry.Action = domain.ActionApproved
	}
	if cur != nil {
		stepId := cur.Step.ID
		entry.StepID = &stepId
		entry.Level = cur.Position
	}
	return entry
}
