package approval

import (
	"payflow/domain"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
)

var (
	ListApprovedStepIdsFunc = ListApprovedStepIds
	LocateCurrentStepFunc   = LocateCurrentStep
)

// CurrentStep is the stage a pending request is waiting on. Position is 1-based.
type CurrentStep struct {
	Step     domain.StepDetail `json:"step"`
	Position int               `json:"position"`
	Total    int               `json:"total"`

	CanApprove bool `json:"canApprove"`
}

func ListApprovedStepIds(requestId types.ID, s *session.Session) (map[types.ID]bool, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var entries []domain.ApprovalHistoryEntry
	if err := db.Where("request_id = ? AND action = ?", requestId, domain.ActionApproved).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	approved := map[types.ID]bool{}
	for _, entry := range entries {
		if entry.StepID != nil {
			approved[*entry.StepID] = true
		}
	}
	return approved, nil
}

// LocateCurrentStep scans the resolved workflow against the approval history and
// returns the first step not yet approved, or nil when the workflow is empty or
// every step is already behind the request. The result is never stored, so any
// configuration change is reflected on the next read.
func LocateCurrentStep(r *domain.PaymentRequest, steps []domain.StepDetail, s *session.Session) (*CurrentStep, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	approved, err := ListApprovedStepIdsFunc(r.ID, s)
	if err != nil {
		return nil, err
	}

	for i, step := range steps {
		if approved[step.ID] {
			continue
		}
		canApprove, err := CanActOnStepFunc(step, r.CostCenterID, s)
		if err != nil {
			return nil, err
		}
		return &CurrentStep{Step: step, Position: i + 1, Total: len(steps), CanApprove: canApprove}, nil
	}
	return nil, nil
}
