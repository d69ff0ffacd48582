package approval

import (
	"payflow/domain"
	"payflow/domain/costcenter"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
)

var CanActOnStepFunc = CanActOnStep

// CanActOnStep decides whether the session's identity may decide the given step.
// Checks run from most to least specific and the first hit wins: a direct user
// entry, then a role entry, then cost-center manager delegation, then the admin
// override.
func CanActOnStep(step domain.StepDetail, costCenterId types.ID, s *session.Session) (bool, error) {
	for _, approver := range step.Approvers {
		if approver.UserID != nil && *approver.UserID == s.Identity.ID {
			return true, nil
		}
	}

	for _, approver := range step.Approvers {
		if approver.Role != "" && s.Perms.HasRole(approver.Role) {
			return true, nil
		}
	}

	if step.Kind == domain.StepKindCostCenterManager {
		managerId, err := costcenter.ManagerOfFunc(costCenterId, s)
		if err != nil {
			return false, err
		}
		if managerId != nil && *managerId == s.Identity.ID {
			return true, nil
		}
	}

	if s.Perms.IsAdmin() {
		return true, nil
	}
	return false, nil
}
