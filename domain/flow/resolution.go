package flow

import (
	"payflow/domain"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
)

var ResolveStepsFunc = ResolveSteps

// ResolveSteps picks the workflow applying to one request. Scope tiers are tried
// from most to least specific and the first tier owning any active step wins.
// The amount range filter runs on the winning tier only: a tier whose steps all
// fall outside the range yields an empty workflow, it never falls through to a
// wider tier.
func ResolveSteps(costCenterId types.ID, companyId *types.ID, amount float64, s *session.Session) ([]domain.StepDetail, error) {
	candidates, err := ListStepsFunc(StepFilter{CostCenterID: &costCenterId, ActiveOnly: true}, s)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 && companyId != nil {
		candidates, err = ListStepsFunc(StepFilter{CompanyID: companyId, ActiveOnly: true}, s)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		candidates, err = ListStepsFunc(StepFilter{ActiveOnly: true}, s)
		if err != nil {
			return nil, err
		}
	}

	resolved := make([]domain.StepDetail, 0, len(candidates))
	for _, step := range candidates {
		if step.AppliesToAmount(amount) {
			resolved = append(resolved, step)
		}
	}
	return resolved, nil
}
