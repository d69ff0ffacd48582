package flow_test

import (
	"errors"
	"testing"

	"payflow/domain"
	"payflow/domain/flow"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func idPtr(v types.ID) *types.ID {
	return &v
}

func amountPtr(v float64) *float64 {
	return &v
}

func buildStep(id types.ID, order int, min, max *float64) domain.StepDetail {
	return domain.StepDetail{WorkflowStep: domain.WorkflowStep{
		ID: id, Name: "step-" + id.String(), Order: order, Kind: domain.StepKindRole,
		AmountMin: min, AmountMax: max, Active: true,
	}}
}

func TestResolveSteps(t *testing.T) {
	RegisterTestingT(t)

	defer func() {
		flow.ListStepsFunc = flow.ListSteps
	}()

	s := &session.Session{Identity: session.Identity{ID: 1}}

	t.Run("cost center steps win over company and global steps", func(t *testing.T) {
		flow.ListStepsFunc = func(filter flow.StepFilter, s *session.Session) ([]domain.StepDetail, error) {
			if filter.CostCenterID != nil {
				return []domain.StepDetail{buildStep(101, 1, nil, nil), buildStep(102, 2, nil, nil)}, nil
			}
			return []domain.StepDetail{buildStep(201, 1, nil, nil)}, nil
		}

		steps, err := flow.ResolveSteps(10, idPtr(20), 500, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(2))
		Expect(steps[0].ID).To(Equal(types.ID(101)))
		Expect(steps[1].ID).To(Equal(types.ID(102)))
	})

	t.Run("company steps apply when the cost center has none", func(t *testing.T) {
		flow.ListStepsFunc = func(filter flow.StepFilter, s *session.Session) ([]domain.StepDetail, error) {
			if filter.CostCenterID != nil {
				return []domain.StepDetail{}, nil
			}
			if filter.CompanyID != nil {
				return []domain.StepDetail{buildStep(201, 1, nil, nil)}, nil
			}
			return []domain.StepDetail{buildStep(301, 1, nil, nil)}, nil
		}

		steps, err := flow.ResolveSteps(10, idPtr(20), 500, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(1))
		Expect(steps[0].ID).To(Equal(types.ID(201)))
	})

	t.Run("global steps apply when neither scope has steps", func(t *testing.T) {
		flow.ListStepsFunc = func(filter flow.StepFilter, s *session.Session) ([]domain.StepDetail, error) {
			if filter.CostCenterID == nil && filter.CompanyID == nil {
				return []domain.StepDetail{buildStep(301, 1, nil, nil)}, nil
			}
			return []domain.StepDetail{}, nil
		}

		steps, err := flow.ResolveSteps(10, idPtr(20), 500, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(1))
		Expect(steps[0].ID).To(Equal(types.ID(301)))

		// company tier is skipped entirely when the request has no company
		steps, err = flow.ResolveSteps(10, nil, 500, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(1))
		Expect(steps[0].ID).To(Equal(types.ID(301)))
	})

	t.Run("amount range filters steps of the winning tier", func(t *testing.T) {
		flow.ListStepsFunc = func(filter flow.StepFilter, s *session.Session) ([]domain.StepDetail, error) {
			if filter.CostCenterID != nil {
				return []domain.StepDetail{
					buildStep(101, 1, nil, amountPtr(1000)),
					buildStep(102, 2, amountPtr(1000), nil),
					buildStep(103, 3, amountPtr(100), amountPtr(5000)),
				}, nil
			}
			return []domain.StepDetail{buildStep(301, 1, nil, nil)}, nil
		}

		steps, err := flow.ResolveSteps(10, nil, 800, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(2))
		Expect(steps[0].ID).To(Equal(types.ID(101)))
		Expect(steps[1].ID).To(Equal(types.ID(103)))

		steps, err = flow.ResolveSteps(10, nil, 1000, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(3))
	})

	t.Run("a winning tier filtered empty never falls back to a wider tier", func(t *testing.T) {
		flow.ListStepsFunc = func(filter flow.StepFilter, s *session.Session) ([]domain.StepDetail, error) {
			if filter.CostCenterID != nil {
				return []domain.StepDetail{buildStep(101, 1, amountPtr(10000), nil)}, nil
			}
			return []domain.StepDetail{buildStep(301, 1, nil, nil)}, nil
		}

		steps, err := flow.ResolveSteps(10, idPtr(20), 500, s)
		Expect(err).To(BeNil())
		Expect(steps).To(BeEmpty())
	})

	t.Run("should propagate list errors", func(t *testing.T) {
		flow.ListStepsFunc = func(filter flow.StepFilter, s *session.Session) ([]domain.StepDetail, error) {
			return nil, errors.New("some error")
		}

		steps, err := flow.ResolveSteps(10, nil, 500, s)
		Expect(steps).To(BeNil())
		Expect(err).To(Equal(errors.New("some error")))
	})
}
