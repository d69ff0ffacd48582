package approval_test

import (
	"context"
	"testing"
	"time"

	"payflow/account"
	"payflow/authority"
	"payflow/bizerror"
	"payflow/domain"
	"payflow/domain/approval"
	"payflow/domain/budget"
	"payflow/domain/flow"
	"payflow/domain/request"
	"payflow/event"
	"payflow/persistence"
	"payflow/session"
	"payflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("payflow")
	assert.Nil(t, db.DS.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &domain.PaymentRequest{}, &domain.RequestSequence{},
		&domain.ApprovalHistoryEntry{}, &domain.Budget{},
		&domain.WorkflowStep{}, &domain.StepApprover{}, &event.EventRecord{}).Error)
	persistence.ActiveDataSourceManager = db.DS
	*testDatabase = db
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func restoreStubs() {
	flow.ResolveStepsFunc = flow.ResolveSteps
	budget.CurrentYearFunc = func() int { return time.Now().Year() }
	approval.ListApprovedStepIdsFunc = approval.ListApprovedStepIds
	approval.CanActOnStepFunc = approval.CanActOnStep
}

func twoRoleSteps() []domain.StepDetail {
	return []domain.StepDetail{
		{WorkflowStep: domain.WorkflowStep{ID: 101, Name: "gestor", Order: 1, Kind: domain.StepKindRole, Active: true},
			Approvers: []domain.StepApprover{{StepID: 101, Role: authority.RoleCostCenterManager}}},
		{WorkflowStep: domain.WorkflowStep{ID: 102, Name: "aprovador", Order: 2, Kind: domain.StepKindRole, Active: true},
			Approvers: []domain.StepApprover{{StepID: 102, Role: authority.RoleApprover}}},
	}
}

func buildPendingRequest(t *testing.T, amount float64) *domain.PaymentRequest {
	requester := testinfra.BuildSession(500, authority.RoleViewer)
	r, err := request.CreateRequest(&request.RequestCreation{
		CostCenterID: 7, SupplierID: 9, Description: "notebooks", Amount: amount,
	}, requester)
	assert.Nil(t, err)
	r, err = request.SubmitRequest(r.ID, requester)
	assert.Nil(t, err)
	return r
}

func TestDecide(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	defer restoreStubs()
	flow.ResolveStepsFunc = func(costCenterId types.ID, companyId *types.ID, amount float64, s *session.Session) ([]domain.StepDetail, error) {
		return twoRoleSteps(), nil
	}
	budget.CurrentYearFunc = func() int { return 2026 }

	t.Run("should only decide pending requests", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		requester := testinfra.BuildSession(500, authority.RoleViewer)
		draft, err := request.CreateRequest(&request.RequestCreation{
			CostCenterID: 7, SupplierID: 9, Description: "notebooks", Amount: 100,
		}, requester)
		Expect(err).To(BeNil())

		result, err := approval.Decide(draft.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrRequestNotPending))
	})

	t.Run("should forbid an actor who cannot act on the current step", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		r := buildPendingRequest(t, 100)
		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(100, authority.RoleViewer))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should require a note on rejection", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		r := buildPendingRequest(t, 100)
		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionReject},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrRejectionNoteRequired))
	})

	t.Run("a rejection ends the workflow wherever it stands", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		r := buildPendingRequest(t, 100)
		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionReject, Note: "sem contrato"},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(err).To(BeNil())
		Expect(result.NewStatus).To(Equal(domain.StatusRejected))
		Expect(result.BudgetMutated).To(BeFalse())
		Expect(result.Request.Status).To(Equal(domain.StatusRejected))
		Expect(result.Request.Note).To(Equal("sem contrato"))

		var entries []domain.ApprovalHistoryEntry
		Expect(testDatabase.DS.GormDB(context.Background()).Find(&entries).Error).To(BeNil())
		Expect(len(entries)).To(Equal(1))
		Expect(entries[0].Action).To(Equal(domain.ActionRejected))
		Expect(entries[0].Level).To(Equal(1))
		Expect(*entries[0].StepID).To(Equal(types.ID(101)))
		Expect(entries[0].ActorID).To(Equal(types.ID(100)))
		Expect(entries[0].Note).To(Equal("sem contrato"))
	})

	t.Run("an intermediate approval keeps the request pending and advances the current step", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		r := buildPendingRequest(t, 100)
		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(err).To(BeNil())
		Expect(result.NewStatus).To(Equal(domain.StatusPendingApproval))
		Expect(result.BudgetMutated).To(BeFalse())

		cur, err := approval.LocateCurrentStep(r, twoRoleSteps(), testinfra.BuildSession(200, authority.RoleApprover))
		Expect(err).To(BeNil())
		Expect(cur.Step.ID).To(Equal(types.ID(102)))
		Expect(cur.Position).To(Equal(2))
		Expect(cur.CanApprove).To(BeTrue())
	})

	t.Run("the last approval finalizes the request and consumes budget", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.RoleAdmin)
		_, err := budget.CreateBudget(&budget.BudgetCreation{CostCenterID: 7, Year: 2026, TotalAmount: 1000}, admin)
		Expect(err).To(BeNil())

		r := buildPendingRequest(t, 100)
		_, err = approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(err).To(BeNil())

		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(200, authority.RoleApprover))
		Expect(err).To(BeNil())
		Expect(result.NewStatus).To(Equal(domain.StatusApproved))
		Expect(result.BudgetMutated).To(BeTrue())
		Expect(result.Request.Status).To(Equal(domain.StatusApproved))
		Expect(*result.Request.ApproverID).To(Equal(types.ID(200)))
		Expect(result.Request.ApprovedAt).ToNot(BeNil())

		b, err := budget.FindBudget(7, 2026, admin)
		Expect(err).To(BeNil())
		Expect(b.UsedAmount).To(Equal(float64(100)))

		var entries []domain.ApprovalHistoryEntry
		Expect(testDatabase.DS.GormDB(context.Background()).Order("create_time ASC").Find(&entries).Error).To(BeNil())
		Expect(len(entries)).To(Equal(2))
		Expect(entries[0].Level).To(Equal(1))
		Expect(entries[1].Level).To(Equal(2))
	})

	t.Run("a final approval without a budget row succeeds without mutation", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		r := buildPendingRequest(t, 100)
		_, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(err).To(BeNil())

		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(200, authority.RoleApprover))
		Expect(err).To(BeNil())
		Expect(result.NewStatus).To(Equal(domain.StatusApproved))
		Expect(result.BudgetMutated).To(BeFalse())
	})

	t.Run("insufficient budget blocks the final approval, admin overrides", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.RoleAdmin)
		_, err := budget.CreateBudget(&budget.BudgetCreation{CostCenterID: 7, Year: 2026, TotalAmount: 50}, admin)
		Expect(err).To(BeNil())

		r := buildPendingRequest(t, 100)
		_, err = approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(err).To(BeNil())

		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(200, authority.RoleApprover))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrInsufficientBudget))

		// the admin override still consumes the budget, driving it negative
		result, err = approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove}, admin)
		Expect(err).To(BeNil())
		Expect(result.NewStatus).To(Equal(domain.StatusApproved))
		Expect(result.BudgetMutated).To(BeTrue())

		b, err := budget.FindBudget(7, 2026, admin)
		Expect(err).To(BeNil())
		Expect(b.Available()).To(Equal(float64(-50)))
	})

	t.Run("a request without workflow is decided directly by approvers or admins", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		flow.ResolveStepsFunc = func(costCenterId types.ID, companyId *types.ID, amount float64, s *session.Session) ([]domain.StepDetail, error) {
			return []domain.StepDetail{}, nil
		}
		defer func() {
			flow.ResolveStepsFunc = func(costCenterId types.ID, companyId *types.ID, amount float64, s *session.Session) ([]domain.StepDetail, error) {
				return twoRoleSteps(), nil
			}
		}()

		r := buildPendingRequest(t, 100)
		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(100, authority.RoleViewer))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))

		result, err = approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(200, authority.RoleApprover))
		Expect(err).To(BeNil())
		Expect(result.NewStatus).To(Equal(domain.StatusApproved))

		var entries []domain.ApprovalHistoryEntry
		Expect(testDatabase.DS.GormDB(context.Background()).Find(&entries).Error).To(BeNil())
		Expect(len(entries)).To(Equal(1))
		Expect(entries[0].StepID).To(BeNil())
		Expect(entries[0].Level).To(Equal(1))
	})

	t.Run("a decided request cannot be decided again", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		r := buildPendingRequest(t, 100)
		_, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionReject, Note: "duplicado"},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(err).To(BeNil())

		result, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(200, authority.RoleApprover))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrRequestNotPending))
	})
}

func TestQueryApprovalHistory(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	defer restoreStubs()
	flow.ResolveStepsFunc = func(costCenterId types.ID, companyId *types.ID, amount float64, s *session.Session) ([]domain.StepDetail, error) {
		return twoRoleSteps(), nil
	}
	budget.CurrentYearFunc = func() int { return 2026 }

	t.Run("should return the timeline with actor names", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.Create(&account.User{ID: 100, Name: "ana", Nickname: "Ana"}).Error).To(BeNil())
		Expect(db.Create(&account.User{ID: 200, Name: "breno", Nickname: "Breno"}).Error).To(BeNil())

		r := buildPendingRequest(t, 100)
		_, err := approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(100, authority.RoleCostCenterManager))
		Expect(err).To(BeNil())
		_, err = approval.Decide(r.ID, &approval.DecisionCreation{Decision: approval.DecisionApprove},
			testinfra.BuildSession(200, authority.RoleApprover))
		Expect(err).To(BeNil())

		details, err := approval.QueryApprovalHistory(r.ID, testinfra.BuildSession(500, authority.RoleViewer))
		Expect(err).To(BeNil())
		Expect(len(details)).To(Equal(2))
		Expect(details[0].Level).To(Equal(1))
		Expect(details[0].ActorName).To(Equal("Ana"))
		Expect(details[1].Level).To(Equal(2))
		Expect(details[1].ActorName).To(Equal("Breno"))
	})
}
