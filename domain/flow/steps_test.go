package flow_test

import (
	"context"
	"testing"

	"payflow/authority"
	"payflow/bizerror"
	"payflow/domain"
	"payflow/domain/flow"
	"payflow/persistence"
	"payflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("payflow")
	assert.Nil(t, db.DS.GormDB(context.Background()).AutoMigrate(
		&domain.WorkflowStep{}, &domain.StepApprover{}).Error)
	persistence.ActiveDataSourceManager = db.DS
	*testDatabase = db
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateStep(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should forbid non admin users", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		creation := &flow.StepCreation{Name: "gerente", Order: 1, Kind: domain.StepKindRole}
		step, err := flow.CreateStep(creation, testinfra.BuildSession(100, authority.RoleApprover))
		Expect(step).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should reject a step scoped to both company and cost center", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		creation := &flow.StepCreation{CompanyID: idPtr(1), CostCenterID: idPtr(2),
			Name: "gerente", Order: 1, Kind: domain.StepKindRole}
		step, err := flow.CreateStep(creation, testinfra.BuildSession(100, authority.RoleAdmin))
		Expect(step).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrStepScopeInvalid))
	})

	t.Run("should reject a duplicate order among active steps of the same scope", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, authority.RoleAdmin)
		_, err := flow.CreateStep(&flow.StepCreation{Name: "gerente", Order: 1, Kind: domain.StepKindRole}, s)
		Expect(err).To(BeNil())

		_, err = flow.CreateStep(&flow.StepCreation{Name: "diretor", Order: 1, Kind: domain.StepKindRole}, s)
		Expect(err).To(Equal(bizerror.ErrOrderConflict))

		// the same order is free in another scope
		_, err = flow.CreateStep(&flow.StepCreation{CostCenterID: idPtr(7),
			Name: "gestor", Order: 1, Kind: domain.StepKindCostCenterManager}, s)
		Expect(err).To(BeNil())
	})

	t.Run("should persist the step and its approvers", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, authority.RoleAdmin)
		creation := &flow.StepCreation{CostCenterID: idPtr(7), Name: "gestor", Order: 1,
			Kind: domain.StepKindUser, AmountMax: amountPtr(1000),
			Approvers: []flow.ApproverCreation{{UserID: idPtr(200)}, {Role: authority.RoleApprover}}}
		step, err := flow.CreateStep(creation, s)
		Expect(err).To(BeNil())
		Expect(step.ID).ToNot(BeZero())
		Expect(step.Active).To(BeTrue())
		Expect(len(step.Approvers)).To(Equal(2))

		steps, err := flow.ListSteps(flow.StepFilter{CostCenterID: idPtr(7)}, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(1))
		Expect(steps[0].ID).To(Equal(step.ID))
		Expect(steps[0].AmountMax).ToNot(BeNil())
		Expect(*steps[0].AmountMax).To(Equal(float64(1000)))
		Expect(len(steps[0].Approvers)).To(Equal(2))
		Expect(*steps[0].Approvers[0].UserID).To(Equal(types.ID(200)))
		Expect(steps[0].Approvers[1].Role).To(Equal(authority.RoleApprover))
	})
}

func TestListSteps(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should filter by scope tier and activity, ordered ascending", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, authority.RoleAdmin)
		_, err := flow.CreateStep(&flow.StepCreation{Name: "global-2", Order: 2, Kind: domain.StepKindRole}, s)
		Expect(err).To(BeNil())
		_, err = flow.CreateStep(&flow.StepCreation{Name: "global-1", Order: 1, Kind: domain.StepKindRole}, s)
		Expect(err).To(BeNil())
		_, err = flow.CreateStep(&flow.StepCreation{CompanyID: idPtr(3), Name: "company-1", Order: 1, Kind: domain.StepKindRole}, s)
		Expect(err).To(BeNil())
		created, err := flow.CreateStep(&flow.StepCreation{CostCenterID: idPtr(7), Name: "cc-1", Order: 1, Kind: domain.StepKindRole}, s)
		Expect(err).To(BeNil())

		steps, err := flow.ListSteps(flow.StepFilter{}, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(2))
		Expect(steps[0].Name).To(Equal("global-1"))
		Expect(steps[1].Name).To(Equal("global-2"))

		steps, err = flow.ListSteps(flow.StepFilter{CompanyID: idPtr(3)}, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(1))
		Expect(steps[0].Name).To(Equal("company-1"))

		steps, err = flow.ListSteps(flow.StepFilter{CostCenterID: idPtr(7)}, s)
		Expect(err).To(BeNil())
		Expect(len(steps)).To(Equal(1))
		Expect(steps[0].Name).To(Equal("cc-1"))

		// deactivated steps drop out of active-only listings
		Expect(flow.UpdateStep(created.ID, &flow.StepUpdating{Name: "cc-1", Order: 1,
			Kind: domain.StepKindRole, Active: false}, s)).To(BeNil())
		steps, err = flow.ListSteps(flow.StepFilter{CostCenterID: idPtr(7), ActiveOnly: true}, s)
		Expect(err).To(BeNil())
		Expect(steps).To(BeEmpty())
	})
}

func TestUpdateStepRangeOrders(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should apply wanted orders in one transaction", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, authority.RoleAdmin)
		step1, err := flow.CreateStep(&flow.StepCreation{Name: "a", Order: 1, Kind: domain.StepKindRole}, s)
		Expect(err).To(BeNil())
		step2, err := flow.CreateStep(&flow.StepCreation{Name: "b", Order: 2, Kind: domain.StepKindRole}, s)
		Expect(err).To(BeNil())

		Expect(flow.UpdateStepRangeOrders([]flow.StepOrderRangeUpdating{
			{ID: step1.ID, NewOrder: 2}, {ID: step2.ID, NewOrder: 1}}, s)).To(BeNil())

		steps, err := flow.ListSteps(flow.StepFilter{}, s)
		Expect(err).To(BeNil())
		Expect(steps[0].Name).To(Equal("b"))
		Expect(steps[1].Name).To(Equal("a"))
	})

	t.Run("should fail when a step is missing", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, authority.RoleAdmin)
		err := flow.UpdateStepRangeOrders([]flow.StepOrderRangeUpdating{{ID: 404, NewOrder: 3}}, s)
		Expect(err).ToNot(BeNil())
	})
}

func TestDeleteStep(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should delete the step with its approvers", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		s := testinfra.BuildSession(100, authority.RoleAdmin)
		step, err := flow.CreateStep(&flow.StepCreation{Name: "a", Order: 1, Kind: domain.StepKindRole,
			Approvers: []flow.ApproverCreation{{Role: authority.RoleApprover}}}, s)
		Expect(err).To(BeNil())

		Expect(flow.DeleteStep(step.ID, s)).To(BeNil())

		steps, err := flow.ListSteps(flow.StepFilter{}, s)
		Expect(err).To(BeNil())
		Expect(steps).To(BeEmpty())

		var count int
		Expect(testDatabase.DS.GormDB(context.Background()).Model(&domain.StepApprover{}).Count(&count).Error).To(BeNil())
		Expect(count).To(BeZero())
	})
}
