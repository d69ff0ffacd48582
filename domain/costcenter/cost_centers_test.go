package costcenter_test

import (
	"context"

	"payflow/authority"
	"payflow/bizerror"
	"payflow/domain"
	"payflow/domain/costcenter"
	"payflow/persistence"
	"payflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("costCenters", func() {
	var (
		testDatabase *testinfra.TestDatabase
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("payflow")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(
			&domain.CostCenter{}, &domain.Company{}).Error).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateCostCenter", func() {
		It("should be blocked when user lack of permission", func() {
			record, err := costcenter.CreateCostCenter(&costcenter.CostCenterCreation{Code: "TI", Name: "Tecnologia"},
				testinfra.BuildSession(100, authority.RoleApprover))
			Expect(err).To(Equal(bizerror.ErrForbidden))
			Expect(record).To(BeNil())
		})

		It("should be able to create cost centers correctly", func() {
			admin := testinfra.BuildSession(1, authority.RoleAdmin)
			managerId := types.ID(300)
			record, err := costcenter.CreateCostCenter(&costcenter.CostCenterCreation{
				Code: "TI", Name: "Tecnologia", ManagerID: &managerId}, admin)
			Expect(err).To(BeNil())
			Expect(record.Code).To(Equal("TI"))
			Expect(record.Active).To(BeTrue())

			records, err := costcenter.QueryCostCenters(costcenter.CostCenterQuery{}, admin)
			Expect(err).To(BeNil())
			Expect(len(records)).To(Equal(1))
			Expect(records[0].ID).To(Equal(record.ID))
		})
	})

	Describe("UpdateCostCenter", func() {
		It("should be able to update and deactivate cost centers", func() {
			admin := testinfra.BuildSession(1, authority.RoleAdmin)
			record, err := costcenter.CreateCostCenter(&costcenter.CostCenterCreation{Code: "TI", Name: "Tecnologia"}, admin)
			Expect(err).To(BeNil())

			Expect(costcenter.UpdateCostCenter(record.ID,
				&costcenter.CostCenterUpdating{Name: "Tecnologia da Informação", Active: false}, admin)).To(BeNil())

			records, err := costcenter.QueryCostCenters(costcenter.CostCenterQuery{ActiveOnly: true}, admin)
			Expect(err).To(BeNil())
			Expect(len(records)).To(Equal(0))

			records, err = costcenter.QueryCostCenters(costcenter.CostCenterQuery{}, admin)
			Expect(err).To(BeNil())
			Expect(records[0].Name).To(Equal("Tecnologia da Informação"))
		})
	})

	Describe("ManagerOf", func() {
		It("should return the manager when assigned, nil otherwise", func() {
			admin := testinfra.BuildSession(1, authority.RoleAdmin)
			managerId := types.ID(300)
			withManager, err := costcenter.CreateCostCenter(&costcenter.CostCenterCreation{
				Code: "TI", Name: "Tecnologia", ManagerID: &managerId}, admin)
			Expect(err).To(BeNil())
			withoutManager, err := costcenter.CreateCostCenter(&costcenter.CostCenterCreation{
				Code: "RH", Name: "Recursos Humanos"}, admin)
			Expect(err).To(BeNil())

			found, err := costcenter.ManagerOf(withManager.ID, admin)
			Expect(err).To(BeNil())
			Expect(*found).To(Equal(types.ID(300)))

			found, err = costcenter.ManagerOf(withoutManager.ID, admin)
			Expect(err).To(BeNil())
			Expect(found).To(BeNil())

			_, err = costcenter.ManagerOf(404, admin)
			Expect(gorm.IsRecordNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("Companies", func() {
		It("should be able to manage companies", func() {
			admin := testinfra.BuildSession(1, authority.RoleAdmin)

			_, err := costcenter.CreateCompany(&costcenter.CompanyCreation{Name: "Acme"},
				testinfra.BuildSession(100, authority.RoleApprover))
			Expect(err).To(Equal(bizerror.ErrForbidden))

			record, err := costcenter.CreateCompany(&costcenter.CompanyCreation{
				Name: "Acme", CNPJ: "12.345.678/0001-90"}, admin)
			Expect(err).To(BeNil())
			Expect(record.Active).To(BeTrue())

			Expect(costcenter.UpdateCompany(record.ID,
				&costcenter.CompanyUpdating{Name: "Acme Ltda", CNPJ: record.CNPJ, Active: true}, admin)).To(BeNil())

			records, err := costcenter.QueryCompanies(admin)
			Expect(err).To(BeNil())
			Expect(len(records)).To(Equal(1))
			Expect(records[0].Name).To(Equal("Acme Ltda"))
		})
	})
})
