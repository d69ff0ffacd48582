package settings_test

import (
	"context"
	"testing"

	"payflow/authority"
	"payflow/bizerror"
	"payflow/domain"
	"payflow/domain/settings"
	"payflow/persistence"
	"payflow/testinfra"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("payflow")
	assert.Nil(t, db.DS.GormDB(context.Background()).AutoMigrate(&domain.WorkflowConfig{}).Error)
	persistence.ActiveDataSourceManager = db.DS
	*testDatabase = db
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestConfigValues(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should forbid non admin users to change configs", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		err := settings.SetConfigValue(settings.KeyFinanceDirectorLimit,
			&settings.ConfigUpdating{Value: "80000"}, testinfra.BuildSession(100, authority.RoleApprover))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should store and update values by key", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.RoleAdmin)

		value, err := settings.GetConfigValue("some_key", admin)
		Expect(err).To(BeNil())
		Expect(value).To(Equal(""))

		Expect(settings.SetConfigValue("some_key", &settings.ConfigUpdating{Value: "a"}, admin)).To(BeNil())
		Expect(settings.SetConfigValue("some_key", &settings.ConfigUpdating{Value: "b"}, admin)).To(BeNil())

		value, err = settings.GetConfigValue("some_key", admin)
		Expect(err).To(BeNil())
		Expect(value).To(Equal("b"))

		configs, err := settings.QueryConfigs(admin)
		Expect(err).To(BeNil())
		Expect(len(configs)).To(Equal(1))
		Expect(configs[0].Key).To(Equal("some_key"))
		Expect(configs[0].Value).To(Equal("b"))
	})
}

func TestFinanceDirectorLimit(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should fall back to the default when unset or malformed", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.RoleAdmin)
		Expect(settings.FinanceDirectorLimit(admin)).To(Equal(float64(settings.DefaultFinanceDirectorLimit)))

		Expect(settings.SetConfigValue(settings.KeyFinanceDirectorLimit,
			&settings.ConfigUpdating{Value: "not-a-number"}, admin)).To(BeNil())
		Expect(settings.FinanceDirectorLimit(admin)).To(Equal(float64(settings.DefaultFinanceDirectorLimit)))

		Expect(settings.SetConfigValue(settings.KeyFinanceDirectorLimit,
			&settings.ConfigUpdating{Value: "80000"}, admin)).To(BeNil())
		Expect(settings.FinanceDirectorLimit(admin)).To(Equal(float64(80000)))
	})
}
