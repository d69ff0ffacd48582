package settings

import (
	"strconv"

	"payflow/bizerror"
	"payflow/domain"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

const (
	KeyFinanceDirectorLimit = "finance_director_limit"

	DefaultFinanceDirectorLimit = 50000
)

var (
	configIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryConfigsFunc         = QueryConfigs
	GetConfigValueFunc       = GetConfigValue
	SetConfigValueFunc       = SetConfigValue
	FinanceDirectorLimitFunc = FinanceDirectorLimit
)

type ConfigUpdating struct {
	Value string `json:"value" binding:"required,lte=255"`
}

func QueryConfigs(s *session.Session) ([]domain.WorkflowConfig, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []domain.WorkflowConfig
	if err := db.Order("config_key ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetConfigValue returns the stored value, or the empty string when the key is unset.
func GetConfigValue(key string, s *session.Session) (string, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.WorkflowConfig{}
	err := db.Where("config_key = ?", key).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return record.Value, nil
}

func SetConfigValue(key string, u *ConfigUpdating, s *session.Session) error {
	if !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		record := domain.WorkflowConfig{}
		err := tx.Where("config_key = ?", key).First(&record).Error
		if gorm.IsRecordNotFoundError(err) {
			return tx.Create(&domain.WorkflowConfig{
				ID: idgen.NextID(configIdWorker), Key: key, Value: u.Value,
				UpdateTime: types.CurrentTimestamp(),
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&domain.WorkflowConfig{}).Where("config_key = ?", key).
			Update(map[string]interface{}{"config_value": u.Value, "update_time": types.CurrentTimestamp()}).Error
	})
}

// FinanceDirectorLimit is the amount above which the finance director stage kicks in.
func FinanceDirectorLimit(s *session.Session) float64 {
	value, err := GetConfigValueFunc(KeyFinanceDirectorLimit, s)
	if err != nil {
		logrus.Warnf("failed to load config %s: %v\n", KeyFinanceDirectorLimit, err)
		return DefaultFinanceDirectorLimit
	}
	if value == "" {
		return DefaultFinanceDirectorLimit
	}
	limit, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.Warnf("malformed config %s value %q\n", KeyFinanceDirectorLimit, value)
		return DefaultFinanceDirectorLimit
	}
	return limit
}
