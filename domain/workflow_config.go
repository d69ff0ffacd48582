package domain

import (
	"github.com/fundwit/go-commons/types"
)

// WorkflowConfig is one key/value tuning entry of the approval workflow.
type WorkflowConfig struct {
	ID    types.ID `json:"id" gorm:"primary_key"`
	Key   string   `json:"key" gorm:"column:config_key;unique_index:uni_workflow_config_key"`
	Value string   `json:"value" gorm:"column:config_value"`

	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *WorkflowConfig) TableName() string {
	return "workflow_config"
}
