package domain

import (
	"github.com/fundwit/go-commons/types"
)

// Attachment is one file uploaded against a payment request, stored in the
// object bucket under attachments/<id>.
type Attachment struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	RequestID types.ID `json:"requestId" gorm:"index:idx_attachments_request"`

	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`

	UploaderID types.ID        `json:"uploaderId"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (a *Attachment) TableName() string {
	return "attachments"
}
