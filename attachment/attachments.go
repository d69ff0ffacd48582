package attachment

import (
	"io"

	"payflow/bizerror"
	"payflow/client/s3"
	"payflow/domain"
	"payflow/idgen"
	"payflow/persistence"
	"payflow/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	attachmentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateAttachmentFunc = CreateAttachment
	ListAttachmentsFunc  = ListAttachments
	DetailAttachmentFunc = DetailAttachment
	DeleteAttachmentFunc = DeleteAttachment
)

func objectKey(id types.ID) string {
	return "attachments/" + id.String()
}

func CreateAttachment(requestId types.ID, fileName, contentType string, size int64,
	r io.Reader, s *session.Session) (*domain.Attachment, error) {

	if s.Identity.ID == 0 {
		return nil, bizerror.ErrUnauthenticated
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&domain.PaymentRequest{ID: requestId}).
		First(&domain.PaymentRequest{}).Error; err != nil {
		return nil, err
	}

	record := domain.Attachment{
		ID:          idgen.NextID(attachmentIdWorker),
		RequestID:   requestId,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		UploaderID:  s.Identity.ID,
		CreateTime:  types.CurrentTimestamp(),
	}

	if err := s3.PutObjectFunc(objectKey(record.ID), r, s); err != nil {
		return nil, err
	}
	if err := db.Create(&record).Error; err != nil {
		if cleanupErr := s3.DeleteObjectFunc(objectKey(record.ID), s); cleanupErr != nil {
			logrus.Warnf("failed to clean up object %s: %v\n", objectKey(record.ID), cleanupErr)
		}
		return nil, err
	}
	return &record, nil
}

func ListAttachments(requestId types.ID, s *session.Session) ([]domain.Attachment, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []domain.Attachment
	if err := db.Where("request_id = ?", requestId).
		Order("create_time ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func DetailAttachment(id types.ID, s *session.Session) (*domain.Attachment, io.ReadCloser, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.Attachment{}
	if err := db.Where(&domain.Attachment{ID: id}).First(&record).Error; err != nil {
		return nil, nil, err
	}

	r, err := s3.GetObjectFunc(objectKey(id), s)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, nil, bizerror.ErrNotFound
		}
		return nil, nil, err
	}
	return &record, r, nil
}

func DeleteAttachment(id types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := domain.Attachment{}
	if err := db.Where(&domain.Attachment{ID: id}).First(&record).Error; err != nil {
		return err
	}
	if record.UploaderID != s.Identity.ID && !s.Perms.IsAdmin() {
		return bizerror.ErrForbidden
	}

	if err := db.Delete(&domain.Attachment{}, "id = ?", id).Error; err != nil {
		return err
	}
	if err := s3.DeleteObjectFunc(objectKey(id), s); err != nil {
		logrus.Warnf("failed to delete object %s: %v\n", objectKey(id), err)
	}
	return nil
}
