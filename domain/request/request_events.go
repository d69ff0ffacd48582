package request

import (
	"payflow/domain"
	"payflow/event"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func CreateRequestCreatedEvent(r *domain.PaymentRequest, identity *session.Identity,
	timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypePaymentRequest, r.ID, r.Number,
		event.EventCategoryCreated, nil, identity, timestamp, db)
}

func CreateRequestPropertyUpdatedEvent(r *domain.PaymentRequest, updates []event.UpdatedProperty,
	identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypePaymentRequest, r.ID, r.Number,
		event.EventCategoryPropertyUpdated, updates, identity, timestamp, db)
}

func StatusUpdatedProperty(from, to domain.RequestStatus) []event.UpdatedProperty {
	return []event.UpdatedProperty{{
		PropertyName: "status",
		OldValue:     string(from),
		NewValue:     string(to),
	}}
}
