package indices

import (
	"fmt"

	"payflow/client/es"
	"payflow/domain"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	RequestIndexName = "payment_requests"
)

type RequestDocument struct {
	domain.PaymentRequest
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexRequests(requests []domain.PaymentRequest, s *session.Session) error {
	docs := make([]RequestDocument, 0, len(requests))
	for _, r := range requests {
		docs = append(docs, RequestDocument{PaymentRequest: r})
	}

	if err := saveRequestDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveRequestDocuments(docs []RequestDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(RequestIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index request %d %s %s\n", doc.ID, doc.Number, err)
		} else {
			logrus.Infof("index request %d %s successfully\n", doc.ID, doc.Number)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
