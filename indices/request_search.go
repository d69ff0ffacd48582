package indices

import (
	"encoding/json"
	"fmt"
	"strings"

	"payflow/client/es"
	"payflow/domain"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
)

var SearchRequestsFunc = SearchRequests

type RequestSearchQuery struct {
	Keyword      string                 `form:"keyword"`
	Status       []domain.RequestStatus `form:"status"`
	CostCenterID *types.ID              `form:"costCenterId"`
	RequesterID  *types.ID              `form:"requesterId"`
}

func SearchRequests(q RequestSearchQuery, s *session.Session) ([]domain.PaymentRequest, error) {
	filters := make([]es.H, 0, 4)
	if q.Keyword != "" {
		filters = append(filters, es.H{"bool": es.H{"should": []es.H{
			{"match": es.H{"description": es.H{"query": q.Keyword, "operator": "AND"}}},
			{"term": es.H{"number.keyword": q.Keyword}},
		}}})
	}
	if len(q.Status) > 0 {
		filters = append(filters, es.H{"terms": es.H{"status": q.Status}})
	}
	if q.CostCenterID != nil {
		filters = append(filters, es.H{"term": es.H{"costCenterId": *q.CostCenterID}})
	}
	if q.RequesterID != nil {
		filters = append(filters, es.H{"term": es.H{"requesterId": *q.RequesterID}})
	}

	sorts := []es.H{{"createTime": es.H{"order": "desc"}}}

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(RequestIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	records := make([]domain.PaymentRequest, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := RequestDocument{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&doc); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		records = append(records, doc.PaymentRequest)
	}
	return records, nil
}
