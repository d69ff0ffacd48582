package approval

import (
	"payflow/account"
	"payflow/domain"
	"payflow/persistence"
	"payflow/session"

	"github.com/fundwit/go-commons/types"
)

var QueryApprovalHistoryFunc = QueryApprovalHistory

type HistoryEntryDetail struct {
	domain.ApprovalHistoryEntry

	ActorName string `json:"actorName" gorm:"-"`
}

// QueryApprovalHistory returns the decision timeline of a request, oldest first,
// with actor names resolved for display.
func QueryApprovalHistory(requestId types.ID, s *session.Session) ([]HistoryEntryDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var entries []domain.ApprovalHistoryEntry
	if err := db.Where("request_id = ?", requestId).
		Order("create_time ASC").Find(&entries).Error; err != nil {
		return nil, err
	}

	actorIds := make([]types.ID, 0, len(entries))
	for _, entry := range entries {
		actorIds = append(actorIds, entry.ActorID)
	}
	names, err := account.QueryAccountNamesFunc(actorIds, s)
	if err != nil {
		return nil, err
	}

	details := make([]HistoryEntryDetail, 0, len(entries))
	for _, entry := range entries {
		details = append(details, HistoryEntryDetail{ApprovalHistoryEntry: entry, ActorName: names[entry.ActorID]})
	}
	return details, nil
}
