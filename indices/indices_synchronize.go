package indices

import (
	"context"
	"fmt"
	"sync"

	"payflow/authority"
	"payflow/bizerror"
	"payflow/client/es"
	"payflow/domain"
	"payflow/domain/request"
	"payflow/event"
	"payflow/session"

	"github.com/sirupsen/logrus"
)

var (
	RequestIndexEventHandlerName = "requestIndexer"
	indexRobot                   = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{authority.RoleAdmin},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.IsAdmin() {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		requests, err := request.LoadRequestsFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve requests(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(requests) == 0 {
			logrus.Infof("indices fully sync: there are no more requests to index")
			return nil // loop exit
		}

		if err := IndexRequests(requests, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: error on index requests(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

func IndexRequestEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypePaymentRequest {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		err := es.DeleteDocumentByIdFunc(RequestIndexName, e.Event.SourceId, indexRobot)
		if err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete request index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: RequestIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: RequestIndexEventHandlerName}
	}

	r, err := request.DetailRequestFunc(e.Event.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail request when index request %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: RequestIndexEventHandlerName,
		}
	}
	if err := IndexRequests([]domain.PaymentRequest{*r}, indexRobot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index request %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: RequestIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: RequestIndexEventHandlerName}
}
