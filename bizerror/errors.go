package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidPassword = errors.New("invalid password")

	ErrRejectionNoteRequired = errors.New("a note is required when rejecting")
	ErrInsufficientBudget    = errors.New("insufficient budget for cost center")
	ErrStatusConflict        = errors.New("request status changed concurrently")
	ErrRequestNotPending     = errors.New("request is not pending approval")
	ErrOrderConflict         = errors.New("step order already used in this scope")
	ErrStepScopeInvalid      = errors.New("step may target a company or a cost center, not both")
	ErrBudgetExisted         = errors.New("budget already exists for cost center and year")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
