package checkin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fatflowers/gymgate/pkg/types"
)

// VisitRef identifies a conflicting open visit so the kiosk can render
// "already checked in at HH:MM" instead of a bare error.
type VisitRef struct {
	ID      string    `json:"id"`
	CheckIn time.Time `json:"check_in"`
}

// DomainError is a terminal gate rejection: a stable (status, code, message)
// triple the HTTP layer returns verbatim. Domain rejections are never retried.
type DomainError struct {
	Status   int       `json:"-"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Conflict *VisitRef `json:"conflict,omitempty"`
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalidFormat(msg string) *DomainError {
	return &DomainError{Status: http.StatusBadRequest, Code: types.CodeInvalidFormat, Message: msg}
}

// memberNotFound covers both truly missing members and members under another
// tenant; the two must be indistinguishable to the caller.
func memberNotFound() *DomainError {
	return &DomainError{Status: http.StatusNotFound, Code: types.CodeMemberNotFound, Message: "member not found"}
}

func memberInactive() *DomainError {
	return &DomainError{Status: http.StatusForbidden, Code: types.CodeMemberInactive, Message: "member account is inactive"}
}

func noMembership() *DomainError {
	return &DomainError{Status: http.StatusForbidden, Code: types.CodeNoMembership, Message: "member has no membership"}
}

func accessDenied(code, msg string) *DomainError {
	return &DomainError{Status: http.StatusForbidden, Code: code, Message: msg}
}

func duplicateCheckin(ref *VisitRef) *DomainError {
	return &DomainError{
		Status:   http.StatusConflict,
		Code:     types.CodeDuplicateCheckin,
		Message:  "member already has an open visit",
		Conflict: ref,
	}
}

func visitNotFound() *DomainError {
	return &DomainError{Status: http.StatusNotFound, Code: types.CodeVisitNotFound, Message: "visit not found"}
}
