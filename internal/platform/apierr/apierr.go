// Package apierr maps failure kinds onto HTTP statuses.
package apierr

import (
	"errors"
	"net/http"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

// Error pins an explicit status and machine code onto an error.
type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

var statusByKind = map[perrors.Kind]int{
	perrors.KindNotFound:        http.StatusNotFound,
	perrors.KindInvalidLabel:    http.StatusBadRequest,
	perrors.KindMalformedInput:  http.StatusBadRequest,
	perrors.KindInvalidArgument: http.StatusBadRequest,
	perrors.KindStoreConnection: http.StatusServiceUnavailable,
	perrors.KindStoreQuery:      http.StatusBadGateway,
}

// FromError maps err to an API error. An *Error anywhere in the chain is
// returned as is; typed failures use their kind as the code; anything else
// is a 500 "internal".
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	kind := perrors.KindOf(err)
	if status, ok := statusByKind[kind]; ok {
		return New(status, string(kind), err)
	}
	return New(http.StatusInternalServerError, "internal", err)
}
