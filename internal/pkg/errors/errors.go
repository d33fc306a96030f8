// Package errors defines the typed failures returned by the loader and query
// entry points. Callers test the failure class with errors.Is against the
// sentinels and read operation context with errors.As(*Error).
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindInvalidLabel    Kind = "invalid_label"
	KindNotFound        Kind = "not_found"
	KindStoreConnection Kind = "store_connection"
	KindMalformedInput  Kind = "malformed_input"
	KindStoreQuery      Kind = "store_query"
	KindInvalidArgument Kind = "invalid_argument"
)

var (
	// ErrInvalidLabel marks a node kind that fails the strict label grammar.
	ErrInvalidLabel = errors.New("invalid label")
	// ErrNotFound marks a missing query root entity.
	ErrNotFound = errors.New("not found")
	// ErrStoreConnection marks transport or auth failures talking to a store.
	ErrStoreConnection = errors.New("store connection failed")
	// ErrMalformedInput marks unreadable input or missing required columns.
	ErrMalformedInput = errors.New("malformed input")
	// ErrStoreQuery marks a store that was reachable but rejected the operation.
	ErrStoreQuery = errors.New("store query failed")
	// ErrInvalidArgument marks a caller-supplied argument that cannot be used.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Context keys used across packages.
const (
	CtxStore    = "store"
	CtxRelation = "relation"
	CtxMetaedge = "metaedge"
	CtxKind     = "kind"
	CtxBatch    = "batch"
	CtxOffset   = "offset"
	CtxSize     = "size"
	CtxPath     = "path"
	CtxLine     = "line"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
	Context map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(sentinel(e.Kind).Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString("]")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == sentinel(e.Kind)
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func sentinel(k Kind) error {
	switch k {
	case KindInvalidLabel:
		return ErrInvalidLabel
	case KindNotFound:
		return ErrNotFound
	case KindStoreConnection:
		return ErrStoreConnection
	case KindMalformedInput:
		return ErrMalformedInput
	case KindStoreQuery:
		return ErrStoreQuery
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return errors.New(string(k))
	}
}

func InvalidLabel(label string) *Error {
	return &Error{
		Kind:    KindInvalidLabel,
		Op:      "validate label",
		Message: fmt.Sprintf("invalid label %q: must match ^[A-Za-z][A-Za-z0-9_]*$", label),
	}
}

func NotFound(op, id string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("entity %q not found", id)}
}

func StoreConnection(op, store string, err error) *Error {
	return (&Error{Kind: KindStoreConnection, Op: op, Err: err}).WithContext(CtxStore, store)
}

func StoreQuery(op, store string, err error) *Error {
	return (&Error{Kind: KindStoreQuery, Op: op, Err: err}).WithContext(CtxStore, store)
}

func MalformedInput(op, path, msg string, err error) *Error {
	e := &Error{Kind: KindMalformedInput, Op: op, Message: msg, Err: err}
	if path != "" {
		e.WithContext(CtxPath, path)
	}
	return e
}

func InvalidArgument(op, msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Message: msg}
}

// KindOf returns the failure kind of err, or "" when err is not typed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AddContext attaches key/value to a typed error; untyped errors are returned unchanged.
func AddContext(err error, key string, value any) error {
	var e *Error
	if errors.As(err, &e) {
		e.WithContext(key, value)
	}
	return err
}
