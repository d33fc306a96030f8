package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	cases := []struct {
		err  error
		want error
		kind Kind
	}{
		{InvalidLabel("1bad"), ErrInvalidLabel, KindInvalidLabel},
		{NotFound("neighborhood", "Disease::X"), ErrNotFound, KindNotFound},
		{StoreConnection("merge edges", "neo4j", errors.New("dial")), ErrStoreConnection, KindStoreConnection},
		{StoreQuery("merge edges", "neo4j", errors.New("syntax")), ErrStoreQuery, KindStoreQuery},
		{MalformedInput("read header", "nodes.tsv", "empty file", nil), ErrMalformedInput, KindMalformedInput},
		{InvalidArgument("repurposing", "limit must be >= 0"), ErrInvalidArgument, KindInvalidArgument},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.want)
		assert.Equal(t, tc.kind, KindOf(tc.err))
		wrapped := fmt.Errorf("outer: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.want)
		assert.Equal(t, tc.kind, KindOf(wrapped))
	}
	assert.NotErrorIs(t, NotFound("x", "y"), ErrStoreQuery)
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := StoreConnection("expand", "neo4j", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestContextRendering(t *testing.T) {
	err := StoreQuery("merge edges", "neo4j", errors.New("boom"))
	err.WithContext(CtxRelation, "CtD").WithContext(CtxBatch, 2)
	assert.Equal(t, "merge edges: boom [batch=2 relation=CtD store=neo4j]", err.Error())
}

func TestAddContext(t *testing.T) {
	var typed error = InvalidArgument("op", "bad")
	out := AddContext(fmt.Errorf("wrap: %w", typed), CtxOffset, 1000)
	var e *Error
	require.True(t, errors.As(out, &e))
	assert.Equal(t, 1000, e.Context[CtxOffset])

	plain := errors.New("plain")
	assert.Same(t, plain, AddContext(plain, CtxOffset, 1))
	assert.Equal(t, Kind(""), KindOf(plain))
}

func TestMessageFallsBackToKind(t *testing.T) {
	err := &Error{Kind: KindNotFound, Op: "lookup"}
	assert.Equal(t, "lookup: not found", err.Error())
}
