package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{perrors.NotFound("neighborhood", "Disease::X"), http.StatusNotFound, "not_found"},
		{perrors.InvalidLabel("1bad"), http.StatusBadRequest, "invalid_label"},
		{perrors.MalformedInput("read header", "n.tsv", "empty file", nil), http.StatusBadRequest, "malformed_input"},
		{perrors.InvalidArgument("repurposing", "bad limit"), http.StatusBadRequest, "invalid_argument"},
		{perrors.StoreConnection("expand", "neo4j", errors.New("dial")), http.StatusServiceUnavailable, "store_connection"},
		{fmt.Errorf("wrapped: %w", perrors.StoreQuery("expand", "neo4j", errors.New("syntax"))), http.StatusBadGateway, "store_query"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
		{New(http.StatusConflict, "busy", nil), http.StatusConflict, "busy"},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		assert.Equal(t, tc.status, got.Status, tc.err.Error())
		assert.Equal(t, tc.code, got.Code)
	}
}
