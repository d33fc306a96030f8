package labels

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"CtD-edge!": "CtDedge",
		"Gr>G":      "GrG",
		"AuG":       "AuG",
		"a b_c9":    "ab_c9",
		"->":        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), "Sanitize(%q)", in)
	}
}

func TestValidate(t *testing.T) {
	for _, bad := range []string{"1bad", "bad-label", "", "_x", "Gene 1"} {
		_, err := Validate(bad)
		require.Error(t, err, "Validate(%q)", bad)
		assert.True(t, errors.Is(err, perrors.ErrInvalidLabel))
	}

	got, err := Validate("Gene_1")
	require.NoError(t, err)
	assert.Equal(t, "Gene_1", got)
}

func TestNodeKindRejectsInsteadOfFixing(t *testing.T) {
	l, err := NodeKind("Side-Effect")
	require.Error(t, err)
	assert.True(t, l.IsZero())

	l, err = NodeKind("Disease")
	require.NoError(t, err)
	assert.Equal(t, "Disease", l.String())
	assert.Equal(t, "`Disease`", l.Quoted())
}

func TestRelationTypeFixesInsteadOfRejecting(t *testing.T) {
	l, err := RelationType("Gr>G")
	require.NoError(t, err)
	assert.Equal(t, "GrG", l.String())

	l, err = RelationType("-Cd-G")
	require.NoError(t, err)
	assert.Equal(t, "CdG", l.String())

	for _, raw := range []string{"-->", "1-CtD", "_x", "_CtD", "9"} {
		_, err = RelationType(raw)
		require.Error(t, err, raw)
		assert.Equal(t, perrors.KindInvalidLabel, perrors.KindOf(err), raw)
	}
}

func TestStrict(t *testing.T) {
	ls, err := Strict("CtD", "CpD")
	require.NoError(t, err)
	assert.Equal(t, []string{"CtD", "CpD"}, Names(ls))

	_, err = Strict("CtD", "C-D")
	require.Error(t, err)
}
