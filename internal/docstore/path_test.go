package docstore

import (
	"errors"
	"testing"

	sharederrors "codbank/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentPath(t *testing.T) {
	p, err := ParseDocumentPath("/codusers/uid-1/accounts/acc_9/")
	require.NoError(t, err)

	assert.Equal(t, "codusers/uid-1/accounts/acc_9", p.String())
	assert.True(t, p.IsDocument())
	assert.Equal(t, "acc_9", p.ID())
	assert.Equal(t, "accounts", p.CollectionID())
	assert.Equal(t, "codusers/uid-1/accounts", p.Parent())
	assert.Equal(t, []string{"codusers", "uid-1", "accounts", "acc_9"}, p.Segments())
}

func TestParseCollectionPath(t *testing.T) {
	p, err := ParseCollectionPath("codusers/uid-1/accounts")
	require.NoError(t, err)

	assert.False(t, p.IsDocument())
	assert.Equal(t, "accounts", p.ID())
	assert.Equal(t, "accounts", p.CollectionID())
	assert.Equal(t, "codusers/uid-1", p.Parent())

	root, err := ParseCollectionPath("codusers")
	require.NoError(t, err)
	assert.Equal(t, "", root.Parent())
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		parse func(string) (Path, error)
		path  string
	}{
		{"empty document", ParseDocumentPath, ""},
		{"slashes only", ParsePath, "///"},
		{"collection as document", ParseDocumentPath, "codusers"},
		{"document as collection", ParseCollectionPath, "codusers/uid"},
		{"bad characters", ParseDocumentPath, "codusers/a@b"},
		{"dot segment", ParseDocumentPath, "codusers/.."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.parse(tc.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPath))
			assert.True(t, sharederrors.IsValidation(err))
		})
	}
}

func TestChildAndJoin(t *testing.T) {
	user, err := ParseDocumentPath("codusers/uid-1")
	require.NoError(t, err)

	accounts, err := user.Child("accounts")
	require.NoError(t, err)
	assert.Equal(t, "codusers/uid-1/accounts", accounts.String())
	assert.False(t, accounts.IsDocument())

	assert.Equal(t, "a/b/c", JoinPath("/a/", "", "b", "c/"))
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("abc-123_X"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("a b"))
}
