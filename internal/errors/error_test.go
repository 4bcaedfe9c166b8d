package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/internal/errors"
)

func TestKindTagging(t *testing.T) {
	err := errors.NotFoundErr("resource %s missing", "res1")
	require.Error(t, err)
	assert.Equal(t, errors.NotFound, errors.KindOf(err))
	assert.Contains(t, err.Error(), "res1")
}

func TestWrapPreservesCause(t *testing.T) {
	root := errors.InputErr("bad mime type")
	wrapped := errors.Wrap(root, "createResource")
	assert.Equal(t, root, errors.Cause(wrapped))
}

func TestWithKindOnPlainError(t *testing.T) {
	err := errors.WithKind(assertErr{}, errors.Cryptographic)
	assert.Equal(t, errors.Cryptographic, errors.KindOf(err))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
