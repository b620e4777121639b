package errs_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vshaniya/library-manager/internal/errs"
)

func TestError_Kinds(t *testing.T) {
	t.Parallel()

	err := errs.NotFound("book with id %d not found", 42)
	require.True(t, errors.Is(err, errs.ErrNotFound))
	require.False(t, errors.Is(err, errs.ErrConflict))
	require.Equal(t, "book with id 42 not found", err.Error())

	require.True(t, errors.Is(errs.Conflict("email already exists"), errs.ErrConflict))
	require.True(t, errors.Is(errs.Validation("author with id 1 does not exist"), errs.ErrValidation))
	require.True(t, errors.Is(errs.Store("db down"), errs.ErrStore))
}

func TestError_WrapKeepsKind(t *testing.T) {
	t.Parallel()

	err := errors.Wrap(errs.NotFound("loan with id 7 not found"), "return loan")
	require.True(t, errors.Is(err, errs.ErrNotFound))
}
