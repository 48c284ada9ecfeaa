package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"imageBackend/internal/lib/apperr"
)

func TestValidationErrorWrapsDecode(t *testing.T) {
	err := fmt.Errorf("ingest.Upload: %w", apperr.Validation("invalid image", apperr.ErrDecode))

	require.True(t, apperr.IsValidation(err))
	require.ErrorIs(t, err, apperr.ErrDecode)

	var vErr *apperr.ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, "invalid image", vErr.Reason)
}

func TestIsValidationPlainError(t *testing.T) {
	require.False(t, apperr.IsValidation(errors.New("db error")))
	require.False(t, apperr.IsValidation(apperr.ErrDecode))
}
