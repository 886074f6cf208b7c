package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

func TestError_Kinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{name: "Validation", err: apperr.Validation("description is required"), kind: apperr.ErrValidation, message: "description is required"},
		{name: "Validationf", err: apperr.Validationf("month must be 1-12, got %d", 13), kind: apperr.ErrValidation, message: "month must be 1-12, got 13"},
		{name: "NotFoundf", err: apperr.NotFoundf("payment %d not found", 7), kind: apperr.ErrNotFound, message: "payment 7 not found"},
		{name: "Unauthorized", err: apperr.Unauthorized("unknown user"), kind: apperr.ErrUnauthorized, message: "unknown user"},
		{name: "Forbidden", err: apperr.Forbidden("admin only"), kind: apperr.ErrForbidden, message: "admin only"},
		{name: "Conflictf", err: apperr.Conflictf("payment %d is %s", 1, "paid"), kind: apperr.ErrConflict, message: "payment 1 is paid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.message, tt.err.Error())

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)

			var appErr *apperr.Error
			assert.True(t, errors.As(wrapped, &appErr))
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}
