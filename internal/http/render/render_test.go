package render_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/http/render"
)

func requestWithID(raw string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", raw)

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: "42", want: 42},
		{raw: "9223372036854775807", want: 9223372036854775807},
		{raw: "", wantErr: true},
		{raw: "0", wantErr: true},
		{raw: "010", wantErr: true},
		{raw: "0x1A", wantErr: true},
		{raw: "0b11", wantErr: true},
		{raw: "+7", wantErr: true},
		{raw: "-7", wantErr: true},
		{raw: "1_000", wantErr: true},
		{raw: "12abc", wantErr: true},
		{raw: "9223372036854775808", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := render.IDParam(requestWithID(tc.raw), "id")

			if tc.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.Equal(t, http.StatusBadRequest, render.Status(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
