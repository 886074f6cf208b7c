package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

func TestFromContext(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), logging.FromContext(context.Background()))
	})

	t.Run("Stored", func(t *testing.T) {
		var buf bytes.Buffer

		logger := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")
		ctx := logging.WithLogger(context.Background(), logger)

		logging.FromContext(ctx).Info("hello")

		assert.Contains(t, buf.String(), "request_id=abc")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}
