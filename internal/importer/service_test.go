package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/importer"
)

func TestService_Import(t *testing.T) {
	svc := importer.NewService(time.UTC)

	t.Run("GCash", func(t *testing.T) {
		csv := "Transaction Date,Description,Amount\n2025-03-01,Order ORD-9,750.00\n"

		lines, err := svc.Import(importer.SourceGCash, strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "Order ORD-9", lines[0].Description)
		assert.Equal(t, "750", lines[0].Amount.String())
	})

	t.Run("UnknownSource", func(t *testing.T) {
		_, err := svc.Import(importer.Source("bpi"), strings.NewReader(""))
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("UnreadableStatement", func(t *testing.T) {
		_, err := svc.Import(importer.SourceGCash, strings.NewReader("foo,bar\n1,2\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}
