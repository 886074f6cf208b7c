package importer

import (
	"io"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
)

// Source names the origin of a statement file.
type Source string

const (
	SourceGCash Source = "gcash"
)

type Importer interface {
	Parse(r io.Reader) ([]cashflow.ImportParams, error)
}
