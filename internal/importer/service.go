package importer

import (
	"io"
	"time"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/importer/gcash"
)

type Service struct {
	gcashImporter Importer
}

// NewService builds the importer. Statement timestamps without a zone are read in loc.
func NewService(loc *time.Location) *Service {
	return &Service{
		gcashImporter: gcash.NewParser(loc),
	}
}

func (s *Service) Import(source Source, r io.Reader) ([]cashflow.ImportParams, error) {
	var importer Importer

	switch source {
	case SourceGCash:
		importer = s.gcashImporter
	default:
		return nil, apperr.Validationf("unknown statement source: %s", source)
	}

	params, err := importer.Parse(r)
	if err != nil {
		return nil, apperr.Validationf("%s statement: %v", source, err)
	}

	return params, nil
}
