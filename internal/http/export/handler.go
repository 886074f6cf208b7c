package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/export"
	"github.com/m-cagatin/rfmclothingshop/internal/http/render"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

type Handler struct {
	svc      *export.Service
	cashflow *cashflow.Service
}

func NewHandler(svc *export.Service, cashflowSvc *cashflow.Service) *Handler {
	return &Handler{svc: svc, cashflow: cashflowSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

type writeFunc func(ctx context.Context, w io.Writer, start, end time.Time) (*cashflow.Report, error)

// download renders the report for ?startDate&endDate as a spreadsheet. ?format is xlsx (default) or csv.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	start, end, err := render.DateRange(r, h.cashflow.Location())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var (
		write       writeFunc
		contentType string
		ext         string
	)

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "xlsx":
		write, contentType, ext = h.svc.WriteXLSX, contentTypeXLSX, "xlsx"
	case "csv":
		write, contentType, ext = h.svc.WriteCSV, contentTypeCSV, "csv"
	default:
		render.Error(w, r, apperr.Validationf("format must be xlsx or csv, got %q", format))
		return
	}

	// Buffer so a failed report still gets a JSON error instead of a truncated file.
	var buf bytes.Buffer
	if _, err := write(r.Context(), &buf, start, end); err != nil {
		render.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("cashflow_%s_%s.%s", start.Format("20060102"), end.Format("20060102"), ext)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("failed to write export", "error", err)
	}
}
