package importcsv

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/http/render"
	"github.com/m-cagatin/rfmclothingshop/internal/importer"
	"github.com/m-cagatin/rfmclothingshop/internal/matching"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc   *importer.Service
	cashflowSvc *cashflow.Service
	matchSvc    *matching.Service
}

func NewHandler(importSvc *importer.Service, cashflowSvc *cashflow.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		importSvc:   importSvc,
		cashflowSvc: cashflowSvc,
		matchSvc:    matchSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importStatement)
	r.Post("/confirm", h.confirmImport)
}

type entryResponse struct {
	ID            int64           `json:"id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Type          cashflow.Type   `json:"type"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

type lineDTO struct {
	Date          time.Time       `json:"date" validate:"required"`
	Description   string          `json:"description" validate:"required"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Vendor        string          `json:"vendor,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

type conflictDTO struct {
	Incoming lineDTO       `json:"incoming"`
	Existing entryResponse `json:"existing"`
}

type importSuccessResponse struct {
	Imported     int             `json:"imported"`
	Transactions []entryResponse `json:"transactions"`
}

type importPreviewResponse struct {
	DryRun    bool          `json:"dryRun,omitempty"`
	New       []lineDTO     `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
}

type confirmRequest struct {
	Lines []lineDTO `json:"lines" validate:"required,dive"`
}

// importStatement parses an uploaded statement, tags each line with a category rule and stores it.
// When some lines look like existing entries nothing is stored and 409 lists them for confirmation.
// With ?dryRun=true the parsed lines are returned without touching the ledger.
func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render.Error(w, r, apperr.Validationf("failed to parse form: %v", err))
		return
	}

	source := importer.Source(r.FormValue("source"))
	if source == "" {
		source = importer.SourceGCash
	}

	dryRun := false
	if s := r.URL.Query().Get("dryRun"); s != "" {
		v, err := cast.ToBoolE(s)
		if err != nil {
			render.Error(w, r, apperr.Validationf("dryRun must be a boolean, got %q", s))
			return
		}

		dryRun = v
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.Error(w, r, apperr.Validation("file field is required"))
		return
	}
	defer file.Close()

	lines, err := h.importSvc.Import(source, file)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	h.matchSvc.Categorize(r.Context(), lines)

	if dryRun {
		render.JSON(w, r, http.StatusOK, importPreviewResponse{
			DryRun:    true,
			New:       toLineDTOs(lines),
			Conflicts: []conflictDTO{},
		})

		return
	}

	result, err := h.cashflowSvc.ImportBatch(r.Context(), lines)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importPreviewResponse{
			New:       toLineDTOs(result.New),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toLineDTO(c.Incoming),
				Existing: toEntryResponse(c.Existing),
			})
		}

		render.JSON(w, r, http.StatusConflict, resp)

		return
	}

	render.JSON(w, r, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	lines := make([]cashflow.ImportParams, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, cashflow.ImportParams{
			Date:          l.Date,
			Description:   l.Description,
			Category:      l.Category,
			Amount:        l.Amount,
			Vendor:        l.Vendor,
			PaymentMethod: l.PaymentMethod,
		})
	}

	entries, err := h.cashflowSvc.CreateBatch(r.Context(), lines)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusCreated, toSuccessResponse(entries))
}

func toSuccessResponse(entries []*cashflow.Entry) importSuccessResponse {
	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}

	return importSuccessResponse{
		Imported:     len(entries),
		Transactions: resp,
	}
}

func toEntryResponse(e *cashflow.Entry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		Date:          e.Date,
		Description:   e.Description,
		Category:      e.Category,
		Amount:        e.Amount,
		Type:          e.Type(),
		PaymentMethod: e.PaymentMethod,
	}
}

func toLineDTOs(lines []cashflow.ImportParams) []lineDTO {
	resp := make([]lineDTO, 0, len(lines))
	for _, l := range lines {
		resp = append(resp, toLineDTO(l))
	}

	return resp
}

func toLineDTO(l cashflow.ImportParams) lineDTO {
	return lineDTO{
		Date:          l.Date,
		Description:   l.Description,
		Category:      l.Category,
		Amount:        l.Amount,
		Vendor:        l.Vendor,
		PaymentMethod: l.PaymentMethod,
	}
}
