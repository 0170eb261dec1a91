package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/document"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/service"
	"go.uber.org/zap"
)

const maxPrintBody = 1 << 20

// Evaluations is the read side the HTTP surface needs.
type Evaluations interface {
	Catalog() *rubric.Catalog
	StoredEvaluation(ctx context.Context, supervisorID, employeeID string) (models.EvaluationData, bool, error)
}

type Handler struct {
	evaluations Evaluations
	logger      *zap.Logger
	now         func() time.Time
}

func NewHandler(evaluations Evaluations, logger *zap.Logger) *Handler {
	if evaluations == nil {
		panic("nil Evaluations provided to NewHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{evaluations: evaluations, logger: logger, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rubric", h.handleRubric)
	r.Get("/evaluations/{supervisorID}/{employeeID}", h.handleGetEvaluation)
	r.Post("/reports/print", h.handlePrint)
}

func (h *Handler) handleRubric(w http.ResponseWriter, r *http.Request) {
	catalog := h.evaluations.Catalog()
	success(w, h.logger, map[string]any{
		"criteria": catalog.Criteria(),
		"ratings":  catalog.Options(),
	}, RequestIDFromContext(r.Context()))
}

func (h *Handler) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	ev, ok, err := h.evaluations.StoredEvaluation(r.Context(), chi.URLParam(r, "supervisorID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		h.storageFailure(w, err, reqID)
		return
	}
	if !ok {
		fail(w, h.logger, http.StatusNotFound, "not_found", "evaluation not found", reqID)
		return
	}
	success(w, h.logger, map[string]any{
		"evaluation":   ev,
		"showAdvanced": service.ShowAdvancedSession(ev.Ratings),
	}, reqID)
}

type printRequest struct {
	SupervisorID string `json:"supervisorId"`
	EmployeeID   string `json:"employeeId"`
	Report       string `json:"report"`
}

// handlePrint renders the stored evaluation and the supplied narrative as a PDF.
func (h *Handler) handlePrint(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req printRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPrintBody)).Decode(&req); err != nil {
		fail(w, h.logger, http.StatusBadRequest, "invalid_body", "invalid JSON body", reqID)
		return
	}
	if strings.TrimSpace(req.SupervisorID) == "" || strings.TrimSpace(req.EmployeeID) == "" {
		fail(w, h.logger, http.StatusBadRequest, "invalid_body", "supervisorId and employeeId are required", reqID)
		return
	}

	ev, ok, err := h.evaluations.StoredEvaluation(r.Context(), req.SupervisorID, req.EmployeeID)
	if err != nil {
		h.storageFailure(w, err, reqID)
		return
	}
	if !ok {
		fail(w, h.logger, http.StatusNotFound, "not_found", "evaluation not found", reqID)
		return
	}

	var buf bytes.Buffer
	err = document.Write(&buf, document.Input{
		Evaluation: ev,
		Blocks:     narrative.Render(req.Report),
		Catalog:    h.evaluations.Catalog(),
		PrintedAt:  h.now(),
	})
	if err != nil {
		h.logger.Error("pdf render failed", zap.String("id", ev.ID), zap.Error(err))
		fail(w, h.logger, http.StatusInternalServerError, "render_failed", "could not render document", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="avaliacao-`+ev.ID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("write pdf failed", zap.Error(err))
	}
}

func (h *Handler) storageFailure(w http.ResponseWriter, err error, reqID string) {
	h.logger.Error("storage failure", zap.Error(err))
	fail(w, h.logger, http.StatusInternalServerError, "storage_error", "storage error", reqID)
}
