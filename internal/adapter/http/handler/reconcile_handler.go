package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/iho/bankrecon/internal/adapter/http/dto"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/infrastructure/metrics"
	"github.com/iho/bankrecon/internal/matcher"
	"github.com/iho/bankrecon/internal/usecase"
)

// ReconcileHandler handles reconciliation requests.
type ReconcileHandler struct {
	reconcile *usecase.ReconcileUseCase
	opts      matcher.Options
	metrics   *metrics.Metrics
	maxBytes  int64
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(reconcile *usecase.ReconcileUseCase, opts matcher.Options, m *metrics.Metrics, maxBytes int64) *ReconcileHandler {
	return &ReconcileHandler{
		reconcile: reconcile,
		opts:      opts,
		metrics:   m,
		maxBytes:  maxBytes,
	}
}

// Files handles POST /reconcile: two uploaded statements are matched
// against each other without touching the ledgers.
func (h *ReconcileHandler) Files(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxBytes)

	bankData, err := readFilePart(r, "bank")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing bank file", err.Error())
		return
	}

	accountingData, err := readFilePart(r, "accounting")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing accounting file", err.Error())
		return
	}

	start := time.Now()
	result, err := h.reconcile.ReconcileFiles(r.Context(), bankData, accountingData, h.optionsFor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "reconciliation failed", err.Error())
		return
	}

	h.record(result, start)
	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(*result))
}

// Range handles GET /reconcile/range: both ledgers are matched over an
// inclusive date window.
func (h *ReconcileHandler) Range(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start")
	endDate := r.URL.Query().Get("end")

	start := time.Now()
	result, err := h.reconcile.ReconcileRange(r.Context(), startDate, endDate, h.optionsFor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "reconciliation failed", err.Error())
		return
	}

	h.record(result, start)
	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(*result))
}

// optionsFor applies per-request overrides to the configured defaults.
// Matching sign semantics stay strict unless the caller opts in.
func (h *ReconcileHandler) optionsFor(r *http.Request) matcher.Options {
	opts := h.opts
	if r.URL.Query().Get("match_absolute") == "true" {
		opts.MatchAbsolute = true
	}
	return opts
}

func (h *ReconcileHandler) record(result *domain.ReconciliationResult, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.ReconciliationsTotal.Inc()
	h.metrics.MatchedPairs.Observe(float64(len(result.Matched)))
	h.metrics.UnmatchedMovements.WithLabelValues(string(domain.SourceBank)).Observe(float64(len(result.BankOnly)))
	h.metrics.UnmatchedMovements.WithLabelValues(string(domain.SourceAccounting)).Observe(float64(len(result.AccountingOnly)))
	h.metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
}

// readFilePart extracts one named file from a multipart form.
func readFilePart(r *http.Request, name string) ([]byte, error) {
	file, _, err := r.FormFile(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
