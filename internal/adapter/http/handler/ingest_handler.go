package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/adapter/http/dto"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/infrastructure/metrics"
	"github.com/iho/bankrecon/internal/usecase"
)

// IngestHandler handles statement upload, verification and import requests.
type IngestHandler struct {
	ingest       *usecase.IngestUseCase
	verification *usecase.VerificationUseCase
	ids          usecase.IDGenerator
	metrics      *metrics.Metrics
	maxBytes     int64
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(
	ingest *usecase.IngestUseCase,
	verification *usecase.VerificationUseCase,
	ids usecase.IDGenerator,
	m *metrics.Metrics,
	maxBytes int64,
) *IngestHandler {
	return &IngestHandler{
		ingest:       ingest,
		verification: verification,
		ids:          ids,
		metrics:      m,
		maxBytes:     maxBytes,
	}
}

// Upload handles POST /movements/{source}/upload.
func (h *IngestHandler) Upload(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown source", err.Error())
		return
	}

	data, filename, err := h.readUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	start := time.Now()
	result, err := h.ingest.Ingest(r.Context(), source, data, filename)
	if err != nil {
		h.recordUpload(source, "error", start)
		if h.metrics != nil && errors.Is(err, domain.ErrUnreadableInput) {
			h.metrics.ParseFailures.WithLabelValues(string(source)).Inc()
		}
		writeError(w, mapDomainError(err), "ingest failed", err.Error())
		return
	}

	h.recordUpload(source, "ok", start)
	if h.metrics != nil {
		h.metrics.MovementsIngested.WithLabelValues(string(source)).Add(float64(result.Added))
		h.metrics.DuplicatesSkipped.WithLabelValues(string(source)).Add(float64(result.Skipped))
	}

	writeJSON(w, http.StatusOK, dto.IngestFromDomain(*result))
}

// Verify handles POST /movements/{source}/verify. The uploaded file is
// diffed against the ledger without writing anything.
func (h *IngestHandler) Verify(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown source", err.Error())
		return
	}

	data, _, err := h.readUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	result, err := h.verification.Verify(r.Context(), source, data)
	if err != nil {
		writeError(w, mapDomainError(err), "verification failed", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.VerificationsTotal.Inc()
		h.metrics.MissingInLedger.Observe(float64(len(result.MissingInLedger)))
	}

	writeJSON(w, http.StatusOK, dto.VerificationFromDomain(*result))
}

// importMovementItem is one row of an import request body.
type importMovementItem struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Import handles POST /movements/{source}/import, promoting rows a
// verification reported missing into the ledger.
func (h *IngestHandler) Import(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown source", err.Error())
		return
	}

	var items []importMovementItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movements := make([]domain.Movement, 0, len(items))
	for _, item := range items {
		if _, err := time.Parse(time.DateOnly, item.Date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", item.Date)
			return
		}
		movements = append(movements, domain.Movement{
			ID:          h.ids.Generate(),
			Date:        item.Date,
			Amount:      item.Amount,
			Description: item.Description,
		})
	}

	result, err := h.ingest.ImportMovements(r.Context(), source, movements)
	if err != nil {
		writeError(w, mapDomainError(err), "import failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IngestFromDomain(*result))
}

// readUpload extracts the "file" part of a multipart upload, capped at
// the configured size.
func (h *IngestHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	return data, header.Filename, nil
}

func (h *IngestHandler) recordUpload(source domain.Source, status string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.UploadsTotal.WithLabelValues(string(source), status).Inc()
	h.metrics.UploadDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())
}
