package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/bankrecon/internal/adapter/http/handler"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/usecase"
	"github.com/iho/bankrecon/internal/usecase/mocks"
)

func movementRouter(h *handler.MovementHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/movements/{source}", h.List)
	r.Patch("/movements/{source}/handled", h.SetHandled)
	r.Patch("/movements/{source}/{id}/note", h.SetNote)
	r.Get("/movements/{source}/stats", h.Stats)
	return r
}

func TestListMovements(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMovementRepository(ctrl)
	repo.EXPECT().
		QueryRange(gomock.Any(), domain.SourceBank, "2024-01-01", "2024-01-31").
		Return([]domain.Movement{
			{ID: "m1", Date: "2024-01-10", Amount: decimal.RequireFromString("-42.00"), Description: "PAG SERVICO"},
		}, nil)

	h := handler.NewMovementHandler(usecase.NewMovementUseCase(repo, nil))

	req := httptest.NewRequest(http.MethodGet, "/movements/bank?start=2024-01-01&end=2024-01-31", nil)
	rec := httptest.NewRecorder()
	movementRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body) != 1 || body[0]["id"] != "m1" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestListMovementsUnknownSource(t *testing.T) {
	h := handler.NewMovementHandler(usecase.NewMovementUseCase(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/movements/payroll?start=2024-01-01&end=2024-01-31", nil)
	rec := httptest.NewRecorder()
	movementRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListMovementsInvalidRange(t *testing.T) {
	h := handler.NewMovementHandler(usecase.NewMovementUseCase(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/movements/bank?start=2024-02-01&end=2024-01-01", nil)
	rec := httptest.NewRecorder()
	movementRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", rec.Code)
	}
}

func TestSetHandled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMovementRepository(ctrl)
	repo.EXPECT().
		BulkSetHandled(gomock.Any(), domain.SourceAccounting, []string{"m1", "m2"}, true).
		Return(2, nil)

	h := handler.NewMovementHandler(usecase.NewMovementUseCase(repo, nil))

	body := strings.NewReader(`{"ids":["m1","m2"],"handled":true}`)
	req := httptest.NewRequest(http.MethodPatch, "/movements/accounting/handled", body)
	rec := httptest.NewRecorder()
	movementRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"updated":2`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSetNoteNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMovementRepository(ctrl)
	repo.EXPECT().
		SetNote(gomock.Any(), domain.SourceBank, "missing", "internal transfer").
		Return(domain.ErrMovementNotFound)

	h := handler.NewMovementHandler(usecase.NewMovementUseCase(repo, nil))

	body := strings.NewReader(`{"note":"internal transfer"}`)
	req := httptest.NewRequest(http.MethodPatch, "/movements/bank/missing/note", body)
	rec := httptest.NewRecorder()
	movementRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatsDefaultsYear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMovementRepository(ctrl)
	repo.EXPECT().
		StatsForYear(gomock.Any(), domain.SourceBank, gomock.Any()).
		Return(&domain.SourceStats{MinDate: "2026-01-02", MaxDate: "2026-06-30", Count: 12}, nil)

	h := handler.NewMovementHandler(usecase.NewMovementUseCase(repo, nil))

	req := httptest.NewRequest(http.MethodGet, "/movements/bank/stats", nil)
	rec := httptest.NewRecorder()
	movementRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"count":12`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
