package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/usecase"
	"github.com/iho/bankrecon/internal/usecase/mocks"
)

func parsedMovements() []domain.Movement {
	return []domain.Movement{
		{ID: "m1", Date: "2024-03-01", Amount: decimal.RequireFromString("-120.00"), Description: "X"},
		{ID: "m2", Date: "2024-03-02", Amount: decimal.RequireFromString("55.10"), Description: "Y"},
	}
}

func TestIngestAddsAllNewMovements(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parser := mocks.NewMockStatementParser(ctrl)
	repo := mocks.NewMockMovementRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	data := []byte("statement")
	parser.EXPECT().Parse(data).Return(parsedMovements(), nil)
	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	repo.EXPECT().
		InsertIfAbsent(gomock.Any(), tx, domain.SourceBank, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, _ domain.Source, m *domain.Movement) (bool, error) {
			if m.Fingerprint == "" {
				t.Errorf("fingerprint must be computed before insert")
			}
			if m.OriginFile != "janeiro.xlsx" {
				t.Errorf("expected origin label, got %q", m.OriginFile)
			}
			return true, nil
		}).
		Times(2)

	uc := usecase.NewIngestUseCase(txm, repo, parser, nil, nil)

	result, err := uc.Ingest(context.Background(), domain.SourceBank, data, "janeiro.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Added != 2 || result.Skipped != 0 || result.Total != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestIngestSkipsDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parser := mocks.NewMockStatementParser(ctrl)
	repo := mocks.NewMockMovementRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	parser.EXPECT().Parse(gomock.Any()).Return(parsedMovements(), nil)
	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	// Second upload of the same file: nothing inserted.
	repo.EXPECT().
		InsertIfAbsent(gomock.Any(), tx, domain.SourceAccounting, gomock.Any()).
		Return(false, nil).
		Times(2)

	uc := usecase.NewIngestUseCase(txm, repo, parser, nil, nil)

	result, err := uc.Ingest(context.Background(), domain.SourceAccounting, []byte("same"), "same.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Added != 0 || result.Skipped != 2 || result.Total != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestIngestParseErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parser := mocks.NewMockStatementParser(ctrl)
	parser.EXPECT().Parse(gomock.Any()).Return(nil, domain.ErrUnreadableInput)

	uc := usecase.NewIngestUseCase(
		mocks.NewMockTransactionManager(ctrl),
		mocks.NewMockMovementRepository(ctrl),
		parser,
		nil,
		nil,
	)

	_, err := uc.Ingest(context.Background(), domain.SourceBank, []byte{0x00}, "bad.bin")
	if !errors.Is(err, domain.ErrUnreadableInput) {
		t.Fatalf("expected ErrUnreadableInput, got %v", err)
	}
}

func TestIngestInvalidatesStatsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parser := mocks.NewMockStatementParser(ctrl)
	repo := mocks.NewMockMovementRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	cache := mocks.NewMockCache(ctrl)

	parser.EXPECT().Parse(gomock.Any()).Return(parsedMovements(), nil)
	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	repo.EXPECT().InsertIfAbsent(gomock.Any(), tx, domain.SourceBank, gomock.Any()).Return(true, nil).Times(2)

	// Both movements are 2024; exactly one year key is dropped.
	cache.EXPECT().Delete(gomock.Any(), "stats:bank:2024").Return(nil)

	uc := usecase.NewIngestUseCase(txm, repo, parser, nil, cache)

	if _, err := uc.Ingest(context.Background(), domain.SourceBank, []byte("x"), "x.csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestImportMovementsUsesImportOrigin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMovementRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	repo.EXPECT().
		InsertIfAbsent(gomock.Any(), tx, domain.SourceBank, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, _ domain.Source, m *domain.Movement) (bool, error) {
			if m.OriginFile != usecase.ImportOrigin {
				t.Errorf("expected import origin, got %q", m.OriginFile)
			}
			return true, nil
		})

	uc := usecase.NewIngestUseCase(txm, repo, mocks.NewMockStatementParser(ctrl), nil, nil)

	result, err := uc.ImportMovements(context.Background(), domain.SourceBank, parsedMovements()[:1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Added != 1 {
		t.Errorf("expected 1 added, got %d", result.Added)
	}
}

func TestIngestRunsInsideRetrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parser := mocks.NewMockStatementParser(ctrl)
	repo := mocks.NewMockMovementRepository(ctrl)
	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)

	parser.EXPECT().Parse(gomock.Any()).Return(parsedMovements()[:1], nil)
	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	repo.EXPECT().InsertIfAbsent(gomock.Any(), tx, domain.SourceBank, gomock.Any()).Return(true, nil)

	retrier.EXPECT().
		Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op func() error) error {
			return op()
		})

	uc := usecase.NewIngestUseCase(txm, repo, parser, retrier, nil)

	result, err := uc.Ingest(context.Background(), domain.SourceBank, []byte("x"), "x.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Added != 1 {
		t.Errorf("expected 1 added, got %d", result.Added)
	}
}
