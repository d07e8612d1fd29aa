package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/matcher"
	"github.com/iho/bankrecon/internal/usecase"
	"github.com/iho/bankrecon/internal/usecase/mocks"
)

func TestReconcileFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parser := mocks.NewMockStatementParser(ctrl)

	bankData := []byte("bank file")
	acctData := []byte("accounting file")

	parser.EXPECT().Parse(bankData).Return([]domain.Movement{
		{ID: "b1", Date: "2024-03-01", Amount: decimal.RequireFromString("-120.00"), Description: "X"},
	}, nil)
	parser.EXPECT().Parse(acctData).Return([]domain.Movement{
		{ID: "a1", Date: "2024-03-10", Amount: decimal.RequireFromString("-120.00"), Description: "Y"},
	}, nil)

	uc := usecase.NewReconcileUseCase(mocks.NewMockMovementRepository(ctrl), parser)

	result, err := uc.ReconcileFiles(context.Background(), bankData, acctData, matcher.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Matched) != 1 || len(result.BankOnly) != 0 || len(result.AccountingOnly) != 0 {
		t.Errorf("expected a single matched pair, got %+v", result.Summary)
	}
}

func TestReconcileFilesParseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	parser := mocks.NewMockStatementParser(ctrl)
	parser.EXPECT().Parse(gomock.Any()).Return(nil, domain.ErrUnreadableInput)

	uc := usecase.NewReconcileUseCase(mocks.NewMockMovementRepository(ctrl), parser)

	_, err := uc.ReconcileFiles(context.Background(), []byte{0x00}, []byte("ok"), matcher.Options{})
	if !errors.Is(err, domain.ErrUnreadableInput) {
		t.Fatalf("expected ErrUnreadableInput, got %v", err)
	}
}

func TestReconcileRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMovementRepository(ctrl)

	repo.EXPECT().QueryRange(gomock.Any(), domain.SourceBank, "2024-01-01", "2024-01-31").Return([]domain.Movement{
		{ID: "b1", Date: "2024-01-10", Amount: decimal.NewFromInt(100), Description: "pagamento"},
		{ID: "b2", Date: "2024-01-20", Amount: decimal.NewFromInt(-50), Description: "levantamento"},
	}, nil)
	repo.EXPECT().QueryRange(gomock.Any(), domain.SourceAccounting, "2024-01-01", "2024-01-31").Return([]domain.Movement{
		{ID: "a1", Date: "2024-01-12", Amount: decimal.NewFromInt(100), Description: "fatura"},
	}, nil)

	uc := usecase.NewReconcileUseCase(repo, mocks.NewMockStatementParser(ctrl))

	result, err := uc.ReconcileRange(context.Background(), "2024-01-01", "2024-01-31", matcher.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Matched) != 1 || len(result.BankOnly) != 1 {
		t.Errorf("unexpected partition %+v", result.Summary)
	}
}

func TestReconcileRangeInvalidRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc := usecase.NewReconcileUseCase(mocks.NewMockMovementRepository(ctrl), mocks.NewMockStatementParser(ctrl))

	_, err := uc.ReconcileRange(context.Background(), "2024-12-31", "2024-01-01", matcher.Options{})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}
