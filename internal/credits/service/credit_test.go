package service

import (
	"context"
	"testing"
	"time"

	creditserrors "hopper/internal/credits/errors"
	"hopper/pkg/config"
	apperrors "hopper/pkg/errors"
	"hopper/pkg/logger"
	"hopper/pkg/model"
)

const (
	companyID  = "64f1b2c3d4e5f6a7b8c9d0a1"
	contractID = "64f1b2c3d4e5f6a7b8c9d0a2"
	entryID    = "64f1b2c3d4e5f6a7b8c9d0a3"
)

type mockCreditRepository struct {
	createEntryFunc        func(ctx context.Context, entry *model.CreditEntry) error
	findByIDFunc           func(ctx context.Context, id string) (*model.CreditEntry, error)
	findActiveContractFunc func(ctx context.Context, companyID string, at time.Time) (*model.Contract, error)
	findLatestEntryFunc    func(ctx context.Context, contractID string, at time.Time) (*model.CreditEntry, error)
	findByCompanyFunc      func(ctx context.Context, companyID string, limit int, offset int64) ([]*model.CreditEntry, error)
	countByCompanyFunc     func(ctx context.Context, companyID string) (int64, error)
	debitFunc              func(ctx context.Context, entryID string, amount int) error
	refundFunc             func(ctx context.Context, entryID string, amount int) error
	adjustAllocatedFunc    func(ctx context.Context, entryID string, delta int) error
}

func (m *mockCreditRepository) CreateEntry(ctx context.Context, entry *model.CreditEntry) error {
	if m.createEntryFunc != nil {
		return m.createEntryFunc(ctx, entry)
	}
	return nil
}

func (m *mockCreditRepository) FindByID(ctx context.Context, id string) (*model.CreditEntry, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, creditserrors.ErrNotFound
}

func (m *mockCreditRepository) FindActiveContract(ctx context.Context, companyID string, at time.Time) (*model.Contract, error) {
	if m.findActiveContractFunc != nil {
		return m.findActiveContractFunc(ctx, companyID, at)
	}
	return nil, creditserrors.ErrNoActiveContract
}

func (m *mockCreditRepository) FindLatestEntry(ctx context.Context, contractID string, at time.Time) (*model.CreditEntry, error) {
	if m.findLatestEntryFunc != nil {
		return m.findLatestEntryFunc(ctx, contractID, at)
	}
	return nil, creditserrors.ErrNoLedgerPeriod
}

func (m *mockCreditRepository) FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.CreditEntry, error) {
	if m.findByCompanyFunc != nil {
		return m.findByCompanyFunc(ctx, companyID, limit, offset)
	}
	return nil, nil
}

func (m *mockCreditRepository) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	if m.countByCompanyFunc != nil {
		return m.countByCompanyFunc(ctx, companyID)
	}
	return 0, nil
}

func (m *mockCreditRepository) Debit(ctx context.Context, entryID string, amount int) error {
	if m.debitFunc != nil {
		return m.debitFunc(ctx, entryID, amount)
	}
	return nil
}

func (m *mockCreditRepository) Refund(ctx context.Context, entryID string, amount int) error {
	if m.refundFunc != nil {
		return m.refundFunc(ctx, entryID, amount)
	}
	return nil
}

func (m *mockCreditRepository) AdjustAllocated(ctx context.Context, entryID string, delta int) error {
	if m.adjustAllocatedFunc != nil {
		return m.adjustAllocatedFunc(ctx, entryID, delta)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func activeContract() *model.Contract {
	return &model.Contract{
		ID:             contractID,
		CompanyID:      companyID,
		PlanName:       "Studio",
		Seats:          10,
		MonthlyCredits: 120,
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:         model.ContractStatusActive,
	}
}

func expectCode(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
	return appErr
}

func TestBalanceAt_PicksCoveringPeriod(t *testing.T) {
	at := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	var requestedContract string
	var requestedAt time.Time
	repo := &mockCreditRepository{
		findActiveContractFunc: func(ctx context.Context, companyID string, at time.Time) (*model.Contract, error) {
			return activeContract(), nil
		},
		findLatestEntryFunc: func(ctx context.Context, contractID string, at time.Time) (*model.CreditEntry, error) {
			requestedContract = contractID
			requestedAt = at
			return &model.CreditEntry{
				ID:          entryID,
				CompanyID:   companyID,
				ContractID:  contractID,
				PeriodStart: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
				Allocated:   120,
				Consumed:    30,
			}, nil
		},
	}

	service := NewCreditService(repo, testConfig())
	balance, err := service.BalanceAt(context.Background(), companyID, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requestedContract != contractID {
		t.Errorf("expected lookup on contract %s, got %s", contractID, requestedContract)
	}
	if !requestedAt.Equal(at) {
		t.Errorf("expected period lookup at %v, got %v", at, requestedAt)
	}
	if balance.Remaining != 90 {
		t.Errorf("expected remaining 90 (120-30), got %d", balance.Remaining)
	}
	if balance.EntryID != entryID {
		t.Errorf("expected entry ID %s, got %s", entryID, balance.EntryID)
	}
}

func TestBalanceAt_NoActiveContract(t *testing.T) {
	repo := &mockCreditRepository{}
	service := NewCreditService(repo, testConfig())

	_, err := service.BalanceAt(context.Background(), companyID, time.Now())
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestBalanceAt_NoLedgerPeriod(t *testing.T) {
	repo := &mockCreditRepository{
		findActiveContractFunc: func(ctx context.Context, companyID string, at time.Time) (*model.Contract, error) {
			return activeContract(), nil
		},
	}
	service := NewCreditService(repo, testConfig())

	_, err := service.BalanceAt(context.Background(), companyID, time.Now())
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestBalanceAt_EmptyCompany(t *testing.T) {
	service := NewCreditService(&mockCreditRepository{}, testConfig())
	_, err := service.BalanceAt(context.Background(), "", time.Now())
	expectCode(t, err, apperrors.CodeInvalidInput)
}

func TestDebit_GuardRejectionReportsBalance(t *testing.T) {
	repo := &mockCreditRepository{
		debitFunc: func(ctx context.Context, entryID string, amount int) error {
			return creditserrors.ErrBalanceGuard
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.CreditEntry, error) {
			return &model.CreditEntry{ID: entryID, Allocated: 10, Consumed: 8}, nil
		},
	}
	service := NewCreditService(repo, testConfig())

	err := service.Debit(context.Background(), entryID, 4)
	appErr := expectCode(t, err, apperrors.CodeInsufficientCredits)
	if appErr.Details["available"] != 2 || appErr.Details["required"] != 4 {
		t.Errorf("expected details available=2 required=4, got %v", appErr.Details)
	}
}

func TestDebit_NonPositiveAmount(t *testing.T) {
	service := NewCreditService(&mockCreditRepository{}, testConfig())

	for _, amount := range []int{0, -3} {
		err := service.Debit(context.Background(), entryID, amount)
		expectCode(t, err, apperrors.CodeInvalidInput)
	}
}

func TestOpenPeriod_FundsFromContract(t *testing.T) {
	var created *model.CreditEntry
	repo := &mockCreditRepository{
		findActiveContractFunc: func(ctx context.Context, companyID string, at time.Time) (*model.Contract, error) {
			return activeContract(), nil
		},
		createEntryFunc: func(ctx context.Context, entry *model.CreditEntry) error {
			entry.ID = entryID
			created = entry
			return nil
		},
	}
	service := NewCreditService(repo, testConfig())

	periodStart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	entry, err := service.OpenPeriod(context.Background(), companyID, periodStart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected an entry to be created")
	}
	if entry.Allocated != 120 {
		t.Errorf("expected allocation of 120 monthly credits, got %d", entry.Allocated)
	}
	if entry.Consumed != 0 {
		t.Errorf("new period must start with zero consumed, got %d", entry.Consumed)
	}
	if !entry.PeriodStart.Equal(periodStart) {
		t.Errorf("expected period start %v, got %v", periodStart, entry.PeriodStart)
	}
}

func TestAdjust_GuardRejection(t *testing.T) {
	repo := &mockCreditRepository{
		findActiveContractFunc: func(ctx context.Context, companyID string, at time.Time) (*model.Contract, error) {
			return activeContract(), nil
		},
		findLatestEntryFunc: func(ctx context.Context, contractID string, at time.Time) (*model.CreditEntry, error) {
			return &model.CreditEntry{ID: entryID, ContractID: contractID, Allocated: 120, Consumed: 100}, nil
		},
		adjustAllocatedFunc: func(ctx context.Context, entryID string, delta int) error {
			return creditserrors.ErrBalanceGuard
		},
	}
	service := NewCreditService(repo, testConfig())

	err := service.Adjust(context.Background(), &model.CreditAdjustment{
		CompanyID: companyID,
		Amount:    -50,
		Reason:    "billing correction",
	})
	expectCode(t, err, apperrors.CodeConflict)
}

func TestAdjust_ValidationFailure(t *testing.T) {
	service := NewCreditService(&mockCreditRepository{}, testConfig())

	err := service.Adjust(context.Background(), &model.CreditAdjustment{
		CompanyID: "nope",
		Amount:    10,
		Reason:    "x",
	})
	expectCode(t, err, apperrors.CodeValidation)
}
