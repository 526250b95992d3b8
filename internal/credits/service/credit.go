package service

import (
	"context"
	"errors"
	"sync"
	"time"

	creditserrors "hopper/internal/credits/errors"
	"hopper/internal/credits/repository"
	"hopper/pkg/config"
	apperrors "hopper/pkg/errors"
	"hopper/pkg/model"

	"github.com/go-playground/validator/v10"
)

// CreditService exposes the ledger to the admission pipeline (BalanceAt,
// Debit) and to administrators (periods, adjustments, history).
type CreditService interface {
	BalanceAt(ctx context.Context, companyID string, at time.Time) (*model.CreditBalance, error)
	Debit(ctx context.Context, entryID string, amount int) error
	Refund(ctx context.Context, entryID string, amount int) error
	OpenPeriod(ctx context.Context, companyID string, periodStart time.Time) (*model.CreditEntry, error)
	Adjust(ctx context.Context, adjustment *model.CreditAdjustment) error
	History(ctx context.Context, companyID string, limit int, offset int64) ([]*model.CreditEntry, int64, error)
}

type creditService struct {
	repo     repository.CreditRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewCreditService(repo repository.CreditRepository, cfg *config.Config) CreditService {
	return &creditService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// BalanceAt resolves the ledger period that covers the reference date: the
// most recent period_start at or before it, on the company's active
// contract. Companies without an active contract cannot book.
func (s *creditService) BalanceAt(ctx context.Context, companyID string, at time.Time) (*model.CreditBalance, error) {
	if companyID == "" {
		return nil, apperrors.InvalidInput("Company ID cannot be empty")
	}

	contract, err := s.repo.FindActiveContract(ctx, companyID, at)
	if err != nil {
		if errors.Is(err, creditserrors.ErrNoActiveContract) {
			return nil, apperrors.Forbidden("Company has no active contract")
		}
		return nil, apperrors.Internal("Failed to resolve contract", err)
	}

	entry, err := s.repo.FindLatestEntry(ctx, contract.ID, at)
	if err != nil {
		if errors.Is(err, creditserrors.ErrNoLedgerPeriod) {
			return nil, apperrors.Forbidden("No credit period covers the requested date")
		}
		return nil, apperrors.Internal("Failed to resolve ledger period", err)
	}

	return &model.CreditBalance{
		EntryID:     entry.ID,
		ContractID:  entry.ContractID,
		PeriodStart: entry.PeriodStart,
		Allocated:   entry.Allocated,
		Remaining:   entry.Allocated - entry.Consumed,
	}, nil
}

// Debit spends credits from a ledger period. When the write guard rejects
// the debit, the current remaining balance is re-read so the caller gets an
// accurate figure even after losing a race.
func (s *creditService) Debit(ctx context.Context, entryID string, amount int) error {
	if amount <= 0 {
		return apperrors.InvalidInput("Debit amount must be positive")
	}

	err := s.repo.Debit(ctx, entryID, amount)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, creditserrors.ErrBalanceGuard):
		remaining := 0
		if entry, findErr := s.repo.FindByID(ctx, entryID); findErr == nil {
			remaining = entry.Allocated - entry.Consumed
		}
		return apperrors.InsufficientCredits(remaining, amount)
	case errors.Is(err, creditserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Credit entry", entryID)
	case errors.Is(err, creditserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid credit entry ID format")
	default:
		return apperrors.Internal("Failed to debit credits", err)
	}
}

func (s *creditService) Refund(ctx context.Context, entryID string, amount int) error {
	if amount <= 0 {
		return apperrors.InvalidInput("Refund amount must be positive")
	}

	err := s.repo.Refund(ctx, entryID, amount)
	if err == nil {
		s.cfg.Log.Info("Credits refunded", "entry_id", entryID, "amount", amount)
		return nil
	}

	switch {
	case errors.Is(err, creditserrors.ErrBalanceGuard):
		return apperrors.Conflict("Refund would drop consumed credits below zero")
	case errors.Is(err, creditserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Credit entry", entryID)
	case errors.Is(err, creditserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid credit entry ID format")
	default:
		return apperrors.Internal("Failed to refund credits", err)
	}
}

// OpenPeriod allocates a fresh ledger period for the company's active
// contract, funded with the contract's monthly credits.
func (s *creditService) OpenPeriod(ctx context.Context, companyID string, periodStart time.Time) (*model.CreditEntry, error) {
	if companyID == "" {
		return nil, apperrors.InvalidInput("Company ID cannot be empty")
	}

	contract, err := s.repo.FindActiveContract(ctx, companyID, periodStart)
	if err != nil {
		if errors.Is(err, creditserrors.ErrNoActiveContract) {
			return nil, apperrors.Forbidden("Company has no active contract")
		}
		return nil, apperrors.Internal("Failed to resolve contract", err)
	}

	entry := &model.CreditEntry{
		CompanyID:   companyID,
		ContractID:  contract.ID,
		PeriodStart: periodStart.UTC(),
		Allocated:   contract.MonthlyCredits,
		Consumed:    0,
	}
	if err := s.validate.Struct(entry); err != nil {
		return nil, apperrors.Validation("Invalid credit entry", map[string]any{"error": err.Error()})
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, apperrors.Internal("Failed to create ledger period", err)
	}

	s.cfg.Log.Info("Ledger period opened",
		"entry_id", entry.ID,
		"company_id", companyID,
		"contract_id", contract.ID,
		"period_start", entry.PeriodStart,
		"allocated", entry.Allocated,
	)
	return entry, nil
}

// Adjust applies an administrative credit delta to the period covering now.
func (s *creditService) Adjust(ctx context.Context, adjustment *model.CreditAdjustment) error {
	if err := s.validate.Struct(adjustment); err != nil {
		return apperrors.Validation("Invalid adjustment", map[string]any{"error": err.Error()})
	}

	balance, err := s.BalanceAt(ctx, adjustment.CompanyID, time.Now().UTC())
	if err != nil {
		return err
	}

	err = s.repo.AdjustAllocated(ctx, balance.EntryID, adjustment.Amount)
	if err != nil {
		if errors.Is(err, creditserrors.ErrBalanceGuard) {
			return apperrors.Conflict("Adjustment would drop allocation below consumed credits")
		}
		return apperrors.Internal("Failed to adjust credits", err)
	}

	s.cfg.Log.Info("Credits adjusted",
		"company_id", adjustment.CompanyID,
		"entry_id", balance.EntryID,
		"amount", adjustment.Amount,
		"reason", adjustment.Reason,
	)
	return nil
}

func (s *creditService) History(ctx context.Context, companyID string, limit int, offset int64) ([]*model.CreditEntry, int64, error) {
	if companyID == "" {
		return nil, 0, apperrors.InvalidInput("Company ID cannot be empty")
	}

	var count int64
	var entries []*model.CreditEntry
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByCompany(ctx, companyID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count credit entries", "company_id", companyID, "error", errCount)
			errCount = apperrors.Internal("Failed to count credit entries", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		entries, errFind = s.repo.FindByCompany(ctx, companyID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list credit entries", "company_id", companyID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve credit entries", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return entries, count, nil
}
