package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	contractserrors "hopper/internal/contracts/errors"
	"hopper/internal/contracts/repository"
	"hopper/pkg/config"
	apperrors "hopper/pkg/errors"
	"hopper/pkg/model"
	"hopper/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type ContractService interface {
	CreateCompany(ctx context.Context, company *model.Company) error
	GetCompanyByID(ctx context.Context, id string) (*model.Company, error)

	Create(ctx context.Context, contract *model.Contract) error
	GetByID(ctx context.Context, id string) (*model.Contract, error)
	ListByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.Contract, int64, error)
	Update(ctx context.Context, id string, updates *model.ContractUpdate) (*model.Contract, error)

	CreateUser(ctx context.Context, user *model.User) error
	AssignUser(ctx context.Context, userID, contractID string) error
	ListUsers(ctx context.Context, companyID string, limit int, offset int64) ([]*model.User, int64, error)
	DeactivateUser(ctx context.Context, userID string) error
}

type contractService struct {
	repo     repository.ContractRepository
	userRepo repository.UserRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewContractService(
	repo repository.ContractRepository,
	userRepo repository.UserRepository,
	cfg *config.Config,
) ContractService {
	return &contractService{
		repo:     repo,
		userRepo: userRepo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *contractService) CreateCompany(ctx context.Context, company *model.Company) error {
	company.Name = sanitizer.NormalizeName(company.Name)
	company.BillingEmail = sanitizer.NormalizeEmail(company.BillingEmail)

	if err := s.validate.Struct(company); err != nil {
		s.cfg.Log.Warn("Company validation failed", "error", err)
		return apperrors.Validation("Company validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.CreateCompany(ctx, company); err != nil {
		s.cfg.Log.Error("Failed to create company", "error", err)
		return apperrors.Internal("Failed to create company", err)
	}

	s.cfg.Log.Info("Company created successfully", "id", company.ID, "name", company.Name)
	return nil
}

func (s *contractService) GetCompanyByID(ctx context.Context, id string) (*model.Company, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Company ID cannot be empty")
	}

	company, err := s.repo.FindCompanyByID(ctx, id)
	if err != nil {
		if errors.Is(err, contractserrors.ErrCompanyNotFound) {
			return nil, apperrors.NotFoundWithID("Company", id)
		}
		if errors.Is(err, contractserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid company ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve company", err)
	}

	return company, nil
}

func (s *contractService) Create(ctx context.Context, contract *model.Contract) error {
	s.applyDefaults(contract)
	contract.PlanName = sanitizer.NormalizeName(contract.PlanName)

	if err := s.validate.Struct(contract); err != nil {
		s.cfg.Log.Warn("Contract validation failed", "error", err)
		return apperrors.Validation("Contract validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.GetCompanyByID(ctx, contract.CompanyID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, contract); err != nil {
		s.cfg.Log.Error("Failed to create contract", "error", err)
		return apperrors.Internal("Failed to create contract", err)
	}

	s.cfg.Log.Info("Contract created successfully",
		"id", contract.ID,
		"company_id", contract.CompanyID,
		"plan", contract.PlanName,
		"seats", contract.Seats,
		"monthly_credits", contract.MonthlyCredits,
	)
	return nil
}

func (s *contractService) GetByID(ctx context.Context, id string) (*model.Contract, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Contract ID cannot be empty")
	}

	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, contractserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Contract", id)
		}
		if errors.Is(err, contractserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid contract ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve contract", err)
	}

	return contract, nil
}

func (s *contractService) ListByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.Contract, int64, error) {
	if companyID == "" {
		return nil, 0, apperrors.InvalidInput("Company ID is required")
	}

	var count int64
	var contracts []*model.Contract
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByCompany(ctx, companyID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count contracts", "company_id", companyID, "error", errCount)
			errCount = apperrors.Internal("Failed to count contracts", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		contracts, errFind = s.repo.FindByCompany(ctx, companyID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list contracts", "company_id", companyID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve contracts", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return contracts, count, nil
}

func (s *contractService) Update(ctx context.Context, id string, updates *model.ContractUpdate) (*model.Contract, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Contract ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(updates); err != nil {
		s.cfg.Log.Warn("Contract update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeContractUpdates(existing, updates)
	if err := s.validate.Struct(merged); err != nil {
		return nil, apperrors.Validation("Contract validation failed", map[string]any{"error": err.Error()})
	}

	// Shrinking the seat allotment below the active headcount would strand
	// users, so reject it here.
	if merged.Seats < existing.Seats {
		active, err := s.userRepo.CountActiveByContract(ctx, id)
		if err != nil {
			return nil, apperrors.Internal("Failed to count contract users", err)
		}
		if int64(merged.Seats) < active {
			return nil, apperrors.Conflict(fmt.Sprintf(
				"Cannot reduce seats to %d: %d users are active on this contract", merged.Seats, active,
			))
		}
	}

	updated, err := s.repo.Update(ctx, id, merged)
	if err != nil {
		if errors.Is(err, contractserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Contract", id)
		}
		s.cfg.Log.Error("Failed to update contract", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update contract", err)
	}

	s.cfg.Log.Info("Contract updated successfully", "id", id)
	return updated, nil
}

func (s *contractService) CreateUser(ctx context.Context, user *model.User) error {
	s.applyUserDefaults(user)
	user.Email = sanitizer.NormalizeEmail(user.Email)
	user.FirstName = sanitizer.NormalizeName(user.FirstName)
	user.LastName = sanitizer.NormalizeName(user.LastName)

	if err := s.validate.Struct(user); err != nil {
		s.cfg.Log.Warn("User validation failed", "error", err)
		return apperrors.Validation("User validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.GetCompanyByID(ctx, user.CompanyID); err != nil {
		return err
	}

	if user.ContractID != "" {
		if err := s.checkSeatAllotment(ctx, user.ContractID); err != nil {
			return err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, contractserrors.ErrDuplicateEmail) {
			return apperrors.Conflict("A user with this email already exists")
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User created successfully", "id", user.ID, "company_id", user.CompanyID)
	return nil
}

// AssignUser attaches a user to a contract, enforcing the seat allotment.
func (s *contractService) AssignUser(ctx context.Context, userID, contractID string) error {
	if userID == "" || contractID == "" {
		return apperrors.InvalidInput("User ID and contract ID are required")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, contractserrors.ErrUserNotFound) {
			return apperrors.NotFoundWithID("User", userID)
		}
		if errors.Is(err, contractserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		return apperrors.Internal("Failed to retrieve user", err)
	}

	contract, err := s.GetByID(ctx, contractID)
	if err != nil {
		return err
	}
	if contract.CompanyID != user.CompanyID {
		return apperrors.InvalidInput("User and contract belong to different companies")
	}
	if contract.Status != model.ContractStatusActive {
		return apperrors.Conflict(fmt.Sprintf("Contract is %s and cannot take users", contract.Status))
	}

	if err := s.checkSeatAllotment(ctx, contractID); err != nil {
		return err
	}

	if err := s.userRepo.AssignContract(ctx, userID, contractID); err != nil {
		s.cfg.Log.Error("Failed to assign user to contract", "user_id", userID, "contract_id", contractID, "error", err)
		return apperrors.Internal("Failed to assign user to contract", err)
	}

	s.cfg.Log.Info("User assigned to contract", "user_id", userID, "contract_id", contractID)
	return nil
}

func (s *contractService) ListUsers(ctx context.Context, companyID string, limit int, offset int64) ([]*model.User, int64, error) {
	if companyID == "" {
		return nil, 0, apperrors.InvalidInput("Company ID is required")
	}

	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.userRepo.CountByCompany(ctx, companyID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "company_id", companyID, "error", errCount)
			errCount = apperrors.Internal("Failed to count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.userRepo.FindByCompany(ctx, companyID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "company_id", companyID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return users, count, nil
}

func (s *contractService) DeactivateUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	err := s.userRepo.UpdateStatus(ctx, userID, model.UserStatusInactive)
	if err != nil {
		if errors.Is(err, contractserrors.ErrUserNotFound) {
			return apperrors.NotFoundWithID("User", userID)
		}
		if errors.Is(err, contractserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		return apperrors.Internal("Failed to deactivate user", err)
	}

	s.cfg.Log.Info("User deactivated", "user_id", userID)
	return nil
}

// --- Helpers ---

func (s *contractService) applyDefaults(c *model.Contract) {
	if c.Status == "" {
		c.Status = model.ContractStatusActive
	}
}

func (s *contractService) applyUserDefaults(u *model.User) {
	if u.Status == "" {
		u.Status = model.UserStatusActive
	}
}

func (s *contractService) checkSeatAllotment(ctx context.Context, contractID string) error {
	contract, err := s.GetByID(ctx, contractID)
	if err != nil {
		return err
	}

	active, err := s.userRepo.CountActiveByContract(ctx, contractID)
	if err != nil {
		return apperrors.Internal("Failed to count contract users", err)
	}
	if active >= int64(contract.Seats) {
		return apperrors.Conflict(fmt.Sprintf(
			"Seat allotment exhausted: %d of %d seats in use", active, contract.Seats,
		))
	}
	return nil
}

func (s *contractService) mergeContractUpdates(existing *model.Contract, updates *model.ContractUpdate) *model.Contract {
	merged := *existing

	if updates.PlanName != "" {
		merged.PlanName = sanitizer.NormalizeName(updates.PlanName)
	}
	if updates.Seats != nil {
		merged.Seats = *updates.Seats
	}
	if updates.MonthlyCredits != nil {
		merged.MonthlyCredits = *updates.MonthlyCredits
	}
	if updates.EndDate != nil {
		merged.EndDate = updates.EndDate
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}
