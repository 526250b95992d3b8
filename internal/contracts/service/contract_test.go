package service

import (
	"context"
	"testing"
	"time"

	contractserrors "hopper/internal/contracts/errors"
	"hopper/pkg/config"
	apperrors "hopper/pkg/errors"
	"hopper/pkg/logger"
	"hopper/pkg/model"
)

const (
	companyID  = "64f1b2c3d4e5f6a7b8c9d0c1"
	contractID = "64f1b2c3d4e5f6a7b8c9d0c2"
	userID     = "64f1b2c3d4e5f6a7b8c9d0c3"
)

type mockContractRepository struct {
	createCompanyFunc   func(ctx context.Context, company *model.Company) error
	findCompanyByIDFunc func(ctx context.Context, id string) (*model.Company, error)
	createFunc          func(ctx context.Context, contract *model.Contract) error
	findByIDFunc        func(ctx context.Context, id string) (*model.Contract, error)
	findByCompanyFunc   func(ctx context.Context, companyID string, limit int, offset int64) ([]*model.Contract, error)
	countByCompanyFunc  func(ctx context.Context, companyID string) (int64, error)
	updateFunc          func(ctx context.Context, id string, contract *model.Contract) (*model.Contract, error)
}

func (m *mockContractRepository) CreateCompany(ctx context.Context, company *model.Company) error {
	if m.createCompanyFunc != nil {
		return m.createCompanyFunc(ctx, company)
	}
	return nil
}

func (m *mockContractRepository) FindCompanyByID(ctx context.Context, id string) (*model.Company, error) {
	if m.findCompanyByIDFunc != nil {
		return m.findCompanyByIDFunc(ctx, id)
	}
	return &model.Company{ID: id, Name: "Acme", BillingEmail: "billing@acme.fr"}, nil
}

func (m *mockContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, contract)
	}
	return nil
}

func (m *mockContractRepository) FindByID(ctx context.Context, id string) (*model.Contract, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, contractserrors.ErrNotFound
}

func (m *mockContractRepository) FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.Contract, error) {
	if m.findByCompanyFunc != nil {
		return m.findByCompanyFunc(ctx, companyID, limit, offset)
	}
	return nil, nil
}

func (m *mockContractRepository) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	if m.countByCompanyFunc != nil {
		return m.countByCompanyFunc(ctx, companyID)
	}
	return 0, nil
}

func (m *mockContractRepository) Update(ctx context.Context, id string, contract *model.Contract) (*model.Contract, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, contract)
	}
	return contract, nil
}

type mockUserRepository struct {
	createFunc                func(ctx context.Context, user *model.User) error
	findByIDFunc              func(ctx context.Context, id string) (*model.User, error)
	findByCompanyFunc         func(ctx context.Context, companyID string, limit int, offset int64) ([]*model.User, error)
	countByCompanyFunc        func(ctx context.Context, companyID string) (int64, error)
	countActiveByContractFunc func(ctx context.Context, contractID string) (int64, error)
	assignContractFunc        func(ctx context.Context, userID, contractID string) error
	updateStatusFunc          func(ctx context.Context, userID, status string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, contractserrors.ErrUserNotFound
}

func (m *mockUserRepository) FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.User, error) {
	if m.findByCompanyFunc != nil {
		return m.findByCompanyFunc(ctx, companyID, limit, offset)
	}
	return nil, nil
}

func (m *mockUserRepository) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	if m.countByCompanyFunc != nil {
		return m.countByCompanyFunc(ctx, companyID)
	}
	return 0, nil
}

func (m *mockUserRepository) CountActiveByContract(ctx context.Context, contractID string) (int64, error) {
	if m.countActiveByContractFunc != nil {
		return m.countActiveByContractFunc(ctx, contractID)
	}
	return 0, nil
}

func (m *mockUserRepository) AssignContract(ctx context.Context, userID, contractID string) error {
	if m.assignContractFunc != nil {
		return m.assignContractFunc(ctx, userID, contractID)
	}
	return nil
}

func (m *mockUserRepository) UpdateStatus(ctx context.Context, userID, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, userID, status)
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

func activeContract(seats int) *model.Contract {
	return &model.Contract{
		ID:             contractID,
		CompanyID:      companyID,
		PlanName:       "Studio",
		Seats:          seats,
		MonthlyCredits: 120,
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:         model.ContractStatusActive,
	}
}

func activeUser() *model.User {
	return &model.User{
		ID:        userID,
		CompanyID: companyID,
		Email:     "marie@acme.fr",
		FirstName: "Marie",
		LastName:  "Dubois",
		Status:    model.UserStatusActive,
	}
}

func expectCode(t *testing.T, err error, code string) {
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
}

func TestAssignUser_SeatAvailable(t *testing.T) {
	var assigned bool
	repo := &mockContractRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Contract, error) {
			return activeContract(10), nil
		},
	}
	userRepo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return activeUser(), nil
		},
		countActiveByContractFunc: func(ctx context.Context, contractID string) (int64, error) {
			return 9, nil
		},
		assignContractFunc: func(ctx context.Context, userID, contractID string) error {
			assigned = true
			return nil
		},
	}

	service := NewContractService(repo, userRepo, testConfig())
	if err := service.AssignUser(context.Background(), userID, contractID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !assigned {
		t.Error("expected the contract assignment to be persisted")
	}
}

func TestAssignUser_AllotmentExhausted(t *testing.T) {
	repo := &mockContractRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Contract, error) {
			return activeContract(10), nil
		},
	}
	userRepo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return activeUser(), nil
		},
		countActiveByContractFunc: func(ctx context.Context, contractID string) (int64, error) {
			return 10, nil
		},
	}

	service := NewContractService(repo, userRepo, testConfig())
	err := service.AssignUser(context.Background(), userID, contractID)
	expectCode(t, err, apperrors.CodeConflict)
}

func TestAssignUser_CompanyMismatch(t *testing.T) {
	repo := &mockContractRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Contract, error) {
			contract := activeContract(10)
			contract.CompanyID = "64f1b2c3d4e5f6a7b8c9d0ff"
			return contract, nil
		},
	}
	userRepo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return activeUser(), nil
		},
	}

	service := NewContractService(repo, userRepo, testConfig())
	err := service.AssignUser(context.Background(), userID, contractID)
	expectCode(t, err, apperrors.CodeInvalidInput)
}

func TestAssignUser_SuspendedContract(t *testing.T) {
	repo := &mockContractRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Contract, error) {
			contract := activeContract(10)
			contract.Status = model.ContractStatusSuspended
			return contract, nil
		},
	}
	userRepo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return activeUser(), nil
		},
	}

	service := NewContractService(repo, userRepo, testConfig())
	err := service.AssignUser(context.Background(), userID, contractID)
	expectCode(t, err, apperrors.CodeConflict)
}

func TestUpdate_SeatShrinkBelowHeadcount(t *testing.T) {
	repo := &mockContractRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Contract, error) {
			return activeContract(10), nil
		},
	}
	userRepo := &mockUserRepository{
		countActiveByContractFunc: func(ctx context.Context, contractID string) (int64, error) {
			return 8, nil
		},
	}

	service := NewContractService(repo, userRepo, testConfig())

	seats := 5
	_, err := service.Update(context.Background(), contractID, &model.ContractUpdate{Seats: &seats})
	expectCode(t, err, apperrors.CodeConflict)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := &mockContractRepository{}
	userRepo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return contractserrors.ErrDuplicateEmail
		},
	}

	service := NewContractService(repo, userRepo, testConfig())
	err := service.CreateUser(context.Background(), activeUser())
	expectCode(t, err, apperrors.CodeConflict)
}

func TestCreateContract_DefaultsToActive(t *testing.T) {
	var created *model.Contract
	repo := &mockContractRepository{
		createFunc: func(ctx context.Context, contract *model.Contract) error {
			contract.ID = contractID
			created = contract
			return nil
		},
	}

	service := NewContractService(repo, &mockUserRepository{}, testConfig())

	contract := activeContract(10)
	contract.ID = ""
	contract.Status = ""
	if err := service.Create(context.Background(), contract); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != model.ContractStatusActive {
		t.Errorf("expected default status active, got %s", created.Status)
	}
}
