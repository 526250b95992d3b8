package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractserrors "hopper/internal/contracts/errors"
	"hopper/pkg/config"
	"hopper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName        = "Contracts"
	CompanyCollectionName = "Companies"
)

type ContractRepository interface {
	CreateCompany(ctx context.Context, company *model.Company) error
	FindCompanyByID(ctx context.Context, id string) (*model.Company, error)

	Create(ctx context.Context, contract *model.Contract) error
	FindByID(ctx context.Context, id string) (*model.Contract, error)
	FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.Contract, error)
	CountByCompany(ctx context.Context, companyID string) (int64, error)
	Update(ctx context.Context, id string, contract *model.Contract) (*model.Contract, error)
}

type mongoContractRepository struct {
	cfg       *config.Config
	contracts *mongo.Collection
	companies *mongo.Collection
}

func NewMongoContractRepository(cfg *config.Config) ContractRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoContractRepository{
		cfg:       cfg,
		contracts: db.Collection(CollectionName),
		companies: db.Collection(CompanyCollectionName),
	}
}

func (r *mongoContractRepository) CreateCompany(ctx context.Context, company *model.Company) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	company.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.companies.InsertOne(ctx, company)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		company.ID = oid.Hex()
	}
	return nil
}

func (r *mongoContractRepository) FindCompanyByID(ctx context.Context, id string) (*model.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", contractserrors.ErrInvalidID, id)
	}

	var company model.Company
	err = r.companies.FindOne(ctx, bson.M{"_id": objectID}).Decode(&company)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contractserrors.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}

	return &company, nil
}

func (r *mongoContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	contract.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.contracts.InsertOne(ctx, contract)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		contract.ID = oid.Hex()
	}
	return nil
}

func (r *mongoContractRepository) FindByID(ctx context.Context, id string) (*model.Contract, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", contractserrors.ErrInvalidID, id)
	}

	var contract model.Contract
	err = r.contracts.FindOne(ctx, bson.M{"_id": objectID}).Decode(&contract)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contractserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contract: %w", err)
	}

	return &contract, nil
}

func (r *mongoContractRepository) FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.Contract, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_date", Value: -1}})

	cursor, err := r.contracts.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find contracts: %w", err)
	}
	defer cursor.Close(ctx)

	var contracts []*model.Contract
	if err = cursor.All(ctx, &contracts); err != nil {
		return nil, fmt.Errorf("failed to decode contracts: %w", err)
	}

	return contracts, nil
}

func (r *mongoContractRepository) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.contracts.CountDocuments(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return 0, fmt.Errorf("failed to count contracts: %w", err)
	}
	return count, nil
}

func (r *mongoContractRepository) Update(ctx context.Context, id string, contract *model.Contract) (*model.Contract, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", contractserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"plan_name":       contract.PlanName,
		"seats":           contract.Seats,
		"monthly_credits": contract.MonthlyCredits,
		"end_date":        contract.EndDate,
		"status":          contract.Status,
	}}

	result, err := r.contracts.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, contractserrors.ErrNotFound
	}

	return r.FindByID(ctx, id)
}
