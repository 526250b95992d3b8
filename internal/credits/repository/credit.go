package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	creditserrors "hopper/internal/credits/errors"
	"hopper/pkg/config"
	"hopper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName         = "Credit_entries"
	ContractCollectionName = "Contracts"
)

// CreditRepository owns the credit ledger. Debit and Refund enforce the
// consumed <= allocated invariant inside the update filter, so concurrent
// writers cannot overdraw even without an advisory lock.
type CreditRepository interface {
	CreateEntry(ctx context.Context, entry *model.CreditEntry) error
	FindByID(ctx context.Context, id string) (*model.CreditEntry, error)
	FindActiveContract(ctx context.Context, companyID string, at time.Time) (*model.Contract, error)
	FindLatestEntry(ctx context.Context, contractID string, at time.Time) (*model.CreditEntry, error)
	FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.CreditEntry, error)
	CountByCompany(ctx context.Context, companyID string) (int64, error)
	Debit(ctx context.Context, entryID string, amount int) error
	Refund(ctx context.Context, entryID string, amount int) error
	AdjustAllocated(ctx context.Context, entryID string, delta int) error
}

type mongoCreditRepository struct {
	cfg       *config.Config
	entries   *mongo.Collection
	contracts *mongo.Collection
}

func NewMongoCreditRepository(cfg *config.Config) CreditRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCreditRepository{
		cfg:       cfg,
		entries:   db.Collection(CollectionName),
		contracts: db.Collection(ContractCollectionName),
	}
}

func (r *mongoCreditRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCreditRepository) CreateEntry(ctx context.Context, entry *model.CreditEntry) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	entry.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.entries.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create credit entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCreditRepository) FindByID(ctx context.Context, id string) (*model.CreditEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", creditserrors.ErrInvalidID, id)
	}

	var entry model.CreditEntry
	err = r.entries.FindOne(ctx, bson.M{"_id": objectID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, creditserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find credit entry: %w", err)
	}

	return &entry, nil
}

// FindActiveContract returns the company's active contract whose validity
// window covers the reference date. Open-ended contracts have no end_date.
func (r *mongoCreditRepository) FindActiveContract(ctx context.Context, companyID string, at time.Time) (*model.Contract, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"company_id": companyID,
		"status":     model.ContractStatusActive,
		"start_date": bson.M{"$lte": at},
		"$or": []bson.M{
			{"end_date": bson.M{"$exists": false}},
			{"end_date": nil},
			{"end_date": bson.M{"$gte": at}},
		},
	}

	var contract model.Contract
	err := r.contracts.FindOne(ctx, filter).Decode(&contract)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, creditserrors.ErrNoActiveContract
		}
		return nil, fmt.Errorf("failed to find active contract: %w", err)
	}

	return &contract, nil
}

// FindLatestEntry returns the most recent ledger period starting at or
// before the reference date.
func (r *mongoCreditRepository) FindLatestEntry(ctx context.Context, contractID string, at time.Time) (*model.CreditEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"contract_id":  contractID,
		"period_start": bson.M{"$lte": at},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "period_start", Value: -1}})

	var entry model.CreditEntry
	err := r.entries.FindOne(ctx, filter, opts).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, creditserrors.ErrNoLedgerPeriod
		}
		return nil, fmt.Errorf("failed to find ledger period: %w", err)
	}

	return &entry, nil
}

func (r *mongoCreditRepository) FindByCompany(ctx context.Context, companyID string, limit int, offset int64) ([]*model.CreditEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "period_start", Value: -1}})

	cursor, err := r.entries.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find credit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.CreditEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode credit entries: %w", err)
	}

	return entries, nil
}

func (r *mongoCreditRepository) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.entries.CountDocuments(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return 0, fmt.Errorf("failed to count credit entries: %w", err)
	}
	return count, nil
}

// Debit increments consumed by amount. The $expr clause keeps the invariant
// consumed + amount <= allocated inside the single update, so a concurrent
// debit that would overdraw matches zero documents instead of committing.
func (r *mongoCreditRepository) Debit(ctx context.Context, entryID string, amount int) error {
	return r.applyConsumedDelta(ctx, entryID, amount)
}

// Refund decrements consumed by amount, never below zero.
func (r *mongoCreditRepository) Refund(ctx context.Context, entryID string, amount int) error {
	return r.applyConsumedDelta(ctx, entryID, -amount)
}

func (r *mongoCreditRepository) applyConsumedDelta(ctx context.Context, entryID string, delta int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return fmt.Errorf("%w: %s", creditserrors.ErrInvalidID, entryID)
	}

	filter := bson.M{
		"_id": objectID,
		"$expr": bson.M{
			"$and": []bson.M{
				{"$lte": []any{bson.M{"$add": []any{"$consumed", delta}}, "$allocated"}},
				{"$gte": []any{bson.M{"$add": []any{"$consumed", delta}}, 0}},
			},
		},
	}
	update := bson.M{"$inc": bson.M{"consumed": delta}}

	result, err := r.entries.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update consumed credits: %w", err)
	}

	if result.MatchedCount == 0 {
		if _, findErr := r.FindByID(ctx, entryID); findErr != nil {
			return findErr
		}
		return creditserrors.ErrBalanceGuard
	}

	return nil
}

// AdjustAllocated applies an administrative delta to the allocated amount.
// The guard keeps allocated >= consumed so an adjustment cannot strand the
// ledger below what was already spent.
func (r *mongoCreditRepository) AdjustAllocated(ctx context.Context, entryID string, delta int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return fmt.Errorf("%w: %s", creditserrors.ErrInvalidID, entryID)
	}

	filter := bson.M{
		"_id": objectID,
		"$expr": bson.M{
			"$gte": []any{bson.M{"$add": []any{"$allocated", delta}}, "$consumed"},
		},
	}
	update := bson.M{"$inc": bson.M{"allocated": delta}}

	result, err := r.entries.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to adjust allocated credits: %w", err)
	}

	if result.MatchedCount == 0 {
		if _, findErr := r.FindByID(ctx, entryID); findErr != nil {
			return findErr
		}
		return creditserrors.ErrBalanceGuard
	}

	return nil
}
