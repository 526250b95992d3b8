package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	resourceserrors "hopper/internal/resources/errors"
	"hopper/pkg/config"
	"hopper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Resources"

type ResourceRepository interface {
	Create(ctx context.Context, resource *model.Resource) error
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	FindBySite(ctx context.Context, siteID string, resourceType string, limit int, offset int64) ([]*model.Resource, error)
	CountBySite(ctx context.Context, siteID string, resourceType string) (int64, error)
	Update(ctx context.Context, id string, resource *model.Resource) (*model.Resource, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type mongoResourceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResourceRepository(cfg *config.Config) ResourceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	resource.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, resource)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		resource.ID = oid.Hex()
	}
	return nil
}

func (r *mongoResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", resourceserrors.ErrInvalidID, id)
	}

	var resource model.Resource
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&resource)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resourceserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}

	return &resource, nil
}

func (r *mongoResourceRepository) FindBySite(ctx context.Context, siteID string, resourceType string, limit int, offset int64) ([]*model.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"site_id": siteID}
	if resourceType != "" {
		filter["type"] = resourceType
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find resources: %w", err)
	}
	defer cursor.Close(ctx)

	var resources []*model.Resource
	if err = cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}

	return resources, nil
}

func (r *mongoResourceRepository) CountBySite(ctx context.Context, siteID string, resourceType string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"site_id": siteID}
	if resourceType != "" {
		filter["type"] = resourceType
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

func (r *mongoResourceRepository) Update(ctx context.Context, id string, resource *model.Resource) (*model.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", resourceserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"name":               resource.Name,
		"capacity":           resource.Capacity,
		"hourly_credit_rate": resource.HourlyCreditRate,
		"daily_credit_rate":  resource.DailyCreditRate,
		"status":             resource.Status,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, resourceserrors.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *mongoResourceRepository) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", resourceserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update resource status: %w", err)
	}
	if result.MatchedCount == 0 {
		return resourceserrors.ErrNotFound
	}
	return nil
}
