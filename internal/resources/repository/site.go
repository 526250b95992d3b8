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

const SiteCollectionName = "Sites"

type SiteRepository interface {
	Create(ctx context.Context, site *model.Site) error
	FindByID(ctx context.Context, id string) (*model.Site, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Site, error)
	Count(ctx context.Context) (int64, error)
}

type mongoSiteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSiteRepository(cfg *config.Config) SiteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSiteRepository{
		cfg:        cfg,
		collection: db.Collection(SiteCollectionName),
	}
}

func (r *mongoSiteRepository) Create(ctx context.Context, site *model.Site) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	site.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		site.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSiteRepository) FindByID(ctx context.Context, id string) (*model.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", resourceserrors.ErrInvalidID, id)
	}

	var site model.Site
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&site)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, resourceserrors.ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to find site: %w", err)
	}

	return &site, nil
}

func (r *mongoSiteRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sites: %w", err)
	}
	defer cursor.Close(ctx)

	var sites []*model.Site
	if err = cursor.All(ctx, &sites); err != nil {
		return nil, fmt.Errorf("failed to decode sites: %w", err)
	}

	return sites, nil
}

func (r *mongoSiteRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count sites: %w", err)
	}
	return count, nil
}
