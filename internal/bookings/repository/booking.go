package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hopper/internal/bookings/errors"
	"hopper/pkg/config"
	mongotx "hopper/pkg/db/mongo"
	"hopper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindOverlapping(ctx context.Context, resourceID string, start, end time.Time) ([]*model.Booking, error)
	SumSeats(ctx context.Context, resourceID string, dayStart, dayEnd time.Time) (int, error)
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, at time.Time) error
	FindByResource(ctx context.Context, resourceID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, error)
	CountByResource(ctx context.Context, resourceID string, startTime, endTime *time.Time) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context
// unchanged with a no-op cancel function, as we cannot wrap SessionContext
// without breaking transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var booking model.Booking
	err = r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindOverlapping returns confirmed bookings on the resource whose half-open
// interval intersects [start, end): existing.start < end AND existing.end > start.
// Back-to-back bookings do not match.
func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, resourceID string, start, end time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"resource_id": resourceID,
		"status":      model.BookingStatusConfirmed,
		"start_time":  bson.M{"$lt": end},
		"end_time":    bson.M{"$gt": start},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// SumSeats totals seats_count across confirmed bookings on the resource for
// the day bucket [dayStart, dayEnd).
func (r *mongoBookingRepository) SumSeats(ctx context.Context, resourceID string, dayStart, dayEnd time.Time) (int, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"resource_id": resourceID,
			"status":      model.BookingStatusConfirmed,
			"start_time":  bson.M{"$lt": dayEnd},
			"end_time":    bson.M{"$gt": dayStart},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"seats": bson.M{"$sum": "$seats_count"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum booked seats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Seats int `bson:"seats"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode seat sum: %w", err)
	}

	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Seats, nil
}

// UpdateStatus transitions a booking from one status to another. The filter
// includes the expected current status, so a lost race surfaces as
// ErrAlreadyCancelled rather than a silent double transition.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": fromStatus}
	update := bson.M{
		"$set": bson.M{
			"status":       toStatus,
			"cancelled_at": at,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.MatchedCount == 0 {
		// Either the booking is missing or it is no longer in fromStatus.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return bookingserrors.ErrAlreadyCancelled
	}

	return nil
}

func (r *mongoBookingRepository) FindByResource(
	ctx context.Context,
	resourceID string,
	startTime, endTime *time.Time,
	limit int, offset int64,
) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildSearchFilter(resourceID, startTime, endTime)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) CountByResource(
	ctx context.Context,
	resourceID string,
	startTime, endTime *time.Time,
) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildSearchFilter(resourceID, startTime, endTime)

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) buildSearchFilter(resourceID string, startTime, endTime *time.Time) bson.M {
	filter := bson.M{
		"resource_id": resourceID,
	}

	if startTime != nil || endTime != nil {
		timeFilters := bson.M{}
		if startTime != nil && endTime != nil {
			timeFilters = bson.M{
				"start_time": bson.M{"$lt": *endTime},
				"end_time":   bson.M{"$gt": *startTime},
			}
		} else if startTime != nil {
			timeFilters = bson.M{
				"end_time": bson.M{"$gt": *startTime},
			}
		} else if endTime != nil {
			timeFilters = bson.M{
				"start_time": bson.M{"$lt": *endTime},
			}
		}

		filter["$and"] = []bson.M{timeFilters}
	}

	return filter
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
