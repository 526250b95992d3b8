package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hopper/internal/migrations/mongo/validators"
)

var (
	// The compound index mirrors the overlap query: equality on resource
	// and status, then the time range.
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "resource_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "company_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	// Expired advisory locks are reaped by the TTL monitor; the unique _id
	// index is what makes lock acquisition race-safe.
	BookingLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	SitesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "name", Value: 1}}},
	}

	ResourcesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "site_id", Value: 1},
			{Key: "type", Value: 1},
			{Key: "status", Value: 1},
		}},
	}

	CreditEntriesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "contract_id", Value: 1},
			{Key: "period_start", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "company_id", Value: 1},
			{Key: "period_start", Value: -1},
		}},
	}

	CompaniesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	ContractsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "company_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_date", Value: -1},
		}},
	}

	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{
			{Key: "contract_id", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{{Key: "company_id", Value: 1}}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Hopper Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		"Booking_locks": {
			Indexes:   BookingLocksIndexes,
			Validator: validators.BookingLockValidator,
		},
		"Sites": {
			Indexes:   SitesIndexes,
			Validator: validators.SiteValidator,
		},
		"Resources": {
			Indexes:   ResourcesIndexes,
			Validator: validators.ResourceValidator,
		},
		"Credit_entries": {
			Indexes:   CreditEntriesIndexes,
			Validator: validators.CreditEntryValidator,
		},
		"Companies": {
			Indexes:   CompaniesIndexes,
			Validator: validators.CompanyValidator,
		},
		"Contracts": {
			Indexes:   ContractsIndexes,
			Validator: validators.ContractValidator,
		},
		"Users": {
			Indexes:   UsersIndexes,
			Validator: validators.UserValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
