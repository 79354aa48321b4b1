package db

import (
	"context"
	"fmt"

	"github.com/ukydev/carlog/internal/config"
	"github.com/ukydev/carlog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection          = "users"
	VehiclesCollection       = "vehicles"
	MaintenancesCollection   = "maintenances"
	InvoicesCollection       = "invoices"
	ExpensesCollection       = "expenses"
	WorkshopsCollection      = "workshops"
	RemindersCollection      = "reminders"
	DriverProfilesCollection = "driver_profiles"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Database groups every CarLog collection.
type Database struct {
	client *mongo.Client
	db     *mongo.Database

	Users          *MongoUserCollection
	Vehicles       *Store[models.Vehicle, *models.Vehicle]
	Maintenances   *Store[models.Maintenance, *models.Maintenance]
	Invoices       *Store[models.Invoice, *models.Invoice]
	Expenses       *Store[models.Expense, *models.Expense]
	Workshops      *Store[models.Workshop, *models.Workshop]
	Reminders      *Store[models.Reminder, *models.Reminder]
	DriverProfiles *Store[models.DriverProfile, *models.DriverProfile]
}

// Open connects and binds the collections of the configured database.
func Open(ctx context.Context, cfg config.MongoConfig) (*Database, error) {
	client, err := ConnectMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewDatabase(client, cfg.Database), nil
}

// NewDatabase binds the collections of database name on client.
func NewDatabase(client *mongo.Client, name string) *Database {
	mdb := client.Database(name)
	return &Database{
		client:         client,
		db:             mdb,
		Users:          &MongoUserCollection{Collection: mdb.Collection(UsersCollection)},
		Vehicles:       NewStore[models.Vehicle](mdb.Collection(VehiclesCollection)),
		Maintenances:   NewStore[models.Maintenance](mdb.Collection(MaintenancesCollection)),
		Invoices:       NewStore[models.Invoice](mdb.Collection(InvoicesCollection)),
		Expenses:       NewStore[models.Expense](mdb.Collection(ExpensesCollection)),
		Workshops:      NewStore[models.Workshop](mdb.Collection(WorkshopsCollection)),
		Reminders:      NewStore[models.Reminder](mdb.Collection(RemindersCollection)),
		DriverProfiles: NewStore[models.DriverProfile](mdb.Collection(DriverProfilesCollection)),
	}
}

// EnsureIndexes creates the unique and lookup indexes the queries rely on.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		VehiclesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		ExpensesCollection: {
			{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		MaintenancesCollection: {
			{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		InvoicesCollection: {
			{Keys: bson.D{{Key: "maintenance_id", Value: 1}}},
		},
		RemindersCollection: {
			{Keys: bson.D{{Key: "vehicle_id", Value: 1}}},
		},
		WorkshopsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		DriverProfilesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := d.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Ping checks that the primary is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}
