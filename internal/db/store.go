package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/carlog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrInvalidID     = errors.New("invalid id")
	ErrNilCollection = errors.New("mongo collection is nil")
	ErrDuplicate     = errors.New("duplicate key")
)

// Document is implemented by pointers to the persisted models.
type Document[T any] interface {
	*T
	GetID() primitive.ObjectID
	SetID(primitive.ObjectID)
	Touch(time.Time)
}

// Repository is the CRUD surface the handlers depend on.
type Repository[T any] interface {
	Insert(ctx context.Context, doc *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error)
	Update(ctx context.Context, id string, doc *T) error
	UpdateFields(ctx context.Context, id string, fields bson.M) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
}

type (
	VehicleCollection       = Repository[models.Vehicle]
	MaintenanceCollection   = Repository[models.Maintenance]
	InvoiceCollection       = Repository[models.Invoice]
	ExpenseCollection       = Repository[models.Expense]
	WorkshopCollection      = Repository[models.Workshop]
	ReminderCollection      = Repository[models.Reminder]
	DriverProfileCollection = Repository[models.DriverProfile]
)

// Store implements Repository on a MongoDB collection.
type Store[T any, P Document[T]] struct {
	Collection *mongo.Collection
	now        func() time.Time
}

// NewStore returns a Store for documents of type T.
func NewStore[T any, P Document[T]](c *mongo.Collection) *Store[T, P] {
	return &Store[T, P]{Collection: c, now: time.Now}
}

func (s *Store[T, P]) timestamp() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// ObjectID parses a hex document id.
func ObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// Insert stores doc, assigning an id when it has none and stamping its
// timestamps.
func (s *Store[T, P]) Insert(ctx context.Context, doc *T) error {
	if s.Collection == nil {
		return ErrNilCollection
	}
	p := P(doc)
	if p.GetID().IsZero() {
		p.SetID(primitive.NewObjectID())
	}
	p.Touch(s.timestamp())

	if _, err := s.Collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("insert into %s: %w", s.Collection.Name(), err)
	}
	return nil
}

// FindByID returns the document with the given hex id.
func (s *Store[T, P]) FindByID(ctx context.Context, id string) (*T, error) {
	if s.Collection == nil {
		return nil, ErrNilCollection
	}
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *Store[T, P]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := s.Collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", s.Collection.Name(), err)
	}
	return &doc, nil
}

// Find returns every document matching filter, ordered by sort when given.
func (s *Store[T, P]) Find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	if s.Collection == nil {
		return nil, ErrNilCollection
	}
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}

	cursor, err := s.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", s.Collection.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Collection.Name(), err)
	}
	return docs, nil
}

// Update replaces the document with the given id.
func (s *Store[T, P]) Update(ctx context.Context, id string, doc *T) error {
	if s.Collection == nil {
		return ErrNilCollection
	}
	oid, err := ObjectID(id)
	if err != nil {
		return err
	}
	p := P(doc)
	p.SetID(oid)
	p.Touch(s.timestamp())

	res, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", s.Collection.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFields sets the given fields and updated_at on one document.
func (s *Store[T, P]) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	if s.Collection == nil {
		return ErrNilCollection
	}
	oid, err := ObjectID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": s.timestamp()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := s.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update in %s: %w", s.Collection.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document with the given id.
func (s *Store[T, P]) Delete(ctx context.Context, id string) error {
	if s.Collection == nil {
		return ErrNilCollection
	}
	oid, err := ObjectID(id)
	if err != nil {
		return err
	}
	res, err := s.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", s.Collection.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes every document matching filter and reports how many went.
func (s *Store[T, P]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	if s.Collection == nil {
		return 0, ErrNilCollection
	}
	res, err := s.Collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete many from %s: %w", s.Collection.Name(), err)
	}
	return res.DeletedCount, nil
}
