// Package mongo implements the profile and weight repositories on MongoDB.
//
// Profiles live in the users collection keyed by user ID; weights live in the
// weights collection with generated ObjectIDs.
package mongo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meowscale/internal/domain"
)

const (
	usersCollection   = "users"
	weightsCollection = "weights"
)

// Store implements domain.ProfileRepository and domain.WeightRepository.
type Store struct {
	client  *mongo.Client
	users   *mongo.Collection
	weights *mongo.Collection
}

var (
	_ domain.ProfileRepository = (*Store)(nil)
	_ domain.WeightRepository  = (*Store)(nil)
)

// Connect dials uri, pings the server and returns a Store on database.
// Commands slower than slow are logged at warn level.
func Connect(ctx context.Context, uri, database string, slow time.Duration) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMonitor(commandMonitor(slow)),
	)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s := New(client.Database(database))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	slog.Info("mongodb initialized", "db", database)
	return s, nil
}

// New returns a Store on an existing database handle.
func New(db *mongo.Database) *Store {
	return &Store{
		client:  db.Client(),
		users:   db.Collection(usersCollection),
		weights: db.Collection(weightsCollection),
	}
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.weights.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return domain.StoreFailure("create weights index", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "partnerCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return domain.StoreFailure("create users index", err)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// notFound maps the driver's empty result onto domain.ErrNotFound and wraps
// everything else as a store failure.
func notFound(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return domain.StoreFailure(op, err)
}
