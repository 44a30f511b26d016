package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meowscale/internal/domain"
)

type weightDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Weight    float64            `bson:"weight"`
	BMI       float64            `bson:"bmi"`
	Timestamp time.Time          `bson:"timestamp"`
}

func (d weightDoc) record() domain.WeightRecord {
	return domain.WeightRecord{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Weight:    d.Weight,
		BMI:       d.BMI,
		Timestamp: d.Timestamp.UTC(),
	}
}

var newestFirst = bson.D{{Key: "timestamp", Value: -1}}

// QueryRecords returns a user's records, most recent first.
func (s *Store) QueryRecords(ctx context.Context, userID string, limit int) ([]domain.WeightRecord, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.weights.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, domain.StoreFailure("query weights", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []weightDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.StoreFailure("query weights", err)
	}
	out := make([]domain.WeightRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.record())
	}
	return out, nil
}

// InsertRecord stores rec and returns the generated ObjectID in hex.
func (s *Store) InsertRecord(ctx context.Context, rec domain.WeightRecord) (string, error) {
	doc := weightDoc{
		ID:        primitive.NewObjectID(),
		UserID:    rec.UserID,
		Weight:    rec.Weight,
		BMI:       rec.BMI,
		Timestamp: rec.Timestamp.UTC(),
	}
	if _, err := s.weights.InsertOne(ctx, doc); err != nil {
		return "", domain.StoreFailure("insert weight", err)
	}
	return doc.ID.Hex(), nil
}

// UpdateRecord overwrites weight, bmi and timestamp in one $set.
func (s *Store) UpdateRecord(ctx context.Context, id string, u domain.WeightUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"weight":    u.Weight,
		"bmi":       u.BMI,
		"timestamp": u.Timestamp.UTC(),
	}}
	res, err := s.weights.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return domain.StoreFailure("update weight", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindRecordInRange returns the latest record with from <= timestamp < to.
func (s *Store) FindRecordInRange(ctx context.Context, userID string, from, to time.Time) (*domain.WeightRecord, error) {
	filter := bson.M{
		"userId":    userID,
		"timestamp": bson.M{"$gte": from.UTC(), "$lt": to.UTC()},
	}
	return s.findLatest(ctx, "find weight in range", filter)
}

// LatestRecordBefore returns the latest record strictly before the instant.
func (s *Store) LatestRecordBefore(ctx context.Context, userID string, before time.Time) (*domain.WeightRecord, error) {
	filter := bson.M{
		"userId":    userID,
		"timestamp": bson.M{"$lt": before.UTC()},
	}
	return s.findLatest(ctx, "find previous weight", filter)
}

func (s *Store) findLatest(ctx context.Context, op string, filter bson.M) (*domain.WeightRecord, error) {
	var d weightDoc
	err := s.weights.FindOne(ctx, filter, options.FindOne().SetSort(newestFirst)).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreFailure(op, err)
	}
	rec := d.record()
	return &rec, nil
}
