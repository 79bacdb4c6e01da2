package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "actions"

// MongoStore keeps the action log in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("audit mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("audit mongo: ping: %w", err)
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "audit").Msg("mongo index creation failed")
	}

	log.Info().Str("module", "audit").Str("database", database).Msg("mongo store opened")
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Insert(ctx context.Context, e Entry) error {
	e.ID = ""
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("audit mongo: insert: %w", err)
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, f Filter) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(f.limit()))

	cursor, err := s.coll.Find(ctx, mongoFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("audit mongo: find: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]Entry, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("audit mongo: decode: %w", err)
	}
	return out, nil
}

func mongoFilter(f Filter) bson.M {
	filter := bson.M{}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.RoomID != "" {
		filter["roomId"] = f.RoomID
	}
	if f.UserName != "" {
		filter["userName"] = f.UserName
	}
	if !f.Since.IsZero() {
		filter["timestamp"] = bson.M{"$gte": f.Since}
	}
	return filter
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("audit mongo: disconnect: %w", err)
	}
	return nil
}
