// Package mongodb implements the store contract on MongoDB. Listings are
// single aggregation pipelines whose $facet returns the total and the window
// together.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"videotube/pkg/query"
	"videotube/pkg/store"
)

const (
	colUsers         = "users"
	colVideos        = "videos"
	colComments      = "comments"
	colTweets        = "tweets"
	colLikes         = "likes"
	colPlaylists     = "playlists"
	colSubscriptions = "subscriptions"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects, verifies the connection and creates the indexes.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	s := &Store{client: client, db: client.Database(database)}

	if err := s.Ping(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes backs the uniqueness rules and the hot listing filters.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		colVideos: {
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colComments: {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colTweets: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colLikes: {
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "targetType", Value: 1}, {Key: "target", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "target", Value: 1}, {Key: "targetType", Value: 1}}},
		},
		colPlaylists: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colSubscriptions: {
			{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "channel", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.col(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// now is truncated to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func stamp(created, updated *time.Time) {
	t := now()
	if created.IsZero() {
		*created = t
	}
	if updated != nil && updated.IsZero() {
		*updated = t
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

func (s *Store) insert(ctx context.Context, collection string, doc interface{}) error {
	if _, err := s.col(collection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", collection, translate(err))
	}
	return nil
}

func (s *Store) findByID(ctx context.Context, collection, id string, out interface{}) error {
	return translate(s.col(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out))
}

// findAndSet applies $set to one document and decodes the result.
func (s *Store) findAndSet(ctx context.Context, collection, id string, set bson.M, out interface{}) error {
	set["updatedAt"] = now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.col(collection).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(out)
	if err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, collection, id string) error {
	res, err := s.col(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", collection, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// aggregateOne runs a pipeline expected to yield at most one document.
func aggregateOne[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) (*T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", coll.Name(), err)
	}
	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return &docs[0], nil
}

func aggregateAll[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", coll.Name(), err)
	}
	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return docs, nil
}

type facetResult[T any] struct {
	Metadata []struct {
		Total int64 `bson:"total"`
	} `bson:"metadata"`
	Data []T `bson:"data"`
}

// aggregatePage runs a pipeline ending in the paged facet.
func aggregatePage[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, p query.Params) (*query.Page[T], error) {
	result, err := aggregateOne[facetResult[T]](ctx, coll, pipeline)
	if errors.Is(err, store.ErrNotFound) {
		return query.NewPage[T](nil, 0, p), nil
	}
	if err != nil {
		return nil, err
	}

	var total int64
	if len(result.Metadata) > 0 {
		total = result.Metadata[0].Total
	}
	return query.NewPage(result.Data, total, p), nil
}
