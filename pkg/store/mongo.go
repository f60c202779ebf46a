package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/haplonet/pkg/document"
	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/observability"
)

const (
	mongoBackend = "mongo"
	// Collection holds one document per scene, keyed by scene ID.
	Collection = "scenes"
)

// MongoStore keeps documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses the scenes collection of database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := &MongoStore{client: client, coll: client.Database(database).Collection(Collection)}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "modified", Value: -1}}})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

// mongoDocument adds the node count used by List projections.
type mongoDocument struct {
	document.Document `bson:",inline"`
	NodeCount         int `bson:"node_count"`
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, d *document.Document) (err error) {
	start := time.Now()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	defer func() {
		observability.Store().OnSave(ctx, mongoBackend, d.ID, len(d.Nodes), time.Since(start), err)
	}()
	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": d.ID},
		mongoDocument{Document: *d, NodeCount: len(d.Nodes)},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save scene %s: %w", d.ID, err)
	}
	return nil
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, id string) (d *document.Document, err error) {
	start := time.Now()
	defer func() {
		observability.Store().OnLoad(ctx, mongoBackend, id, time.Since(start), err)
	}()
	doc := document.Document{Settings: document.DefaultSettings()}
	err = s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "scene %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", id, err)
	}
	if doc.Version != document.Version {
		return nil, errors.New(errors.ErrCodeUnsupported, "scene %s has version %d, want %d", id, doc.Version, document.Version)
	}
	return &doc, nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "modified", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "title": 1, "modified": 1, "node_count": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	var out []Summary
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return out, nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete scene %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "scene %s not found", id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
