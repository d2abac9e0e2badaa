package corpus

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/schemadapt/pkg/errors"
	"github.com/matzehuels/schemadapt/pkg/graph"
)

// Default MongoDB locations.
const (
	DefaultMongoDatabase   = "schemadapt"
	DefaultMongoCollection = "templates"
)

// templateDoc is the stored form of a template: the name is the document key.
type templateDoc struct {
	Name  string      `bson:"_id"`
	Graph graph.Graph `bson:"graph"`
}

// MongoSource reads templates from a MongoDB collection.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSource connects to uri and uses database/collection.
// Empty names fall back to the defaults.
func NewMongoSource(ctx context.Context, uri, database, collection string) (*MongoSource, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSource{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// NewMongoSourceFromCollection wraps an existing collection. Close is a
// no-op for sources created this way.
func NewMongoSourceFromCollection(coll *mongo.Collection) *MongoSource {
	return &MongoSource{coll: coll}
}

// Names returns all document keys in ascending order.
func (s *MongoSource) Names(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var docs []struct {
		Name string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names, nil
}

// Get loads and validates one template document.
func (s *MongoSource) Get(ctx context.Context, name string) (Template, error) {
	var doc templateDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Template{}, fmt.Errorf("%q: %w", name, ErrTemplateNotFound)
	}
	if err != nil {
		return Template{}, fmt.Errorf("load template %q: %w", name, err)
	}
	g, err := graph.ToBPC(doc.Graph)
	if err != nil {
		return Template{}, fmt.Errorf("template %q: %w", name, err)
	}
	return Template{Name: name, Graph: g}, nil
}

// Put upserts a template document.
func (s *MongoSource) Put(ctx context.Context, t Template) error {
	if err := errs.ValidateTemplateName(t.Name); err != nil {
		return err
	}
	doc := templateDoc{Name: t.Name, Graph: graph.FromBPC(t.Graph)}
	doc.Graph.Name = t.Name
	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: t.Name}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store template %q: %w", t.Name, err)
	}
	return nil
}

// Close disconnects the client if this source owns it.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
