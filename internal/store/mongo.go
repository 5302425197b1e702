package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the MongoDB collection holding todos.
const CollectionName = "todos"

type todoDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description *string            `bson:"description,omitempty"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d todoDoc) todo() Todo {
	return Todo{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// Mongo is a Store backed by a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri, verifies the connection and ensures the
// createdAt index used for listing exists.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	m := NewMongo(client, client.Database(database).Collection(CollectionName))
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

// NewMongo wraps an existing client and collection.
func NewMongo(client *mongo.Client, coll *mongo.Collection) *Mongo {
	return &Mongo{client: client, coll: coll}
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("creating createdAt index: %w", err)
	}
	return nil
}

func (m *Mongo) Create(ctx context.Context, in NewTodo) (Todo, error) {
	ts := now()
	doc := todoDoc{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		Completed:   false,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return Todo{}, fmt.Errorf("inserting todo: %w", err)
	}
	return doc.todo(), nil
}

func (m *Mongo) Get(ctx context.Context, id string) (Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Todo{}, ErrNotFound
	}
	var doc todoDoc
	if err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return Todo{}, mongoErr(err)
	}
	return doc.todo(), nil
}

func (m *Mongo) List(ctx context.Context, skip, limit int) ([]Todo, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding todos: %w", err)
	}
	defer cur.Close(ctx)

	var docs []todoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding todos: %w", err)
	}
	out := make([]Todo, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.todo())
	}
	return out, nil
}

func (m *Mongo) Count(ctx context.Context) (int, error) {
	n, err := m.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting todos: %w", err)
	}
	return int(n), nil
}

func (m *Mongo) Update(ctx context.Context, id string, p Patch) (Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Todo{}, ErrNotFound
	}
	if p.Empty() {
		return m.Get(ctx, id)
	}

	set := bson.D{{Key: "updatedAt", Value: now()}}
	if p.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *p.Title})
	}
	if p.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *p.Description})
	}
	if p.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *p.Completed})
	}

	var doc todoDoc
	err = m.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return Todo{}, mongoErr(err)
	}
	return doc.todo(), nil
}

func (m *Mongo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func mongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("mongodb: %w", err)
}
