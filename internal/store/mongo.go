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
)

// MongoDatabase is the production Database backed by MongoDB.
type MongoDatabase struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDatabase connects and pings with short timeouts.
func NewMongoDatabase(ctx context.Context, uri, dbName string) (*MongoDatabase, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoDatabase{client: client, db: client.Database(dbName)}, nil
}

func (m *MongoDatabase) Collection(name string) Collection {
	return &MongoCollection{coll: m.db.Collection(name)}
}

func (m *MongoDatabase) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoDatabase) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// MongoCollection adapts *mongo.Collection to Collection.
type MongoCollection struct {
	coll *mongo.Collection
}

func (c *MongoCollection) FindOne(ctx context.Context, filter Filter, opts ...FindOption) (Document, error) {
	o := buildOptions(opts)
	findOpts := options.FindOne()
	if p := mongoProjection(o); p != nil {
		findOpts.SetProjection(p)
	}
	var raw bson.M
	err := c.coll.FindOne(ctx, mongoFilter(filter), findOpts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromBSON(raw), nil
}

func (c *MongoCollection) FindMany(ctx context.Context, filter Filter, opts ...FindOption) ([]Document, error) {
	o := buildOptions(opts)
	findOpts := options.Find()
	if p := mongoProjection(o); p != nil {
		findOpts.SetProjection(p)
	}
	if o.SortDesc != "" {
		findOpts.SetSort(bson.D{{Key: o.SortDesc, Value: -1}})
	}
	if o.Limit > 0 {
		findOpts.SetLimit(o.Limit)
	}
	cur, err := c.coll.Find(ctx, mongoFilter(filter), findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Document{}
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, fromBSON(raw))
	}
	return out, cur.Err()
}

func (c *MongoCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	res, err := c.coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	return idString(res.InsertedID), nil
}

func (c *MongoCollection) UpdateOne(ctx context.Context, filter Filter, set Document) (UpdateResult, error) {
	res, err := c.coll.UpdateOne(ctx, mongoFilter(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (c *MongoCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, mongoFilter(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *MongoCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, mongoFilter(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *MongoCollection) EnsureUnique(ctx context.Context, field string) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(field + "_unique"),
	})
	return err
}

func mongoFilter(filter Filter) bson.M {
	out := bson.M{}
	for k, v := range filter {
		if in, ok := v.(In); ok {
			out[k] = bson.M{"$in": []string(in)}
			continue
		}
		out[k] = v
	}
	return out
}

func mongoProjection(o FindOptions) bson.M {
	if len(o.Exclude) == 0 {
		return nil
	}
	p := bson.M{}
	for _, f := range o.Exclude {
		p[f] = 0
	}
	return p
}

func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		doc[k] = normalize(v)
	}
	return doc
}

// normalize converts driver types to JSON-friendly values.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case bson.M:
		return map[string]any(fromBSON(t))
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	default:
		return v
	}
}

func idString(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}
