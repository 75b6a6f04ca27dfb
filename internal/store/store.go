package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates no document matched a FindOne filter.
var ErrNotFound = errors.New("document not found")

// ErrDuplicate indicates an insert violated a unique field.
var ErrDuplicate = errors.New("duplicate key")

// IDField is the generated identifier key present on every stored document.
const IDField = "_id"

// Document is a flat JSON-compatible record. Identifiers are always strings.
type Document map[string]any

// String returns the field as a string, or "" when absent or not a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// In matches documents whose field equals any of the listed values.
type In []string

// Filter selects documents by field. Values are compared for equality unless
// they are an In.
type Filter map[string]any

// UpdateResult mirrors a single-document $set outcome.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Collection is the document-collection contract every backend satisfies.
type Collection interface {
	FindOne(ctx context.Context, filter Filter, opts ...FindOption) (Document, error)
	FindMany(ctx context.Context, filter Filter, opts ...FindOption) ([]Document, error)
	InsertOne(ctx context.Context, doc Document) (string, error)
	UpdateOne(ctx context.Context, filter Filter, set Document) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (int64, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	EnsureUnique(ctx context.Context, field string) error
}

// Database hands out named collections over one connection.
type Database interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// FindOptions shape a read.
type FindOptions struct {
	Exclude  []string
	SortDesc string
	Limit    int64
}

// FindOption mutates FindOptions.
type FindOption func(*FindOptions)

// Exclude drops the named fields from returned documents.
func Exclude(fields ...string) FindOption {
	return func(o *FindOptions) { o.Exclude = append(o.Exclude, fields...) }
}

// SortDesc orders results by field, largest first.
func SortDesc(field string) FindOption {
	return func(o *FindOptions) { o.SortDesc = field }
}

// Limit caps the number of returned documents. Zero means no cap.
func Limit(n int64) FindOption {
	return func(o *FindOptions) { o.Limit = n }
}

func buildOptions(opts []FindOption) FindOptions {
	var o FindOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o FindOptions) project(doc Document) Document {
	for _, f := range o.Exclude {
		delete(doc, f)
	}
	return doc
}

// Open constructs the backend named by kind.
func Open(ctx context.Context, kind, mongoURI, dbName, databaseURL string) (Database, error) {
	switch kind {
	case "mongo", "":
		return NewMongoDatabase(ctx, mongoURI, dbName)
	case "postgres":
		return NewPostgresDatabase(ctx, databaseURL)
	case "memory":
		return NewMemoryDatabase(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}

// EnsureUniqueKeys creates unique indexes for each collection->field pair.
func EnsureUniqueKeys(ctx context.Context, db Database, keys map[string]string) error {
	for name, field := range keys {
		if err := db.Collection(name).EnsureUnique(ctx, field); err != nil {
			return fmt.Errorf("unique index %s.%s: %w", name, field, err)
		}
	}
	return nil
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int:
		if bv, ok := b.(int); ok {
			return av - bv
		}
	}
	switch {
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	return 0
}
