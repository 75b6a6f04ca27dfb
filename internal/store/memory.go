package store

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryDatabase is a process-local Database for dev and tests.
type MemoryDatabase struct {
	mu          sync.Mutex
	collections map[string]*MemoryCollection
}

// NewMemoryDatabase creates an empty in-memory database.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{collections: make(map[string]*MemoryCollection)}
}

// Collection returns the named collection, creating it on first use.
func (m *MemoryDatabase) Collection(name string) Collection {
	return m.memoryCollection(name)
}

func (m *MemoryDatabase) memoryCollection(name string) *MemoryCollection {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		c = &MemoryCollection{unique: make(map[string]struct{})}
		m.collections[name] = c
	}
	return c
}

// Ping always succeeds.
func (m *MemoryDatabase) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryDatabase) Close(context.Context) error { return nil }

// Seed inserts documents directly, bypassing unique checks. Used to stand in
// for pre-provisioned collections such as Rooms.
func (m *MemoryDatabase) Seed(name string, docs ...Document) {
	c := m.memoryCollection(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range docs {
		cp := copyDoc(d)
		if _, ok := cp[IDField]; !ok {
			cp[IDField] = uuid.NewString()
		}
		c.docs = append(c.docs, cp)
	}
}

// MemoryCollection keeps documents in insertion order.
type MemoryCollection struct {
	mu     sync.RWMutex
	docs   []Document
	unique map[string]struct{}
}

func (c *MemoryCollection) FindOne(_ context.Context, filter Filter, opts ...FindOption) (Document, error) {
	o := buildOptions(opts)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.docs {
		if matches(d, filter) {
			return o.project(copyDoc(d)), nil
		}
	}
	return nil, ErrNotFound
}

func (c *MemoryCollection) FindMany(_ context.Context, filter Filter, opts ...FindOption) ([]Document, error) {
	o := buildOptions(opts)
	c.mu.RLock()
	out := make([]Document, 0, len(c.docs))
	for _, d := range c.docs {
		if matches(d, filter) {
			out = append(out, copyDoc(d))
		}
	}
	c.mu.RUnlock()

	if o.SortDesc != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return compareValues(out[i][o.SortDesc], out[j][o.SortDesc]) > 0
		})
	}
	if o.Limit > 0 && int64(len(out)) > o.Limit {
		out = out[:o.Limit]
	}
	for i := range out {
		out[i] = o.project(out[i])
	}
	return out, nil
}

func (c *MemoryCollection) InsertOne(_ context.Context, doc Document) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for field := range c.unique {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for _, d := range c.docs {
			if reflect.DeepEqual(d[field], v) {
				return "", ErrDuplicate
			}
		}
	}
	cp := copyDoc(doc)
	id := uuid.NewString()
	cp[IDField] = id
	c.docs = append(c.docs, cp)
	return id, nil
}

func (c *MemoryCollection) UpdateOne(_ context.Context, filter Filter, set Document) (UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.docs {
		if !matches(d, filter) {
			continue
		}
		res := UpdateResult{Matched: 1}
		for k, v := range set {
			if cur, ok := d[k]; !ok || !reflect.DeepEqual(cur, v) {
				d[k] = v
				res.Modified = 1
			}
		}
		return res, nil
	}
	return UpdateResult{}, nil
}

func (c *MemoryCollection) DeleteOne(_ context.Context, filter Filter) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if matches(d, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *MemoryCollection) DeleteMany(_ context.Context, filter Filter) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.docs[:0]
	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return n, nil
}

func (c *MemoryCollection) EnsureUnique(_ context.Context, field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unique[field] = struct{}{}
	return nil
}

func matches(d Document, filter Filter) bool {
	for field, want := range filter {
		got, ok := d[field]
		if in, isIn := want.(In); isIn {
			s, _ := got.(string)
			if !ok || !containsString(in, s) {
				return false
			}
			continue
		}
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func copyDoc(d Document) Document {
	cp := make(Document, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}
