package docstore

import (
	"context"
	"errors"
	"time"
)

// WriteMode selects how Write treats an existing document.
type WriteMode int

const (
	// Create fails with ErrAlreadyExists when the document is present.
	Create WriteMode = iota
	// Merge sets the given fields and keeps every other field untouched.
	// Nested maps are merged key by key.
	Merge
	// Replace overwrites the whole document with the given fields, creating
	// it when absent. Keys not sent are removed.
	Replace
)

// Filter operators understood by every DocumentStore backend.
const (
	OpEqual         = "=="
	OpNotEqual      = "!="
	OpLess          = "<"
	OpLessEqual     = "<="
	OpGreater       = ">"
	OpGreaterEqual  = ">="
	OpArrayContains = "array-contains"
	OpIn            = "in"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	// ErrStreamDone is returned by SnapshotStream.Next after Stop.
	ErrStreamDone = errors.New("snapshot stream stopped")
)

type Filter struct {
	Field string
	Op    string
	Value interface{}
}

type OrderBy struct {
	Field string
	Desc  bool
}

// Query describes a read against one collection. It carries no connection
// state and can be built before any identity is known.
type Query struct {
	Collection string
	Filters    []Filter
	Orders     []OrderBy
	Limit      int
}

func (q Query) Where(field, op string, value interface{}) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) OrderBy(field string, desc bool) Query {
	orders := make([]OrderBy, len(q.Orders), len(q.Orders)+1)
	copy(orders, q.Orders)
	q.Orders = append(orders, OrderBy{Field: field, Desc: desc})
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Document is a raw stored document. Data holds store-native values; the
// entity package normalizes them.
type Document struct {
	ID   string
	Path string
	Data map[string]interface{}
}

// Snapshot is the full ordered result of a query at one point in time.
type Snapshot struct {
	Docs   []Document
	ReadAt time.Time
}

// SnapshotStream yields a new Snapshot every time the query result changes.
// The first call to Next returns the initial result.
type SnapshotStream interface {
	Next() (Snapshot, error)
	Stop()
}

// DocumentStore is the boundary to the hosted document database.
type DocumentStore interface {
	Listen(ctx context.Context, q Query) SnapshotStream
	Get(ctx context.Context, q Query) ([]Document, error)
	GetDoc(ctx context.Context, path string) (Document, error)
	// Add creates a document with a store-assigned ID and returns that ID.
	Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	Write(ctx context.Context, path string, fields map[string]interface{}, mode WriteMode) error
	Delete(ctx context.Context, path string) error
}
