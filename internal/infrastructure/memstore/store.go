// Package memstore is an in-process DocumentStore with live listeners. It
// backs local development (STORE_BACKEND=memory) and the test suites, and
// mirrors the Firestore behaviours the rest of the code relies on: documents
// without an ordered field are excluded, ties order by document ID, and
// listeners receive a fresh full snapshot after every change.
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutriflow/internal/domain/docstore"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	watchers    map[*stream]struct{}
	now         func() time.Time
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]interface{}),
		watchers:    make(map[*stream]struct{}),
		now:         time.Now,
	}
}

var _ docstore.DocumentStore = (*Store)(nil)

func splitDocPath(path string) (string, string, error) {
	path = strings.Trim(path, "/")
	segments := strings.Split(path, "/")
	if len(segments) < 2 || len(segments)%2 != 0 {
		return "", "", fmt.Errorf("memstore: %q is not a document path", path)
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1], nil
}

func validCollection(path string) bool {
	path = strings.Trim(path, "/")
	return path != "" && len(strings.Split(path, "/"))%2 == 1
}

func (s *Store) GetDoc(ctx context.Context, path string) (docstore.Document, error) {
	collection, id, err := splitDocPath(path)
	if err != nil {
		return docstore.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{
		ID:   id,
		Path: collection + "/" + id,
		Data: copyMap(data),
	}, nil
}

func (s *Store) Get(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if !validCollection(q.Collection) {
		return nil, fmt.Errorf("memstore: %q is not a collection path", q.Collection)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run(q), nil
}

func (s *Store) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if !validCollection(collection) {
		return "", fmt.Errorf("memstore: %q is not a collection path", collection)
	}
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
	if err := s.Write(ctx, strings.Trim(collection, "/")+"/"+id, fields, docstore.Create); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Write(ctx context.Context, path string, fields map[string]interface{}, mode docstore.WriteMode) error {
	collection, id, err := splitDocPath(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]interface{})
		s.collections[collection] = docs
	}
	existing, exists := docs[id]
	switch mode {
	case docstore.Create:
		if exists {
			s.mu.Unlock()
			return docstore.ErrAlreadyExists
		}
		docs[id] = copyMap(fields)
	case docstore.Merge:
		if !exists {
			existing = make(map[string]interface{})
		}
		mergeInto(existing, fields)
		docs[id] = existing
	case docstore.Replace:
		replaced := copyMap(fields)
		if replaced == nil {
			replaced = make(map[string]interface{})
		}
		docs[id] = replaced
	default:
		s.mu.Unlock()
		return fmt.Errorf("memstore: unknown write mode %d", mode)
	}
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	collection, id, err := splitDocPath(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	_, existed := s.collections[collection][id]
	delete(s.collections[collection], id)
	s.mu.Unlock()

	if existed {
		s.notify(collection)
	}
	return nil
}

// Collections lists the collection paths that currently hold documents.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.collections))
	for path, docs := range s.collections {
		if len(docs) > 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// run evaluates q against the current data. Callers hold at least a read lock.
func (s *Store) run(q docstore.Query) []docstore.Document {
	collection := strings.Trim(q.Collection, "/")
	docs := s.collections[collection]

	result := make([]docstore.Document, 0, len(docs))
	for id, data := range docs {
		if !matches(data, q.Filters) || !hasOrderFields(data, q.Orders) {
			continue
		}
		result = append(result, docstore.Document{
			ID:   id,
			Path: collection + "/" + id,
			Data: copyMap(data),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		for _, o := range q.Orders {
			c, _ := compare(result[i].Data[o.Field], result[j].Data[o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return result[i].ID < result[j].ID
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result
}

func hasOrderFields(data map[string]interface{}, orders []docstore.OrderBy) bool {
	for _, o := range orders {
		if _, ok := data[o.Field]; !ok {
			return false
		}
	}
	return true
}

func matches(data map[string]interface{}, filters []docstore.Filter) bool {
	for _, f := range filters {
		value, present := data[f.Field]
		switch f.Op {
		case docstore.OpArrayContains:
			if !present || !sliceContains(value, f.Value) {
				return false
			}
		case docstore.OpIn:
			if !present || !sliceContains(f.Value, value) {
				return false
			}
		case docstore.OpNotEqual:
			if !present {
				return false
			}
			if c, ok := compare(value, f.Value); ok && c == 0 {
				return false
			}
		default:
			if !present {
				return false
			}
			c, ok := compare(value, f.Value)
			if !ok {
				return false
			}
			switch f.Op {
			case docstore.OpEqual:
				if c != 0 {
					return false
				}
			case docstore.OpLess:
				if c >= 0 {
					return false
				}
			case docstore.OpLessEqual:
				if c > 0 {
					return false
				}
			case docstore.OpGreater:
				if c <= 0 {
					return false
				}
			case docstore.OpGreaterEqual:
				if c < 0 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

func sliceContains(slice, want interface{}) bool {
	rv := reflect.ValueOf(slice)
	if rv.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if c, ok := compare(rv.Index(i).Interface(), want); ok && c == 0 {
			return true
		}
	}
	return false
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compare orders two stored values of the same kind. ok is false when the
// kinds differ, in which case no comparison filter matches.
func compare(a, b interface{}) (int, bool) {
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		if !ok {
			return 0, false
		}
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		}
		return 0, true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	case nil:
		if b == nil {
			return 0, true
		}
	}
	return 0, false
}

func mergeInto(dst, src map[string]interface{}) {
	for k, v := range src {
		if sub, ok := v.(map[string]interface{}); ok {
			if existing, ok := dst[k].(map[string]interface{}); ok {
				mergeInto(existing, sub)
				continue
			}
		}
		dst[k] = copyValue(v)
	}
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return copyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	}
	return v
}
