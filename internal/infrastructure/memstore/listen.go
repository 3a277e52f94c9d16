package memstore

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"nutriflow/internal/domain/docstore"
)

type stream struct {
	store      *Store
	ctx        context.Context
	query      docstore.Query
	collection string
	changed    chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once
	last       []docstore.Document
	delivered  bool
}

// Listen registers a live query. Changes to the query's collection wake the
// stream; Next only returns when the ordered result actually differs from
// the previous one.
func (s *Store) Listen(ctx context.Context, q docstore.Query) docstore.SnapshotStream {
	st := &stream{
		store:      s,
		ctx:        ctx,
		query:      q,
		collection: strings.Trim(q.Collection, "/"),
		changed:    make(chan struct{}, 1),
		stopped:    make(chan struct{}),
	}

	s.mu.Lock()
	s.watchers[st] = struct{}{}
	s.mu.Unlock()

	return st
}

func (s *Store) notify(collection string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for w := range s.watchers {
		if w.collection != collection {
			continue
		}
		select {
		case w.changed <- struct{}{}:
		default:
		}
	}
}

func (st *stream) Next() (docstore.Snapshot, error) {
	for {
		select {
		case <-st.stopped:
			return docstore.Snapshot{}, docstore.ErrStreamDone
		case <-st.ctx.Done():
			return docstore.Snapshot{}, st.ctx.Err()
		default:
		}

		if st.delivered {
			select {
			case <-st.changed:
			case <-st.stopped:
				return docstore.Snapshot{}, docstore.ErrStreamDone
			case <-st.ctx.Done():
				return docstore.Snapshot{}, st.ctx.Err()
			}
		}

		st.store.mu.RLock()
		docs := st.store.run(st.query)
		now := st.store.now()
		st.store.mu.RUnlock()

		if st.delivered && reflect.DeepEqual(docs, st.last) {
			continue
		}
		st.last = docs
		st.delivered = true
		return docstore.Snapshot{Docs: cloneDocs(docs), ReadAt: now}, nil
	}
}

func cloneDocs(docs []docstore.Document) []docstore.Document {
	out := make([]docstore.Document, len(docs))
	for i, d := range docs {
		out[i] = docstore.Document{ID: d.ID, Path: d.Path, Data: copyMap(d.Data)}
	}
	return out
}

func (st *stream) Stop() {
	st.stopOnce.Do(func() {
		close(st.stopped)
		st.store.mu.Lock()
		delete(st.store.watchers, st)
		st.store.mu.Unlock()
	})
}
