package firestoredb

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"nutriflow/internal/domain/docstore"
	"nutriflow/pkg/logger"
)

// Store implements docstore.DocumentStore on Cloud Firestore.
type Store struct {
	client *firestore.Client
}

func New(client *firestore.Client) *Store {
	return &Store{
		client: client,
	}
}

var _ docstore.DocumentStore = (*Store)(nil)

func (s *Store) build(q docstore.Query) (firestore.Query, error) {
	col := s.client.Collection(strings.Trim(q.Collection, "/"))
	if col == nil {
		return firestore.Query{}, errors.New("firestoredb: invalid collection path " + q.Collection)
	}

	query := col.Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, f.Op, f.Value)
	}
	for _, o := range q.Orders {
		dir := firestore.Asc
		if o.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(o.Field, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query, nil
}

func toDocument(collection string, snap *firestore.DocumentSnapshot) docstore.Document {
	return docstore.Document{
		ID:   snap.Ref.ID,
		Path: strings.Trim(collection, "/") + "/" + snap.Ref.ID,
		Data: snap.Data(),
	}
}

func parentOf(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

func (s *Store) Get(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	query, err := s.build(q)
	if err != nil {
		return nil, err
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore query on %s failed: %v", q.Collection, err)
		return nil, err
	}

	docs := make([]docstore.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(q.Collection, snap))
	}
	return docs, nil
}

func (s *Store) GetDoc(ctx context.Context, path string) (docstore.Document, error) {
	ref := s.client.Doc(strings.Trim(path, "/"))
	if ref == nil {
		return docstore.Document{}, errors.New("firestoredb: invalid document path " + path)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, err
	}
	return toDocument(parentOf(path), snap), nil
}

func (s *Store) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	col := s.client.Collection(strings.Trim(collection, "/"))
	if col == nil {
		return "", errors.New("firestoredb: invalid collection path " + collection)
	}

	ref, _, err := col.Add(ctx, fields)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Store) Write(ctx context.Context, path string, fields map[string]interface{}, mode docstore.WriteMode) error {
	ref := s.client.Doc(strings.Trim(path, "/"))
	if ref == nil {
		return errors.New("firestoredb: invalid document path " + path)
	}

	var err error
	switch mode {
	case docstore.Create:
		_, err = ref.Create(ctx, fields)
		if status.Code(err) == codes.AlreadyExists {
			return docstore.ErrAlreadyExists
		}
	case docstore.Merge:
		_, err = ref.Set(ctx, fields, firestore.MergeAll)
	case docstore.Replace:
		_, err = ref.Set(ctx, fields)
	default:
		return errors.New("firestoredb: unknown write mode")
	}
	return err
}

func (s *Store) Delete(ctx context.Context, path string) error {
	ref := s.client.Doc(strings.Trim(path, "/"))
	if ref == nil {
		return errors.New("firestoredb: invalid document path " + path)
	}
	_, err := ref.Delete(ctx)
	return err
}

type snapshotStream struct {
	collection string
	iter       *firestore.QuerySnapshotIterator
	err        error
}

// Listen wraps Query.Snapshots. Firestore pushes a QuerySnapshot whenever
// the result set changes; reconnection is left to the client library.
func (s *Store) Listen(ctx context.Context, q docstore.Query) docstore.SnapshotStream {
	query, err := s.build(q)
	if err != nil {
		return &snapshotStream{err: err}
	}
	return &snapshotStream{
		collection: q.Collection,
		iter:       query.Snapshots(ctx),
	}
}

func (st *snapshotStream) Next() (docstore.Snapshot, error) {
	if st.err != nil {
		return docstore.Snapshot{}, st.err
	}

	qs, err := st.iter.Next()
	if err != nil {
		if err == iterator.Done {
			return docstore.Snapshot{}, docstore.ErrStreamDone
		}
		return docstore.Snapshot{}, err
	}

	snaps, err := qs.Documents.GetAll()
	if err != nil {
		return docstore.Snapshot{}, err
	}
	docs := make([]docstore.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(st.collection, snap))
	}
	return docstore.Snapshot{Docs: docs, ReadAt: qs.ReadTime}, nil
}

func (st *snapshotStream) Stop() {
	if st.iter != nil {
		st.iter.Stop()
	}
}
