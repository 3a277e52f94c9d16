package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriflow/internal/domain/docstore"
)

func ids(docs []docstore.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestGetOrdersAndBreaksTiesByID(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Write(ctx, "items/b", map[string]interface{}{"rank": 1}, docstore.Create))
	require.NoError(t, s.Write(ctx, "items/a", map[string]interface{}{"rank": 1}, docstore.Create))
	require.NoError(t, s.Write(ctx, "items/c", map[string]interface{}{"rank": 0}, docstore.Create))
	require.NoError(t, s.Write(ctx, "items/d", map[string]interface{}{"other": true}, docstore.Create))

	docs, err := s.Get(ctx, docstore.Query{Collection: "items"}.OrderBy("rank", false))
	require.NoError(t, err)
	// d has no rank and is left out.
	assert.Equal(t, []string{"c", "a", "b"}, ids(docs))

	docs, err = s.Get(ctx, docstore.Query{Collection: "items"}.OrderBy("rank", true).WithLimit(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(docs))
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Write(ctx, "chats/1", map[string]interface{}{"participants": []string{"a", "b"}, "at": jan}, docstore.Create))
	require.NoError(t, s.Write(ctx, "chats/2", map[string]interface{}{"participants": []string{"a", "c"}, "at": feb}, docstore.Create))
	require.NoError(t, s.Write(ctx, "chats/3", map[string]interface{}{"participants": []string{"b", "c"}, "at": feb}, docstore.Create))

	docs, err := s.Get(ctx, docstore.Query{Collection: "chats"}.Where("participants", docstore.OpArrayContains, "a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(docs))

	docs, err = s.Get(ctx, docstore.Query{Collection: "chats"}.
		Where("at", docstore.OpGreaterEqual, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)).
		Where("at", docstore.OpLess, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, ids(docs))

	// Mismatched kinds never match a comparison.
	docs, err = s.Get(ctx, docstore.Query{Collection: "chats"}.Where("at", docstore.OpGreater, "2024"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestWriteModes(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Write(ctx, "users/u1", map[string]interface{}{
		"name":     "Ana",
		"settings": map[string]interface{}{"email": true, "push": true},
	}, docstore.Create))

	err := s.Write(ctx, "users/u1", map[string]interface{}{"name": "Bia"}, docstore.Create)
	assert.ErrorIs(t, err, docstore.ErrAlreadyExists)

	require.NoError(t, s.Write(ctx, "users/u1", map[string]interface{}{
		"settings": map[string]interface{}{"push": false},
	}, docstore.Merge))

	doc, err := s.GetDoc(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.Data["name"])
	assert.Equal(t, map[string]interface{}{"email": true, "push": false}, doc.Data["settings"])

	require.NoError(t, s.Delete(ctx, "users/u1"))
	_, err = s.GetDoc(ctx, "users/u1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Write(ctx, "users/u1", map[string]interface{}{"name": "Ana"}, docstore.Create))

	doc, err := s.GetDoc(ctx, "users/u1")
	require.NoError(t, err)
	doc.Data["name"] = "changed"

	doc, err = s.GetDoc(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.Data["name"])
}

func TestAddAssignsID(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, err := s.Add(ctx, "users/u1/patients", map[string]interface{}{"name": "Carlos"})
	require.NoError(t, err)
	assert.Len(t, id, 20)

	doc, err := s.GetDoc(ctx, "users/u1/patients/"+id)
	require.NoError(t, err)
	assert.Equal(t, "Carlos", doc.Data["name"])

	_, err = s.Add(ctx, "users/u1", nil)
	assert.Error(t, err)
}

func TestListenDeliversInitialAndChangedSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New()
	require.NoError(t, s.Write(ctx, "items/a", map[string]interface{}{"n": 1}, docstore.Create))

	stream := s.Listen(ctx, docstore.Query{Collection: "items"}.OrderBy("n", false))
	defer stream.Stop()

	snap, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(snap.Docs))

	// A write elsewhere does not produce a snapshot.
	require.NoError(t, s.Write(ctx, "other/x", map[string]interface{}{"n": 1}, docstore.Create))
	require.NoError(t, s.Write(ctx, "items/b", map[string]interface{}{"n": 0}, docstore.Create))

	snap, err = stream.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(snap.Docs))
}

func TestListenStop(t *testing.T) {
	s := New()
	stream := s.Listen(context.Background(), docstore.Query{Collection: "items"})
	_, err := stream.Next()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := stream.Next()
		done <- err
	}()
	stream.Stop()
	stream.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, docstore.ErrStreamDone)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Stop")
	}
}

func TestReplaceDropsKeysNotSent(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Write(ctx, "users/u1/patients/p1", map[string]interface{}{
		"name":      "Ana",
		"cpf":       "123.456.789-00",
		"anamnesis": map[string]interface{}{"allergies": []interface{}{"glúten"}, "mainComplaint": "Cansaço"},
	}, docstore.Create))

	require.NoError(t, s.Write(ctx, "users/u1/patients/p1", map[string]interface{}{
		"name":      "Ana",
		"anamnesis": map[string]interface{}{"mainComplaint": "Cansaço"},
	}, docstore.Replace))

	doc, err := s.GetDoc(ctx, "users/u1/patients/p1")
	require.NoError(t, err)
	assert.NotContains(t, doc.Data, "cpf")
	assert.Equal(t, map[string]interface{}{"mainComplaint": "Cansaço"}, doc.Data["anamnesis"])

	require.NoError(t, s.Write(ctx, "users/u1/patients/p2", map[string]interface{}{"name": "Bia"}, docstore.Replace))
	doc, err = s.GetDoc(ctx, "users/u1/patients/p2")
	require.NoError(t, err)
	assert.Equal(t, "Bia", doc.Data["name"])
}
