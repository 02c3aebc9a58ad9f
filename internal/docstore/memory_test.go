package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Commit(ctx, NewBatch().Create("gyms", "g1", map[string]any{"name": "Iron"})))

	// second op fails: updating a missing document
	b := NewBatch().
		Update("gyms", "g1", map[string]any{"name": "Steel"}).
		Update("gyms", "missing", map[string]any{"name": "x"})
	err := m.Commit(ctx, b)
	require.Error(t, err)

	doc, err := m.Get(ctx, "gyms", "g1")
	require.NoError(t, err)
	assert.Equal(t, "Iron", doc.Data["name"])
	assert.Equal(t, 1, m.Commits())
}

func TestMemory_CreateRejectsExisting(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Commit(ctx, NewBatch().Create("gyms", "g1", map[string]any{})))

	err := m.Commit(ctx, NewBatch().Create("gyms", "g1", map[string]any{}))
	assert.ErrorContains(t, err, "already exists")
}

func TestMemory_DeleteThenCreateInOneBatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Commit(ctx, NewBatch().Create("c", "a", map[string]any{"v": 1})))

	require.NoError(t, m.Commit(ctx, NewBatch().Delete("c", "a").Create("c", "a", map[string]any{"v": 2})))

	doc, err := m.Get(ctx, "c", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Data["v"])
}

func TestMemory_GetMissing(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "gyms", "nope")
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestMemory_GetByIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Commit(ctx, NewBatch().
		Create("addresses", "a1", map[string]any{}).
		Create("addresses", "a2", map[string]any{})))

	docs, err := m.GetByIDs(ctx, "addresses", []string{"a2", "zz", "a1"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a2", docs[0].ID)
	assert.Equal(t, "a1", docs[1].ID)

	ids := make([]string, MaxIDsPerRead+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}
	_, err = m.GetByIDs(ctx, "addresses", ids)
	assert.ErrorIs(t, err, ErrTooManyIDs)
}

func TestMemory_ConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Commit(ctx, NewBatch().Create("addresses", "a1", map[string]any{"events": []any{}})))

	read, err := m.Get(ctx, "addresses", "a1")
	require.NoError(t, err)

	// a competing writer bumps the update time
	require.NoError(t, m.Commit(ctx, NewBatch().Update("addresses", "a1", map[string]any{"city": "Recife"})))

	err = m.Commit(ctx, NewBatch().UpdateIfUnchanged("addresses", "a1", map[string]any{"events": []any{"e1"}}, read.UpdateTime))
	assert.ErrorIs(t, err, ErrPrecondition)

	fresh, err := m.Get(ctx, "addresses", "a1")
	require.NoError(t, err)
	require.NoError(t, m.Commit(ctx, NewBatch().UpdateIfUnchanged("addresses", "a1", map[string]any{"events": []any{"e1"}}, fresh.UpdateTime)))
}

func TestMemory_FailNextCommit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("deadline exceeded")
	m.FailNextCommit(boom)

	err := m.Commit(ctx, NewBatch().Create("gyms", "g1", map[string]any{}))
	assert.ErrorIs(t, err, boom)
	assert.False(t, m.Exists("gyms", "g1"))

	require.NoError(t, m.Commit(ctx, NewBatch().Create("gyms", "g1", map[string]any{})))
	assert.True(t, m.Exists("gyms", "g1"))
}

func TestMemory_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	fields := map[string]any{"tags": []string{"crossfit"}}
	require.NoError(t, m.Commit(ctx, NewBatch().Create("gyms", "g1", fields)))
	fields["tags"] = []string{"mutated"}

	doc, err := m.Get(ctx, "gyms", "g1")
	require.NoError(t, err)
	doc.Data["tags"] = nil

	again, err := m.Get(ctx, "gyms", "g1")
	require.NoError(t, err)
	assert.Equal(t, []any{"crossfit"}, again.Data["tags"])
}

func TestDecode_FirestoreTags(t *testing.T) {
	type inner struct {
		Name string `firestore:"name"`
	}
	type rec struct {
		ID      string    `firestore:"id"`
		Count   int       `firestore:"count"`
		At      time.Time `firestore:"at"`
		Tags    []string  `firestore:"tags,omitempty"`
		Inner   *inner    `firestore:"inner,omitempty"`
		Items   []inner   `firestore:"items"`
		Skipped string    `firestore:"-"`
	}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var out rec
	err := Decode(map[string]any{
		"id":    "r1",
		"count": int64(3),
		"at":    at,
		"tags":  []any{"a", "b"},
		"inner": map[string]any{"name": "x"},
		"items": []any{map[string]any{"name": "y"}},
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "r1", out.ID)
	assert.Equal(t, 3, out.Count)
	assert.True(t, at.Equal(out.At))
	assert.Equal(t, []string{"a", "b"}, out.Tags)
	require.NotNil(t, out.Inner)
	assert.Equal(t, "x", out.Inner.Name)
	assert.Equal(t, []inner{{Name: "y"}}, out.Items)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "gyms/g1/addresses", Path("gyms", "g1", "addresses"))
}
