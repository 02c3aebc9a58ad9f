package subcollection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/owner"
)

type note struct {
	ID     string `json:"id" firestore:"id"`
	Text   string `json:"text" firestore:"text" validate:"required"`
	Pinned bool   `json:"pinned" firestore:"pinned"`
}

func (n *note) GetID() string   { return n.ID }
func (n *note) SetID(id string) { n.ID = id }
func (n *note) Fields() map[string]any {
	return map[string]any{"id": n.ID, "text": n.Text, "pinned": n.Pinned}
}

func newNotes(db docstore.Store) *Store[note, *note] {
	return New[note, *note](db, "notes", []string{"text"}, zap.NewNop())
}

var gym = owner.NewRef(owner.Gym, "gym-1")

func TestStore_CreateAllocatesIDs(t *testing.T) {
	ctx := context.Background()
	db := docstore.NewMemory()
	s := newNotes(db)

	out, err := s.Create(ctx, gym, []note{{ID: "client-id", Text: "a"}, {Text: "b"}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEqual(t, "client-id", out[0].ID)
	assert.NotEmpty(t, out[1].ID)
	assert.False(t, db.Exists("gyms/gym-1/notes", "client-id"))

	found, err := s.Find(ctx, gym)
	require.NoError(t, err)
	assert.ElementsMatch(t, out, found)
}

func TestStore_CreateValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	db := docstore.NewMemory()
	s := newNotes(db)

	_, err := s.Create(ctx, gym, []note{{Text: "ok"}, {}})
	require.True(t, apperr.IsErrValidation(err))
	assert.Equal(t, []string{"[1].text"}, apperr.Fields(err))
	assert.Zero(t, db.Commits())
}

func TestStore_CreateFailureIsConflict(t *testing.T) {
	ctx := context.Background()
	db := docstore.NewMemory()
	s := newNotes(db)
	db.FailNextCommit(errors.New("unavailable"))

	_, err := s.Create(ctx, gym, []note{{Text: "a"}, {Text: "b"}})
	require.True(t, apperr.IsErrConflict(err))
	assert.False(t, apperr.Retryable(err))
	assert.ErrorContains(t, err, "unavailable")

	found, err := s.Find(ctx, gym)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestStore_EditWritesMutableFieldsOnly(t *testing.T) {
	ctx := context.Background()
	s := newNotes(docstore.NewMemory())

	created, err := s.Create(ctx, gym, []note{{Text: "a", Pinned: true}})
	require.NoError(t, err)

	_, err = s.Edit(ctx, gym, []note{{ID: created[0].ID, Text: "changed", Pinned: false}})
	require.NoError(t, err)

	found, err := s.Find(ctx, gym)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "changed", found[0].Text)
	assert.True(t, found[0].Pinned)
}

func TestStore_EditRequiresIDs(t *testing.T) {
	_, err := newNotes(docstore.NewMemory()).Edit(context.Background(), gym, []note{{Text: "x"}})
	require.True(t, apperr.IsErrValidation(err))
	assert.Equal(t, []string{"[0].id"}, apperr.Fields(err))
}

func TestStore_EditMissingIsConflict(t *testing.T) {
	_, err := newNotes(docstore.NewMemory()).Edit(context.Background(), gym, []note{{ID: "nope", Text: "x"}})
	assert.True(t, apperr.IsErrConflict(err))
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newNotes(docstore.NewMemory())

	created, err := s.Create(ctx, gym, []note{{Text: "a"}, {Text: "b"}})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, gym, []string{created[0].ID}))
	found, err := s.Find(ctx, gym)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created[1].ID, found[0].ID)

	require.NoError(t, s.Delete(ctx, gym, nil))
}

func TestStore_FindAbsentOwner(t *testing.T) {
	found, err := newNotes(docstore.NewMemory()).Find(context.Background(), owner.NewRef(owner.Student, "ghost"))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCommit_PreconditionIsStaleWrite(t *testing.T) {
	db := docstore.NewMemory()
	db.FailNextCommit(docstore.ErrPrecondition)

	err := Commit(context.Background(), db, docstore.NewBatch().Delete("c", "x"), zap.NewNop())
	assert.True(t, apperr.IsErrStaleWrite(err))
	assert.True(t, apperr.IsErrConflict(err))
	assert.True(t, apperr.Retryable(err))
}
