package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/owner"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := docstore.NewMemory()
	s := NewStore(db, zap.NewNop())
	ref := owner.NewRef(owner.PersonalTrainer, "pt-1")

	out, err := s.Create(ctx, ref, []Contact{{Name: "Front desk", Email: "desk@example.com", Main: true}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, db.Exists("personal_trainers/pt-1/contacts", out[0].ID))

	// contacts are never mirrored
	assert.False(t, db.Exists("contacts", out[0].ID))

	out[0].Phone = "+55 81 9999-0000"
	_, err = s.Edit(ctx, ref, out)
	require.NoError(t, err)

	found, err := s.Find(ctx, ref)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, out[0], found[0])
	assert.Equal(t, out[0], Index(found)[out[0].ID])
}

func TestStore_RejectsBadEmail(t *testing.T) {
	_, err := NewStore(docstore.NewMemory(), zap.NewNop()).
		Create(context.Background(), owner.NewRef(owner.Gym, "g"), []Contact{{Name: "x", Email: "nope"}})
	require.True(t, apperr.IsErrValidation(err))
	assert.Equal(t, []string{"[0].email"}, apperr.Fields(err))
}
