package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalid_SortsAndDeduplicates(t *testing.T) {
	err := Invalid("title", "[0].id", "title", "")

	assert.True(t, IsErrValidation(err))
	assert.Equal(t, []string{"[0].id", "title"}, Fields(err))
	assert.Equal(t, "validation failed: [0].id, title", err.Error())
}

func TestConflict_CarriesStoreText(t *testing.T) {
	cause := errors.New("rpc error: code = Aborted desc = too much contention")
	err := Conflict(cause)

	assert.True(t, IsErrConflict(err))
	assert.False(t, IsErrStaleWrite(err))
	assert.False(t, Retryable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "too much contention")
}

func TestStaleWrite_IsRetryableConflict(t *testing.T) {
	err := StaleWrite(errors.New("precondition failed"))

	assert.True(t, IsErrConflict(err))
	assert.True(t, IsErrStaleWrite(err))
	assert.True(t, Retryable(err))
}

func TestKindsDoNotOverlap(t *testing.T) {
	nf := NotFound("address %s", "a1")
	br := BadRequest("owner kind %q", "dojo")

	assert.True(t, IsErrNotFound(nf))
	assert.False(t, IsErrConflict(nf))
	assert.True(t, IsErrBadRequest(br))
	assert.False(t, IsErrNotFound(br))
	assert.Equal(t, "not found: address a1", nf.Error())
	assert.Nil(t, Fields(nf))
}
