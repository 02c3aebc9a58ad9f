package gallery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/domain/owner"
)

var trainer = owner.NewRef(owner.PersonalTrainer, "pt-7")

func fakeSign(context.Context, []byte) ([]byte, error) { return []byte("signature"), nil }

func newService(sign SignFunc) *Service {
	return NewService("fit-dir.appspot.com", "signer@fit-dir.iam.gserviceaccount.com", sign, zap.NewNop())
}

func TestObjectPath(t *testing.T) {
	p := ObjectPath(trainer, "../Foto Perfil.JPG")
	assert.True(t, strings.HasPrefix(p, "owners/personal_trainer/pt-7/gallery/"), p)
	assert.True(t, strings.HasSuffix(p, "-foto-perfil.jpg"), p)
}

func TestSignedUploadURL(t *testing.T) {
	out, err := newService(fakeSign).SignedUploadURL(context.Background(), trainer, Request{
		FileName: "front.png", ContentType: "image/png", ExpiresSeconds: 7200,
	})
	require.NoError(t, err)
	assert.Equal(t, "PUT", out.Method)
	assert.Contains(t, out.URL, "fit-dir.appspot.com")
	assert.Contains(t, out.URL, "X-Goog-Signature=")
	// out of range expiries fall back to the default
	assert.InDelta(t, time.Now().Add(DefaultExpiry).Unix(), out.ExpiresAt, 5)
}

func TestSignedUploadURL_Rejects(t *testing.T) {
	ctx := context.Background()
	_, err := newService(fakeSign).SignedUploadURL(ctx, trainer, Request{FileName: "x.gif", ContentType: "image/gif"})
	require.True(t, apperr.IsErrValidation(err))
	assert.Equal(t, []string{"contentType"}, apperr.Fields(err))

	_, err = newService(nil).SignedUploadURL(ctx, trainer, Request{FileName: "x.png", ContentType: "image/png"})
	assert.True(t, apperr.IsErrBadRequest(err))

	failing := func(context.Context, []byte) ([]byte, error) { return nil, errors.New("permission denied") }
	_, err = newService(failing).SignedUploadURL(ctx, trainer, Request{FileName: "x.png", ContentType: "image/png"})
	assert.ErrorContains(t, err, "permission denied")
}

func TestSignedUploadURLs(t *testing.T) {
	ctx := context.Background()
	s := newService(fakeSign)

	out, err := s.SignedUploadURLs(ctx, trainer, []Request{
		{FileName: "a.jpg", ContentType: "image/jpeg"},
		{FileName: "b.webp", ContentType: "image/webp"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0].ObjectPath, out[1].ObjectPath)

	_, err = s.SignedUploadURLs(ctx, trainer, []Request{{FileName: "a.jpg", ContentType: "image/jpeg"}, {}})
	require.True(t, apperr.IsErrValidation(err))
	assert.Equal(t, []string{"[1].contentType", "[1].fileName"}, apperr.Fields(err))
}
