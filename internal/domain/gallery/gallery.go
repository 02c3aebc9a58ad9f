// Package gallery issues signed upload URLs for owner gallery images.
package gallery

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/utils"
	"fitness-directory/backend/internal/validate"
)

const (
	DefaultExpiry = 15 * time.Minute
	MaxExpiry     = time.Hour
	MaxBatch      = 10
)

// SignFunc signs a URL payload on behalf of the service account.
type SignFunc func(ctx context.Context, payload []byte) ([]byte, error)

// IAMSigner signs through the IAM credentials API, so no private key is
// needed on the server.
func IAMSigner(client *credentials.IamCredentialsClient, serviceAccount string) SignFunc {
	name := fmt.Sprintf("projects/-/serviceAccounts/%s", serviceAccount)
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		resp, err := client.SignBlob(ctx, &credentialspb.SignBlobRequest{Name: name, Payload: payload})
		if err != nil {
			return nil, err
		}
		return resp.SignedBlob, nil
	}
}

type Request struct {
	FileName       string `json:"fileName" validate:"required,max=200"`
	ContentType    string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp"`
	ExpiresSeconds int64  `json:"expiresSeconds,omitempty" validate:"gte=0"`
}

type SignedURL struct {
	URL        string `json:"url"`
	Method     string `json:"method"`
	ObjectPath string `json:"objectPath"`
	ExpiresAt  int64  `json:"expiresAt"`
}

type Service struct {
	bucket   string
	accessID string
	sign     SignFunc
	log      *zap.Logger
	now      func() time.Time
}

func NewService(bucket, serviceAccount string, sign SignFunc, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{bucket: bucket, accessID: serviceAccount, sign: sign, log: log, now: time.Now}
}

// ObjectPath is where an uploaded gallery image of ref is stored.
func ObjectPath(ref owner.Ref, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := utils.Slugify(strings.TrimSuffix(path.Base(fileName), path.Ext(fileName)))
	if base == "" {
		base = "image"
	}
	return path.Join("owners", string(ref.Kind), ref.ID, "gallery", uuid.NewString()+"-"+base+ext)
}

func (s *Service) SignedUploadURL(ctx context.Context, ref owner.Ref, req Request) (*SignedURL, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if s.bucket == "" || s.accessID == "" || s.sign == nil {
		return nil, apperr.BadRequest("signed uploads are not configured")
	}

	ttl := time.Duration(req.ExpiresSeconds) * time.Second
	if ttl <= 0 || ttl > MaxExpiry {
		ttl = DefaultExpiry
	}
	exp := s.now().Add(ttl)
	object := ObjectPath(ref, req.FileName)

	url, err := storage.SignedURL(s.bucket, object, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "PUT",
		Expires:        exp,
		ContentType:    req.ContentType,
		GoogleAccessID: s.accessID,
		SignBytes: func(b []byte) ([]byte, error) {
			return s.sign(ctx, b)
		},
	})
	if err != nil {
		s.log.Error("sign upload url", zap.String("object", object), zap.Error(err))
		return nil, fmt.Errorf("failed to sign url (check service account + permissions): %w", err)
	}
	return &SignedURL{URL: url, Method: "PUT", ObjectPath: object, ExpiresAt: exp.Unix()}, nil
}

// SignedUploadURLs signs every request or fails as a whole.
func (s *Service) SignedUploadURLs(ctx context.Context, ref owner.Ref, reqs []Request) ([]SignedURL, error) {
	if len(reqs) == 0 || len(reqs) > MaxBatch {
		return nil, apperr.Invalid("items")
	}
	if err := validate.Records(reqs); err != nil {
		return nil, err
	}
	out := make([]SignedURL, 0, len(reqs))
	for _, r := range reqs {
		u, err := s.SignedUploadURL(ctx, ref, r)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}
