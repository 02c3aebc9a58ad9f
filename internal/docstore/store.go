// Package docstore is the document-store capability the directory services
// are written against: id allocation, single and bounded bulk reads, listing a
// collection, and atomic multi-document batch commits.
package docstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// MaxIDsPerRead caps the ids accepted by a single GetByIDs call.
const MaxIDsPerRead = 30

var (
	ErrNoDocument   = errors.New("document not found")
	ErrTooManyIDs   = errors.New("too many ids for one read")
	ErrPrecondition = errors.New("precondition failed")
)

// Doc is a stored document. UpdateTime is the store's last write time and is
// what conditional updates compare against.
type Doc struct {
	ID         string
	Data       map[string]any
	UpdateTime time.Time
}

// DataTo decodes the document into out, honoring `firestore` struct tags.
func (d Doc) DataTo(out any) error {
	return Decode(d.Data, out)
}

type Store interface {
	// NewID reserves a fresh document id without writing anything.
	NewID(collection string) string
	// Get returns ErrNoDocument when the document is absent.
	Get(ctx context.Context, collection, id string) (*Doc, error)
	// GetByIDs skips absent documents. At most MaxIDsPerRead ids per call.
	GetByIDs(ctx context.Context, collection string, ids []string) ([]Doc, error)
	List(ctx context.Context, collection string) ([]Doc, error)
	// Commit applies every operation of b or none of them. A failed
	// conditional update is reported as ErrPrecondition.
	Commit(ctx context.Context, b *Batch) error
}

// Path joins collection and document segments into a slash separated path.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "firestore",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
