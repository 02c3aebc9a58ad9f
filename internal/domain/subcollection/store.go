// Package subcollection provides atomic CRUD over a homogeneous set of
// records nested under one owner document.
package subcollection

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/validate"
)

// Record is implemented by pointer types of sub-collection records.
type Record[T any] interface {
	*T
	GetID() string
	SetID(id string)
	// Fields is the full stored projection of the record, id included.
	Fields() map[string]any
}

// Store is generic over the record type. Writes are last-write-wins: nothing
// checks whether a document changed since it was read.
type Store[T any, P Record[T]] struct {
	db      docstore.Store
	name    string
	mutable []string
	log     *zap.Logger
}

// New returns a store for the sub-collection name. Edits only ever write the
// fields listed in mutable.
func New[T any, P Record[T]](db docstore.Store, name string, mutable []string, log *zap.Logger) *Store[T, P] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store[T, P]{db: db, name: name, mutable: mutable, log: log}
}

func (s *Store[T, P]) Name() string { return s.name }

// Path is the sub-collection path under ref.
func (s *Store[T, P]) Path(ref owner.Ref) string { return ref.Sub(s.name) }

// Find returns every record under ref; an absent owner yields an empty list.
func (s *Store[T, P]) Find(ctx context.Context, ref owner.Ref) ([]T, error) {
	docs, err := s.db.List(ctx, s.Path(ref))
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var rec T
		if err := d.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to parse %s/%s: %w", s.Path(ref), d.ID, err)
		}
		P(&rec).SetID(d.ID)
		out = append(out, rec)
	}
	return out, nil
}

// Allocate assigns a fresh id to every record, replacing any client id.
func (s *Store[T, P]) Allocate(ref owner.Ref, recs []T) {
	for i := range recs {
		P(&recs[i]).SetID(s.db.NewID(s.Path(ref)))
	}
}

func (s *Store[T, P]) Validate(recs []T) error {
	return validate.Records(recs)
}

// ValidateIDs requires every record to carry an id.
func (s *Store[T, P]) ValidateIDs(recs []T) error {
	var fields []string
	for i := range recs {
		if P(&recs[i]).GetID() == "" {
			fields = append(fields, fmt.Sprintf("[%d].id", i))
		}
	}
	if len(fields) > 0 {
		return apperr.Invalid(fields...)
	}
	return nil
}

// EditFields projects rec onto the mutable field list.
func (s *Store[T, P]) EditFields(rec *T) map[string]any {
	all := P(rec).Fields()
	out := make(map[string]any, len(s.mutable))
	for _, f := range s.mutable {
		if v, ok := all[f]; ok {
			out[f] = v
		}
	}
	return out
}

func (s *Store[T, P]) StageCreate(b *docstore.Batch, ref owner.Ref, recs []T) {
	path := s.Path(ref)
	for i := range recs {
		p := P(&recs[i])
		b.Create(path, p.GetID(), p.Fields())
	}
}

func (s *Store[T, P]) StageEdit(b *docstore.Batch, ref owner.Ref, recs []T) {
	path := s.Path(ref)
	for i := range recs {
		b.Update(path, P(&recs[i]).GetID(), s.EditFields(&recs[i]))
	}
}

func (s *Store[T, P]) StageDelete(b *docstore.Batch, ref owner.Ref, ids []string) {
	path := s.Path(ref)
	for _, id := range ids {
		b.Delete(path, id)
	}
}

// Create allocates ids, validates and commits all records in one batch.
func (s *Store[T, P]) Create(ctx context.Context, ref owner.Ref, recs []T) ([]T, error) {
	out := append([]T(nil), recs...)
	if len(out) == 0 {
		return []T{}, nil
	}
	s.Allocate(ref, out)
	if err := s.Validate(out); err != nil {
		return nil, err
	}

	b := docstore.NewBatch()
	s.StageCreate(b, ref, out)
	if err := Commit(ctx, s.db, b, s.log); err != nil {
		return nil, err
	}
	return out, nil
}

// Edit writes the mutable fields of records that already carry an id.
func (s *Store[T, P]) Edit(ctx context.Context, ref owner.Ref, recs []T) ([]T, error) {
	out := append([]T(nil), recs...)
	if len(out) == 0 {
		return []T{}, nil
	}
	if err := s.ValidateIDs(out); err != nil {
		return nil, err
	}
	if err := s.Validate(out); err != nil {
		return nil, err
	}

	b := docstore.NewBatch()
	s.StageEdit(b, ref, out)
	if err := Commit(ctx, s.db, b, s.log); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store[T, P]) Delete(ctx context.Context, ref owner.Ref, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	b := docstore.NewBatch()
	s.StageDelete(b, ref, ids)
	return Commit(ctx, s.db, b, s.log)
}

// Commit commits b and maps any failure to a conflict error carrying the
// store's diagnostic text.
func Commit(ctx context.Context, db docstore.Store, b *docstore.Batch, log *zap.Logger) error {
	if b.Len() == 0 {
		return nil
	}
	if err := db.Commit(ctx, b); err != nil {
		log.Warn("batch commit failed", zap.Int("ops", b.Len()), zap.Error(err))
		if errors.Is(err, docstore.ErrPrecondition) {
			return apperr.StaleWrite(err)
		}
		return apperr.Conflict(err)
	}
	log.Debug("batch committed", zap.Any("ops", b.Counts()))
	return nil
}
