package docstore

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements Store on Cloud Firestore. Collections are slash
// separated paths such as "gyms/{id}/addresses".
type Firestore struct {
	fs *firestore.Client
}

func NewFirestore(fs *firestore.Client) *Firestore {
	return &Firestore{fs: fs}
}

func (f *Firestore) NewID(collection string) string {
	return f.fs.Collection(collection).NewDoc().ID
}

func (f *Firestore) Get(ctx context.Context, collection, id string) (*Doc, error) {
	snap, err := f.fs.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoDocument, collection, id)
	}
	if err != nil {
		return nil, err
	}
	return toDoc(snap), nil
}

func (f *Firestore) GetByIDs(ctx context.Context, collection string, ids []string) ([]Doc, error) {
	if len(ids) > MaxIDsPerRead {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyIDs, len(ids), MaxIDsPerRead)
	}
	if len(ids) == 0 {
		return []Doc{}, nil
	}

	col := f.fs.Collection(collection)
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, col.Doc(id))
	}

	snaps, err := f.fs.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}

	out := make([]Doc, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		out = append(out, *toDoc(snap))
	}
	return out, nil
}

func (f *Firestore) List(ctx context.Context, collection string) ([]Doc, error) {
	iter := f.fs.Collection(collection).Documents(ctx)
	defer iter.Stop()

	out := []Doc{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		out = append(out, *toDoc(snap))
	}
	return out, nil
}

func (f *Firestore) Commit(ctx context.Context, b *Batch) error {
	if b == nil || b.Len() == 0 {
		return nil
	}

	wb := f.fs.Batch()
	for _, op := range b.Ops() {
		ref := f.fs.Collection(op.Collection).Doc(op.ID)
		switch op.Kind {
		case OpCreate:
			wb.Create(ref, op.Fields)
		case OpSet:
			wb.Set(ref, op.Fields)
		case OpUpdate:
			var preconds []firestore.Precondition
			if !op.IfUpdatedAt.IsZero() {
				preconds = append(preconds, firestore.LastUpdateTime(op.IfUpdatedAt))
			}
			wb.Update(ref, toUpdates(op.Fields), preconds...)
		case OpDelete:
			wb.Delete(ref)
		default:
			return fmt.Errorf("unsupported batch op %d", op.Kind)
		}
	}

	_, err := wb.Commit(ctx)
	if status.Code(err) == codes.FailedPrecondition {
		return fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	return err
}

func toDoc(snap *firestore.DocumentSnapshot) *Doc {
	return &Doc{ID: snap.Ref.ID, Data: snap.Data(), UpdateTime: snap.UpdateTime}
}

// toUpdates turns a field map into top-level field updates, sorted so the
// write order is stable.
func toUpdates(fields map[string]any) []firestore.Update {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		out = append(out, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: fields[k]})
	}
	return out
}
