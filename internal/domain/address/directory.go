package address

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/domain/subcollection"
)

var mutable = []string{
	"street", "number", "complement", "neighborhood", "city", "state",
	"zipCode", "country", "description", "main", "latitude", "longitude", "geohash",
}

// Directory writes both copies of an address in the same batch so the
// shared content fields stay equal.
type Directory struct {
	db       docstore.Store
	embedded *subcollection.Store[Address, *Address]
	log      *zap.Logger

	// preconditions guards event list rewrites with the copy's update time.
	preconditions bool
}

func NewDirectory(db docstore.Store, preconditions bool, log *zap.Logger) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{
		db:            db,
		embedded:      subcollection.New[Address, *Address](db, Collection, mutable, log),
		log:           log,
		preconditions: preconditions,
	}
}

func (d *Directory) Preconditions() bool { return d.preconditions }

// Find returns the owner's embedded addresses.
func (d *Directory) Find(ctx context.Context, ref owner.Ref) ([]Address, error) {
	return d.embedded.Find(ctx, ref)
}

// Prepare normalizes, allocates fresh ids for and validates new addresses.
func (d *Directory) Prepare(ref owner.Ref, in []Address) ([]Address, error) {
	out := append([]Address(nil), in...)
	for i := range out {
		out[i].Normalize()
	}
	d.embedded.Allocate(ref, out)
	if err := d.embedded.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// StageCreate adds both copies of each prepared address to b.
func (d *Directory) StageCreate(b *docstore.Batch, ref owner.Ref, addrs []Address) {
	d.embedded.StageCreate(b, ref, addrs)
	for i := range addrs {
		b.Create(DirectoryCollection, addrs[i].ID, addrs[i].DirectoryFields(ref))
	}
}

func (d *Directory) Create(ctx context.Context, ref owner.Ref, in []Address) ([]Address, error) {
	if len(in) == 0 {
		return []Address{}, nil
	}
	out, err := d.Prepare(ref, in)
	if err != nil {
		return nil, err
	}

	b := docstore.NewBatch()
	d.StageCreate(b, ref, out)
	if err := subcollection.Commit(ctx, d.db, b, d.log); err != nil {
		return nil, err
	}
	d.log.Info("addresses created", zap.Stringer("owner", ref), zap.Int("count", len(out)))
	return out, nil
}

// Edit writes the content fields to both copies. The back-reference and the
// event list are left alone.
func (d *Directory) Edit(ctx context.Context, ref owner.Ref, in []Address) ([]Address, error) {
	if len(in) == 0 {
		return []Address{}, nil
	}
	out := append([]Address(nil), in...)
	for i := range out {
		out[i].Normalize()
	}
	if err := d.embedded.ValidateIDs(out); err != nil {
		return nil, err
	}
	if err := d.embedded.Validate(out); err != nil {
		return nil, err
	}

	b := docstore.NewBatch()
	path := d.embedded.Path(ref)
	for i := range out {
		fields := d.embedded.EditFields(&out[i])
		b.Update(path, out[i].ID, fields)
		b.Update(DirectoryCollection, out[i].ID, fields)
	}
	if err := subcollection.Commit(ctx, d.db, b, d.log); err != nil {
		return nil, err
	}
	return out, nil
}

// StageDelete adds the removal of both copies of each id to b.
func (d *Directory) StageDelete(b *docstore.Batch, ref owner.Ref, ids []string) {
	d.embedded.StageDelete(b, ref, ids)
	for _, id := range ids {
		b.Delete(DirectoryCollection, id)
	}
}

func (d *Directory) Delete(ctx context.Context, ref owner.Ref, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	b := docstore.NewBatch()
	d.StageDelete(b, ref, ids)
	return subcollection.Commit(ctx, d.db, b, d.log)
}

// FindDirectoryByIDs reads directory copies, chunking ids to the store's
// per-read limit. Absent ids are skipped.
func (d *Directory) FindDirectoryByIDs(ctx context.Context, ids []string) ([]DirectoryAddress, error) {
	ids = dedupe(ids)
	out := make([]DirectoryAddress, 0, len(ids))
	for start := 0; start < len(ids); start += docstore.MaxIDsPerRead {
		end := min(start+docstore.MaxIDsPerRead, len(ids))
		docs, err := d.db.GetByIDs(ctx, DirectoryCollection, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			var da DirectoryAddress
			if err := doc.DataTo(&da); err != nil {
				return nil, fmt.Errorf("failed to parse %s/%s: %w", DirectoryCollection, doc.ID, err)
			}
			da.ID = doc.ID
			da.UpdateTime = doc.UpdateTime
			out = append(out, da)
		}
	}
	return out, nil
}

// StageEvents rewrites the event list of a freshly read directory copy.
func (d *Directory) StageEvents(b *docstore.Batch, da DirectoryAddress, events []LinkedEvent) {
	fields := map[string]any{"events": EventFields(events)}
	if d.preconditions {
		b.UpdateIfUnchanged(DirectoryCollection, da.ID, fields, da.UpdateTime)
		return
	}
	b.Update(DirectoryCollection, da.ID, fields)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
