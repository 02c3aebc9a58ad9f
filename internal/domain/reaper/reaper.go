// Package reaper deletes addresses an owner no longer needs.
package reaper

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/domain/profile"
)

type AggregateReader interface {
	Get(ctx context.Context, ref owner.Ref) (*profile.Aggregate, error)
}

type Deleter interface {
	Delete(ctx context.Context, ref owner.Ref, ids []string) error
}

type Reaper struct {
	owners AggregateReader
	dir    Deleter
	log    *zap.Logger
}

func New(owners AggregateReader, dir Deleter, log *zap.Logger) *Reaper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reaper{owners: owners, dir: dir, log: log}
}

// Unused returns the ids of addresses with no description that are not the
// main address and that no event of the owner references.
func Unused(agg *profile.Aggregate) []string {
	referenced := make(map[string]bool, len(agg.Events))
	for i := range agg.Events {
		if id := agg.Events[i].AddressID(); id != "" {
			referenced[id] = true
		}
	}

	var out []string
	for i := range agg.Addresses {
		a := &agg.Addresses[i]
		if a.IsBlank() && !a.Main && !referenced[a.ID] {
			out = append(out, a.ID)
		}
	}
	sort.Strings(out)
	return out
}

// Sweep reads the owner fresh and deletes its unused addresses, both copies,
// in one batch. Nothing is written when no address is unused.
func (r *Reaper) Sweep(ctx context.Context, ref owner.Ref) ([]string, error) {
	agg, err := r.owners.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	ids := Unused(agg)
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.dir.Delete(ctx, ref, ids); err != nil {
		return nil, err
	}
	r.log.Info("reaped addresses", zap.Stringer("owner", ref), zap.Strings("addresses", ids))
	return ids, nil
}
