package event

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/address"
	"fitness-directory/backend/internal/domain/contact"
	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/domain/subcollection"
)

var mutable = []string{"title", "description", "startAt", "endAt", "address", "contact"}

// Sweeper removes addresses an owner no longer needs. It runs after an event
// edit has been committed.
type Sweeper interface {
	Sweep(ctx context.Context, ref owner.Ref) ([]string, error)
}

// Coordinator writes events together with the event lists on the directory
// copies of the addresses they reference, one batch per operation.
type Coordinator struct {
	db       docstore.Store
	events   *subcollection.Store[Event, *Event]
	dir      *address.Directory
	contacts *contact.Store
	sweeper  Sweeper
	log      *zap.Logger
}

func NewCoordinator(db docstore.Store, dir *address.Directory, contacts *contact.Store, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		db:       db,
		events:   subcollection.New[Event, *Event](db, Collection, mutable, log),
		dir:      dir,
		contacts: contacts,
		log:      log,
	}
}

// SetSweeper installs the post-edit address sweep.
func (c *Coordinator) SetSweeper(s Sweeper) { c.sweeper = s }

func (c *Coordinator) Find(ctx context.Context, ref owner.Ref) ([]Event, error) {
	return c.events.Find(ctx, ref)
}

func (c *Coordinator) Create(ctx context.Context, ref owner.Ref, in []Input) ([]Event, error) {
	if err := hostsEvents(ref); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return []Event{}, nil
	}
	if err := c.events.Validate(drafts(in)); err != nil {
		return nil, err
	}

	known, err := c.known(ctx, ref)
	if err != nil {
		return nil, err
	}
	evs, err := resolveAll(in, known)
	if err != nil {
		return nil, err
	}
	c.events.Allocate(ref, evs)

	delta := newDelta()
	for i := range evs {
		if id := evs[i].AddressID(); id != "" {
			delta.add(id, evs[i].Linked())
		}
	}

	b := docstore.NewBatch()
	c.events.StageCreate(b, ref, evs)
	if err := c.stageDelta(ctx, b, delta); err != nil {
		return nil, err
	}
	if err := subcollection.Commit(ctx, c.db, b, c.log); err != nil {
		return nil, err
	}
	c.log.Info("events created", zap.Stringer("owner", ref), zap.Int("count", len(evs)), zap.Int("addresses", delta.len()))
	return evs, nil
}

// Edit moves events between addresses as their references change:
//
//	old   new        old copy   new copy
//	none  none       -          -
//	none  some       -          append
//	some  none       remove     -
//	some  same       -          -
//	some  other      remove     append
//
// After the commit the sweeper runs on the owner's current state. A sweep
// failure is logged and does not fail the edit.
func (c *Coordinator) Edit(ctx context.Context, ref owner.Ref, in []Input) ([]Event, error) {
	if err := hostsEvents(ref); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return []Event{}, nil
	}
	if err := checkIDs(in); err != nil {
		return nil, err
	}
	if err := c.events.Validate(drafts(in)); err != nil {
		return nil, err
	}

	current, err := c.events.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	old := make(map[string]Event, len(current))
	for _, e := range current {
		old[e.ID] = e
	}

	known, err := c.known(ctx, ref)
	if err != nil {
		return nil, err
	}
	evs, err := resolveAll(in, known)
	if err != nil {
		return nil, err
	}
	for i := range evs {
		if _, ok := old[evs[i].ID]; !ok {
			return nil, apperr.NotFound("event %q", evs[i].ID)
		}
	}

	delta := newDelta()
	for i := range evs {
		prev := old[evs[i].ID]
		from, to := prev.AddressID(), evs[i].AddressID()
		if from == to {
			continue
		}
		if from != "" {
			delta.remove(from, evs[i].ID)
		}
		if to != "" {
			delta.add(to, evs[i].Linked())
		}
	}

	b := docstore.NewBatch()
	c.events.StageEdit(b, ref, evs)
	if err := c.stageDelta(ctx, b, delta); err != nil {
		return nil, err
	}
	if err := subcollection.Commit(ctx, c.db, b, c.log); err != nil {
		return nil, err
	}

	c.sweep(ctx, ref)
	return evs, nil
}

// Delete removes events and unlinks them from every directory address of the
// owner that lists them.
func (c *Coordinator) Delete(ctx context.Context, ref owner.Ref, ids []string) error {
	if err := hostsEvents(ref); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	gone := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !gone[id] {
			unique = append(unique, id)
		}
		gone[id] = true
	}

	addrs, err := c.dir.Find(ctx, ref)
	if err != nil {
		return err
	}
	addrIDs := make([]string, 0, len(addrs))
	for _, a := range addrs {
		addrIDs = append(addrIDs, a.ID)
	}
	dirs, err := c.dir.FindDirectoryByIDs(ctx, addrIDs)
	if err != nil {
		return err
	}

	b := docstore.NewBatch()
	c.events.StageDelete(b, ref, unique)
	unlinked := 0
	for _, da := range dirs {
		next := address.WithoutEvents(da.Events, gone)
		if len(next) == len(da.Events) {
			continue
		}
		c.dir.StageEvents(b, da, next)
		unlinked++
	}
	if err := subcollection.Commit(ctx, c.db, b, c.log); err != nil {
		return err
	}
	c.log.Info("events deleted", zap.Stringer("owner", ref), zap.Int("count", len(unique)), zap.Int("addresses", unlinked))
	return nil
}

func (c *Coordinator) sweep(ctx context.Context, ref owner.Ref) {
	if c.sweeper == nil {
		return
	}
	removed, err := c.sweeper.Sweep(ctx, ref)
	if err != nil {
		c.log.Warn("address sweep failed", zap.Stringer("owner", ref), zap.Error(err))
		return
	}
	if len(removed) > 0 {
		c.log.Info("unused addresses removed", zap.Stringer("owner", ref), zap.Strings("addresses", removed))
	}
}

func (c *Coordinator) known(ctx context.Context, ref owner.Ref) (Known, error) {
	addrs, err := c.dir.Find(ctx, ref)
	if err != nil {
		return Known{}, err
	}
	contacts, err := c.contacts.Find(ctx, ref)
	if err != nil {
		return Known{}, err
	}
	return NewKnown(addrs, contacts), nil
}

// stageDelta reads the affected directory copies fresh and stages their new
// event lists. Removals apply before appends.
func (c *Coordinator) stageDelta(ctx context.Context, b *docstore.Batch, d *delta) error {
	ids := d.addressIDs()
	if len(ids) == 0 {
		return nil
	}
	dirs, err := c.dir.FindDirectoryByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]address.DirectoryAddress, len(dirs))
	for _, da := range dirs {
		byID[da.ID] = da
	}

	for _, id := range ids {
		da, ok := byID[id]
		if !ok {
			if len(d.appends[id]) > 0 {
				return apperr.NotFound("directory address %q", id)
			}
			c.log.Warn("directory address missing, skipping unlink", zap.String("address", id))
			continue
		}
		next := address.WithoutEvents(da.Events, d.removals[id])
		for _, ev := range d.appends[id] {
			next = address.WithEvent(next, ev)
		}
		c.dir.StageEvents(b, da, next)
	}
	return nil
}

type delta struct {
	removals map[string]map[string]bool
	appends  map[string][]address.LinkedEvent
}

func newDelta() *delta {
	return &delta{
		removals: map[string]map[string]bool{},
		appends:  map[string][]address.LinkedEvent{},
	}
}

func (d *delta) remove(addressID, eventID string) {
	if d.removals[addressID] == nil {
		d.removals[addressID] = map[string]bool{}
	}
	d.removals[addressID][eventID] = true
}

func (d *delta) add(addressID string, ev address.LinkedEvent) {
	d.appends[addressID] = append(d.appends[addressID], ev)
}

func (d *delta) addressIDs() []string {
	seen := map[string]bool{}
	for id := range d.removals {
		seen[id] = true
	}
	for id := range d.appends {
		seen[id] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (d *delta) len() int { return len(d.addressIDs()) }

// checkIDs requires every entry of an edit to name a distinct event.
func checkIDs(in []Input) error {
	var fields []string
	seen := make(map[string]bool, len(in))
	for i := range in {
		id := strings.TrimSpace(in[i].ID)
		if id == "" || seen[id] {
			fields = append(fields, fmt.Sprintf("[%d].id", i))
		}
		seen[id] = true
	}
	if len(fields) > 0 {
		return apperr.Invalid(fields...)
	}
	return nil
}

func drafts(in []Input) []Event {
	out := make([]Event, len(in))
	for i := range in {
		out[i] = in[i].Draft()
	}
	return out
}

func resolveAll(in []Input, k Known) ([]Event, error) {
	out := make([]Event, 0, len(in))
	for _, i := range in {
		ev, err := i.Resolve(k)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func hostsEvents(ref owner.Ref) error {
	if !ref.Kind.HostsEvents() {
		return apperr.BadRequest("%s owners do not publish events", ref.Kind)
	}
	return nil
}
