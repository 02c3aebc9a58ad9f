package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/address"
	"fitness-directory/backend/internal/domain/contact"
	"fitness-directory/backend/internal/domain/event"
	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/domain/plan"
	"fitness-directory/backend/internal/domain/subcollection"
	"fitness-directory/backend/internal/utils"
	"fitness-directory/backend/internal/validate"
)

type Service struct {
	db       docstore.Store
	dir      *address.Directory
	contacts *contact.Store
	plans    *plan.Store
	events   *event.Coordinator
	log      *zap.Logger
	now      func() time.Time
}

func NewService(db docstore.Store, dir *address.Directory, contacts *contact.Store, plans *plan.Store, events *event.Coordinator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:       db,
		dir:      dir,
		contacts: contacts,
		plans:    plans,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create writes the owner document with its addresses (both copies), contacts
// and plans in a single batch. It fails with a conflict if the owner exists.
func (s *Service) Create(ctx context.Context, ref owner.Ref, in CreateInput) (*Aggregate, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	addrs, err := s.dir.Prepare(ref, in.Addresses)
	if err != nil {
		return nil, prefixed("addresses", err)
	}
	contacts := append([]contact.Contact(nil), in.Contacts...)
	s.contacts.Allocate(ref, contacts)
	if err := s.contacts.Validate(contacts); err != nil {
		return nil, prefixed("contacts", err)
	}
	plans := append([]plan.Plan(nil), in.Plans...)
	s.plans.Allocate(ref, plans)
	if err := s.plans.Validate(plans); err != nil {
		return nil, prefixed("subscriptionPlans", err)
	}

	now := s.now()
	o := Owner{
		ID:        ref.ID,
		Kind:      ref.Kind,
		Name:      in.Name,
		Biography: utils.TrimMax(in.Biography, 4000),
		Gallery:   nonNil(in.Gallery),
		Tags:      utils.NormalizeTags(in.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.SearchTokens = utils.SearchTokens(append([]string{o.Name}, o.Tags...)...)

	b := docstore.NewBatch()
	b.Create(ref.Collection(), ref.ID, o.Fields())
	s.dir.StageCreate(b, ref, addrs)
	s.contacts.StageCreate(b, ref, contacts)
	s.plans.StageCreate(b, ref, plans)
	if err := subcollection.Commit(ctx, s.db, b, s.log); err != nil {
		return nil, err
	}

	s.log.Info("owner created",
		zap.Stringer("owner", ref),
		zap.Int("addresses", len(addrs)),
		zap.Int("contacts", len(contacts)),
		zap.Int("plans", len(plans)),
	)
	return &Aggregate{
		Owner:     o,
		Addresses: nonNil(addrs),
		Contacts:  nonNil(contacts),
		Events:    []event.Event{},
		Plans:     nonNil(plans),
	}, nil
}

// Get reads the owner and all of its sub-collections.
func (s *Service) Get(ctx context.Context, ref owner.Ref) (*Aggregate, error) {
	o, err := s.owner(ctx, ref)
	if err != nil {
		return nil, err
	}

	agg := &Aggregate{Owner: *o, Events: []event.Event{}}
	if agg.Addresses, err = s.dir.Find(ctx, ref); err != nil {
		return nil, err
	}
	if agg.Contacts, err = s.contacts.Find(ctx, ref); err != nil {
		return nil, err
	}
	if agg.Plans, err = s.plans.Find(ctx, ref); err != nil {
		return nil, err
	}
	if ref.Kind.HostsEvents() {
		if agg.Events, err = s.events.Find(ctx, ref); err != nil {
			return nil, err
		}
	}
	return agg, nil
}

// Edit updates the owner's name, biography, gallery and tags.
func (s *Service) Edit(ctx context.Context, ref owner.Ref, in EditInput) (*Owner, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	o, err := s.owner(ctx, ref)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Invalid("name")
		}
		o.Name = name
		fields["name"] = name
	}
	if in.Biography != nil {
		o.Biography = utils.TrimMax(*in.Biography, 4000)
		fields["biography"] = o.Biography
	}
	if in.Gallery != nil {
		o.Gallery = nonNil(*in.Gallery)
		fields["gallery"] = o.Gallery
	}
	if in.Tags != nil {
		o.Tags = utils.NormalizeTags(*in.Tags)
		fields["tags"] = o.Tags
	}
	if len(fields) == 0 {
		return o, nil
	}
	if in.Name != nil || in.Tags != nil {
		o.SearchTokens = utils.SearchTokens(append([]string{o.Name}, o.Tags...)...)
		fields["searchTokens"] = o.SearchTokens
	}
	o.UpdatedAt = s.now()
	fields["updatedAt"] = o.UpdatedAt

	b := docstore.NewBatch().Update(ref.Collection(), ref.ID, fields)
	if err := subcollection.Commit(ctx, s.db, b, s.log); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) owner(ctx context.Context, ref owner.Ref) (*Owner, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	doc, err := s.db.Get(ctx, ref.Collection(), ref.ID)
	if errors.Is(err, docstore.ErrNoDocument) {
		return nil, apperr.NotFound("%s", ref)
	}
	if err != nil {
		return nil, err
	}
	var o Owner
	if err := doc.DataTo(&o); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ref, err)
	}
	o.ID, o.Kind = ref.ID, ref.Kind
	o.Gallery, o.Tags = nonNil(o.Gallery), nonNil(o.Tags)
	return &o, nil
}

// prefixed renames "[0].street" to "addresses[0].street".
func prefixed(name string, err error) error {
	fields := apperr.Fields(err)
	if fields == nil {
		return err
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = name + f
	}
	return apperr.Invalid(out...)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
