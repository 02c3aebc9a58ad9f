// Package event holds owner events and keeps the event lists on directory
// addresses in step with them.
package event

import (
	"strings"
	"time"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/domain/address"
	"fitness-directory/backend/internal/domain/contact"
)

const Collection = "events"

// Event embeds the address and contact it references by value. An event
// without an address is online.
type Event struct {
	ID          string           `json:"id" firestore:"id"`
	Title       string           `json:"title" firestore:"title" validate:"required,max=200"`
	Description string           `json:"description,omitempty" firestore:"description" validate:"max=2000"`
	StartAt     time.Time        `json:"startAt" firestore:"startAt" validate:"required"`
	EndAt       time.Time        `json:"endAt" firestore:"endAt" validate:"required,gtfield=StartAt"`
	Address     *address.Address `json:"address,omitempty" firestore:"address"`
	Contact     *contact.Contact `json:"contact,omitempty" firestore:"contact"`
}

func (e *Event) GetID() string   { return e.ID }
func (e *Event) SetID(id string) { e.ID = id }

func (e *Event) Fields() map[string]any {
	f := map[string]any{
		"id":          e.ID,
		"title":       e.Title,
		"description": e.Description,
		"startAt":     e.StartAt,
		"endAt":       e.EndAt,
		"address":     nil,
		"contact":     nil,
	}
	if e.Address != nil {
		f["address"] = e.Address.Fields()
	}
	if e.Contact != nil {
		f["contact"] = e.Contact.Fields()
	}
	return f
}

// AddressID is the id of the referenced address, or "" for online events.
func (e *Event) AddressID() string {
	if e.Address == nil {
		return ""
	}
	return e.Address.ID
}

func (e *Event) Online() bool { return e.Address == nil }

// Linked is the value stored on the directory copy of the event's address.
func (e *Event) Linked() address.LinkedEvent {
	return address.LinkedEvent{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		Contact:     e.Contact,
	}
}

// Input is an event as sent by a client, referencing address and contact by id.
type Input struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	AddressID   string    `json:"addressId,omitempty"`
	ContactID   string    `json:"contactId,omitempty"`
}

// Known is what an owner currently has that events may reference.
type Known struct {
	Addresses map[string]address.Address
	Contacts  map[string]contact.Contact
}

func NewKnown(addrs []address.Address, contacts []contact.Contact) Known {
	k := Known{
		Addresses: make(map[string]address.Address, len(addrs)),
		Contacts:  contact.Index(contacts),
	}
	for _, a := range addrs {
		k.Addresses[a.ID] = a
	}
	return k
}

// Draft is the event without its references.
func (in Input) Draft() Event {
	return Event{
		ID:          strings.TrimSpace(in.ID),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartAt:     in.StartAt.UTC(),
		EndAt:       in.EndAt.UTC(),
	}
}

// Resolve replaces the input's references with the owner's current records.
func (in Input) Resolve(k Known) (Event, error) {
	ev := in.Draft()
	if id := strings.TrimSpace(in.AddressID); id != "" {
		a, ok := k.Addresses[id]
		if !ok {
			return Event{}, apperr.NotFound("address %q", id)
		}
		ev.Address = &a
	}
	if id := strings.TrimSpace(in.ContactID); id != "" {
		c, ok := k.Contacts[id]
		if !ok {
			return Event{}, apperr.NotFound("contact %q", id)
		}
		ev.Contact = &c
	}
	return ev, nil
}
