// Package address keeps every owner address in two places: embedded under its
// owner and mirrored into the flat directory collection.
package address

import (
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"

	"fitness-directory/backend/internal/domain/contact"
	"fitness-directory/backend/internal/domain/owner"
)

const (
	// Collection is the embedded sub-collection name under an owner.
	Collection = "addresses"
	// DirectoryCollection is the flat top-level mirror.
	DirectoryCollection = "addresses"

	GeohashPrecision = 10
)

var world = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

type Address struct {
	ID           string `json:"id" firestore:"id"`
	Street       string `json:"street,omitempty" firestore:"street" validate:"required_without=Description,max=200"`
	Number       string `json:"number,omitempty" firestore:"number" validate:"max=20"`
	Complement   string `json:"complement,omitempty" firestore:"complement" validate:"max=120"`
	Neighborhood string `json:"neighborhood,omitempty" firestore:"neighborhood" validate:"max=120"`
	City         string `json:"city,omitempty" firestore:"city" validate:"max=120"`
	State        string `json:"state,omitempty" firestore:"state" validate:"max=60"`
	ZipCode      string `json:"zipCode,omitempty" firestore:"zipCode" validate:"max=20"`
	Country      string `json:"country,omitempty" firestore:"country" validate:"max=60"`

	// Description is the free-text form of the address. Blank descriptions
	// make a non-main address eligible for reaping once no event uses it.
	Description string `json:"description,omitempty" firestore:"description" validate:"max=500"`
	Main        bool   `json:"main" firestore:"main"`

	Latitude  float64 `json:"latitude" firestore:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" firestore:"longitude" validate:"gte=-180,lte=180"`
	Geohash   string  `json:"geohash,omitempty" firestore:"geohash"`
}

func (a *Address) GetID() string   { return a.ID }
func (a *Address) SetID(id string) { a.ID = id }

func (a *Address) Point() orb.Point { return orb.Point{a.Longitude, a.Latitude} }

// Normalize trims text fields and recomputes the geohash from the coordinates.
func (a *Address) Normalize() {
	for _, f := range []*string{&a.Street, &a.Number, &a.Complement, &a.Neighborhood, &a.City, &a.State, &a.ZipCode, &a.Country, &a.Description} {
		*f = strings.TrimSpace(*f)
	}
	a.Geohash = ""
	if p := a.Point(); world.Contains(p) {
		a.Geohash = geohash.EncodeWithPrecision(p.Lat(), p.Lon(), GeohashPrecision)
	}
}

// ContentFields are the fields shared by both copies, id excluded. Edits write
// exactly this map to both documents.
func (a *Address) ContentFields() map[string]any {
	return map[string]any{
		"street":       a.Street,
		"number":       a.Number,
		"complement":   a.Complement,
		"neighborhood": a.Neighborhood,
		"city":         a.City,
		"state":        a.State,
		"zipCode":      a.ZipCode,
		"country":      a.Country,
		"description":  a.Description,
		"main":         a.Main,
		"latitude":     a.Latitude,
		"longitude":    a.Longitude,
		"geohash":      a.Geohash,
	}
}

// Fields is the embedded copy.
func (a *Address) Fields() map[string]any {
	f := a.ContentFields()
	f["id"] = a.ID
	return f
}

// DirectoryFields is the directory copy as created: content, the owner
// back-reference and an empty event list.
func (a *Address) DirectoryFields(ref owner.Ref) map[string]any {
	f := a.Fields()
	f[ref.Kind.BackRefField()] = ref.ID
	f["events"] = []map[string]any{}
	return f
}

// IsBlank reports whether the address has no descriptive text.
func (a *Address) IsBlank() bool {
	return strings.TrimSpace(a.Description) == ""
}

// LinkedEvent is the denormalized event value stored on a directory address.
// It carries everything about the event except the address itself.
type LinkedEvent struct {
	ID          string           `json:"id" firestore:"id"`
	Title       string           `json:"title" firestore:"title"`
	Description string           `json:"description,omitempty" firestore:"description"`
	StartAt     time.Time        `json:"startAt" firestore:"startAt"`
	EndAt       time.Time        `json:"endAt" firestore:"endAt"`
	Contact     *contact.Contact `json:"contact,omitempty" firestore:"contact"`
}

func (e LinkedEvent) Fields() map[string]any {
	f := map[string]any{
		"id":          e.ID,
		"title":       e.Title,
		"description": e.Description,
		"startAt":     e.StartAt,
		"endAt":       e.EndAt,
		"contact":     nil,
	}
	if e.Contact != nil {
		f["contact"] = e.Contact.Fields()
	}
	return f
}

// DirectoryAddress is the directory copy of an address.
type DirectoryAddress struct {
	Address

	GymID             string        `json:"gym_id,omitempty" firestore:"gym_id"`
	PersonalTrainerID string        `json:"personal_trainer_id,omitempty" firestore:"personal_trainer_id"`
	StudentID         string        `json:"student_id,omitempty" firestore:"student_id"`
	Events            []LinkedEvent `json:"events" firestore:"events"`

	// UpdateTime is the store's last write time, used as a write precondition.
	UpdateTime time.Time `json:"-" firestore:"-"`
}

// Owner returns the owner named by the back-reference field.
func (d *DirectoryAddress) Owner() (owner.Ref, bool) {
	switch {
	case d.GymID != "":
		return owner.NewRef(owner.Gym, d.GymID), true
	case d.PersonalTrainerID != "":
		return owner.NewRef(owner.PersonalTrainer, d.PersonalTrainerID), true
	case d.StudentID != "":
		return owner.NewRef(owner.Student, d.StudentID), true
	default:
		return owner.Ref{}, false
	}
}

func (d *DirectoryAddress) EventIDs() []string {
	ids := make([]string, 0, len(d.Events))
	for _, e := range d.Events {
		ids = append(ids, e.ID)
	}
	return ids
}

// WithEvent returns events with ev appended, replacing any entry with the same id.
func WithEvent(events []LinkedEvent, ev LinkedEvent) []LinkedEvent {
	out := make([]LinkedEvent, 0, len(events)+1)
	replaced := false
	for _, e := range events {
		if e.ID == ev.ID {
			out = append(out, ev)
			replaced = true
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, ev)
	}
	return out
}

// WithoutEvents returns events minus the given ids.
func WithoutEvents(events []LinkedEvent, ids map[string]bool) []LinkedEvent {
	out := make([]LinkedEvent, 0, len(events))
	for _, e := range events {
		if !ids[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

func EventFields(events []LinkedEvent) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, e := range events {
		out = append(out, e.Fields())
	}
	return out
}
