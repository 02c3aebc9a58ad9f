// Package owner defines the closed set of aggregate roots that own
// addresses, contacts, events and subscription plans.
package owner

import (
	"strings"

	"fitness-directory/backend/internal/apperr"
	"fitness-directory/backend/internal/docstore"
)

// Kind is the owner variant. Each kind carries its own top-level collection
// and the back-reference field written on directory addresses.
type Kind string

const (
	Gym             Kind = "gym"
	PersonalTrainer Kind = "personal_trainer"
	Student         Kind = "student"
)

var Kinds = []Kind{Gym, PersonalTrainer, Student}

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool {
	switch k {
	case Gym, PersonalTrainer, Student:
		return true
	default:
		return false
	}
}

// Collection is the top-level collection holding owner documents of this kind.
func (k Kind) Collection() string {
	switch k {
	case Gym:
		return "gyms"
	case PersonalTrainer:
		return "personal_trainers"
	case Student:
		return "students"
	default:
		return ""
	}
}

// BackRefField is the field naming the owner on a directory address.
func (k Kind) BackRefField() string {
	switch k {
	case Gym:
		return "gym_id"
	case PersonalTrainer:
		return "personal_trainer_id"
	case Student:
		return "student_id"
	default:
		return ""
	}
}

// HostsEvents reports whether owners of this kind publish events.
func (k Kind) HostsEvents() bool {
	return k == Gym || k == PersonalTrainer
}

// ParseKind accepts the singular kind ("gym") or its collection name ("gyms"),
// with dashes or underscores.
func ParseKind(s string) (Kind, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range Kinds {
		if s == string(k) || s == k.Collection() {
			return k, nil
		}
	}
	return "", apperr.BadRequest("unknown owner kind %q", s)
}

// Ref identifies one owner document.
type Ref struct {
	Kind Kind
	ID   string
}

func NewRef(kind Kind, id string) Ref {
	return Ref{Kind: kind, ID: strings.TrimSpace(id)}
}

func (r Ref) Validate() error {
	if !r.Kind.IsValid() {
		return apperr.BadRequest("unknown owner kind %q", r.Kind)
	}
	if r.ID == "" || strings.Contains(r.ID, "/") {
		return apperr.BadRequest("invalid owner id %q", r.ID)
	}
	return nil
}

// Collection is the collection holding this owner's document.
func (r Ref) Collection() string { return r.Kind.Collection() }

// Sub is the path of one of this owner's sub-collections.
func (r Ref) Sub(name string) string {
	return docstore.Path(r.Kind.Collection(), r.ID, name)
}

func (r Ref) String() string { return docstore.Path(r.Kind.Collection(), r.ID) }
