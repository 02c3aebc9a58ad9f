// Package profile owns the owner documents and reads an owner together with
// everything nested under it.
package profile

import (
	"time"

	"fitness-directory/backend/internal/domain/address"
	"fitness-directory/backend/internal/domain/contact"
	"fitness-directory/backend/internal/domain/event"
	"fitness-directory/backend/internal/domain/owner"
	"fitness-directory/backend/internal/domain/plan"
)

type Owner struct {
	ID           string     `json:"id" firestore:"id"`
	Kind         owner.Kind `json:"kind" firestore:"kind"`
	Name         string     `json:"name" firestore:"name"`
	Biography    string     `json:"biography,omitempty" firestore:"biography"`
	Gallery      []string   `json:"gallery" firestore:"gallery"`
	Tags         []string   `json:"tags" firestore:"tags"`
	SearchTokens []string   `json:"-" firestore:"searchTokens"`
	CreatedAt    time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

func (o *Owner) Fields() map[string]any {
	return map[string]any{
		"id":           o.ID,
		"kind":         string(o.Kind),
		"name":         o.Name,
		"biography":    o.Biography,
		"gallery":      o.Gallery,
		"tags":         o.Tags,
		"searchTokens": o.SearchTokens,
		"createdAt":    o.CreatedAt,
		"updatedAt":    o.UpdatedAt,
	}
}

func (o *Owner) Ref() owner.Ref { return owner.NewRef(o.Kind, o.ID) }

// Aggregate is an owner with all of its sub-collections.
type Aggregate struct {
	Owner     Owner             `json:"owner"`
	Addresses []address.Address `json:"addresses"`
	Contacts  []contact.Contact `json:"contacts"`
	Events    []event.Event     `json:"events"`
	Plans     []plan.Plan       `json:"subscriptionPlans"`
}

// MainAddress returns the owner's main address, if any.
func (a *Aggregate) MainAddress() (address.Address, bool) {
	for _, ad := range a.Addresses {
		if ad.Main {
			return ad, true
		}
	}
	return address.Address{}, false
}

type CreateInput struct {
	Name      string            `json:"name" validate:"required,max=120"`
	Biography string            `json:"biography,omitempty" validate:"max=4000"`
	Gallery   []string          `json:"gallery,omitempty" validate:"max=30,dive,required"`
	Tags      []string          `json:"tags,omitempty" validate:"max=20"`
	Addresses []address.Address `json:"addresses,omitempty" validate:"-"`
	Contacts  []contact.Contact `json:"contacts,omitempty" validate:"-"`
	Plans     []plan.Plan       `json:"subscriptionPlans,omitempty" validate:"-"`
}

// EditInput changes only the fields that are set.
type EditInput struct {
	Name      *string   `json:"name,omitempty" validate:"omitempty,max=120"`
	Biography *string   `json:"biography,omitempty" validate:"omitempty,max=4000"`
	Gallery   *[]string `json:"gallery,omitempty" validate:"omitempty,max=30,dive,required"`
	Tags      *[]string `json:"tags,omitempty" validate:"omitempty,max=20"`
}
