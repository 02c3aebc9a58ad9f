// Package contact holds owner contacts. Contacts live only under their owner.
package contact

import (
	"go.uber.org/zap"

	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/subcollection"
)

const Collection = "contacts"

type Contact struct {
	ID       string `json:"id" firestore:"id"`
	Name     string `json:"name" firestore:"name" validate:"required,max=120"`
	Email    string `json:"email,omitempty" firestore:"email" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" firestore:"phone" validate:"omitempty,max=32"`
	WhatsApp string `json:"whatsapp,omitempty" firestore:"whatsapp" validate:"omitempty,max=32"`
	Main     bool   `json:"main" firestore:"main"`
}

func (c *Contact) GetID() string   { return c.ID }
func (c *Contact) SetID(id string) { c.ID = id }

func (c *Contact) Fields() map[string]any {
	return map[string]any{
		"id":       c.ID,
		"name":     c.Name,
		"email":    c.Email,
		"phone":    c.Phone,
		"whatsapp": c.WhatsApp,
		"main":     c.Main,
	}
}

var mutable = []string{"name", "email", "phone", "whatsapp", "main"}

type Store = subcollection.Store[Contact, *Contact]

func NewStore(db docstore.Store, log *zap.Logger) *Store {
	return subcollection.New[Contact, *Contact](db, Collection, mutable, log)
}

// Index keys contacts by id.
func Index(cs []Contact) map[string]Contact {
	out := make(map[string]Contact, len(cs))
	for _, c := range cs {
		out[c.ID] = c
	}
	return out
}
