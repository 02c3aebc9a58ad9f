// Package plan holds the subscription plans an owner offers.
package plan

import (
	"go.uber.org/zap"

	"fitness-directory/backend/internal/docstore"
	"fitness-directory/backend/internal/domain/subcollection"
)

const Collection = "subscription_plans"

const (
	Monthly    = "monthly"
	Quarterly  = "quarterly"
	Semiannual = "semiannual"
	Annual     = "annual"
)

type Plan struct {
	ID          string `json:"id" firestore:"id"`
	Name        string `json:"name" firestore:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty" firestore:"description" validate:"max=2000"`
	// Price is in the currency's minor unit.
	Price    int64  `json:"price" firestore:"price" validate:"gte=0"`
	Currency string `json:"currency" firestore:"currency" validate:"required,len=3,uppercase"`
	Period   string `json:"period" firestore:"period" validate:"required,oneof=monthly quarterly semiannual annual"`
	Active   bool   `json:"active" firestore:"active"`
}

func (p *Plan) GetID() string   { return p.ID }
func (p *Plan) SetID(id string) { p.ID = id }

func (p *Plan) Fields() map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"currency":    p.Currency,
		"period":      p.Period,
		"active":      p.Active,
	}
}

var mutable = []string{"name", "description", "price", "currency", "period", "active"}

type Store = subcollection.Store[Plan, *Plan]

func NewStore(db docstore.Store, log *zap.Logger) *Store {
	return subcollection.New[Plan, *Plan](db, Collection, mutable, log)
}
