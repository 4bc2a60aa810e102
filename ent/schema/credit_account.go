package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// CreditAccount holds the exam credit balance of one customer.
type CreditAccount struct {
	ent.Schema
}

func (CreditAccount) Fields() []ent.Field {
	return []ent.Field{
		field.String("email").
			Unique().
			Comment("Trimmed, lower-cased customer email"),
		field.Int64("balance").
			Default(0).
			NonNegative(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
