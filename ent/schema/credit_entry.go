package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CreditEntry is one balance change in the credit journal.
type CreditEntry struct {
	ent.Schema
}

func (CreditEntry) Mixin() []ent.Mixin {
	return []ent.Mixin{TimestampMixin{}}
}

func (CreditEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("email"),
		field.Int64("delta").
			Comment("Positive for grants, negative for consumed exams"),
		field.Int64("balance_after"),
		field.String("reason").
			Comment("grant or exam"),
		field.String("reference").
			Default("").
			Comment("Order or exam id the change belongs to"),
	}
}

func (CreditEntry) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("email"),
	}
}
