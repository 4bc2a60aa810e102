package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// TimestampMixin gives append-only journals an indexed, immutable write
// time so `examforge llm list --since` and credit history can range-scan.
type TimestampMixin struct {
	mixin.Schema
}

func (TimestampMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("timestamp").Default(time.Now).Immutable(),
	}
}

func (TimestampMixin) Indexes() []ent.Index {
	return []ent.Index{index.Fields("timestamp")}
}
