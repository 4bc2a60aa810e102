package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable is the request log behind `examforge llm`.
	LLMRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[1]}},
			{Name: "llmrequestevent_purpose_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[4], LLMRequestEventsColumns[1]}},
			{Name: "llmrequestevent_model", Columns: []*schema.Column{LLMRequestEventsColumns[3]}},
		},
	}

	// CreditAccountsColumns holds the columns for the "credit_accounts" table.
	CreditAccountsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "balance", Type: field.TypeInt64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// CreditAccountsTable holds one balance per normalized email.
	CreditAccountsTable = &schema.Table{
		Name:       "credit_accounts",
		Columns:    CreditAccountsColumns,
		PrimaryKey: []*schema.Column{CreditAccountsColumns[0]},
	}

	// CreditEntriesColumns holds the columns for the "credit_entries" table.
	CreditEntriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "email", Type: field.TypeString},
		{Name: "delta", Type: field.TypeInt64},
		{Name: "balance_after", Type: field.TypeInt64},
		{Name: "reason", Type: field.TypeString},
		{Name: "reference", Type: field.TypeString, Default: ""},
	}
	// CreditEntriesTable is the append-only journal of balance changes.
	CreditEntriesTable = &schema.Table{
		Name:       "credit_entries",
		Columns:    CreditEntriesColumns,
		PrimaryKey: []*schema.Column{CreditEntriesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "creditentry_timestamp", Columns: []*schema.Column{CreditEntriesColumns[1]}},
			{Name: "creditentry_email", Columns: []*schema.Column{CreditEntriesColumns[2]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		CreditAccountsTable,
		CreditEntriesTable,
	}
)
