package store

import (
	"context"
	"errors"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int       // id > After
	Before  int       // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates LLM calls sharing a purpose.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// LLMModelUsage aggregates LLM calls served by one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one event, or nil when id is unknown.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// ErrInsufficientBalance is returned when a debit exceeds the balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// CreditEntry is one journal line of a credit account.
type CreditEntry struct {
	ID           int
	Timestamp    time.Time
	Email        string
	Delta        int64
	BalanceAfter int64
	Reason       string
	Reference    string
}

// CreditRepo stores per-email credit balances and their journal.
// Emails are expected to be normalized by the caller.
type CreditRepo interface {
	// Balance returns the current balance; unknown emails have zero.
	Balance(ctx context.Context, email string) (int64, error)

	// Grant adds amount and returns the new balance.
	Grant(ctx context.Context, email string, amount int64, reason, reference string) (int64, error)

	// Consume removes amount and returns the new balance, or
	// ErrInsufficientBalance without changing anything.
	Consume(ctx context.Context, email string, amount int64, reason, reference string) (int64, error)

	// Entries returns the newest journal lines first.
	Entries(ctx context.Context, email string, limit int) ([]CreditEntry, error)
}
