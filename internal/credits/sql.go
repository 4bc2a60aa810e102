package credits

import (
	"context"
	"errors"

	"github.com/abhisek/examforge/internal/store"
)

// SQLLedger keeps balances in the local SQLite store.
type SQLLedger struct {
	repo store.CreditRepo
}

func NewSQLLedger(repo store.CreditRepo) *SQLLedger {
	return &SQLLedger{repo: repo}
}

func (l *SQLLedger) Balance(ctx context.Context, email string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	return l.repo.Balance(ctx, e)
}

func (l *SQLLedger) Grant(ctx context.Context, email string, amount int64, reference string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	return l.repo.Grant(ctx, e, amount, "grant", reference)
}

func (l *SQLLedger) Consume(ctx context.Context, email string, amount int64, reference string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	bal, err := l.repo.Consume(ctx, e, amount, "exam", reference)
	if errors.Is(err, store.ErrInsufficientBalance) {
		return 0, ErrInsufficientCredits
	}
	return bal, err
}

// Entries returns the journal for email, newest first.
func (l *SQLLedger) Entries(ctx context.Context, email string, limit int) ([]store.CreditEntry, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return l.repo.Entries(ctx, e, limit)
}
