// Package credits gates exam generation on a per-email credit balance.
package credits

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInsufficientCredits = errors.New("no credits left for this email")
	ErrInvalidEmail        = errors.New("invalid email address")
	// ErrUnavailable means the ledger backend could not be reached.
	ErrUnavailable = errors.New("credit ledger unavailable")
)

// Ledger holds one credit balance per normalized email. One credit buys one
// generated exam.
type Ledger interface {
	Balance(ctx context.Context, email string) (int64, error)
	// Grant adds credits and returns the new balance.
	Grant(ctx context.Context, email string, amount int64, reference string) (int64, error)
	// Consume removes credits, failing with ErrInsufficientCredits rather
	// than going negative, and returns the new balance.
	Consume(ctx context.Context, email string, amount int64, reference string) (int64, error)
}

// NormalizeEmail trims and lower-cases an address. It must contain "@" and
// a "." to be accepted.
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" || !strings.Contains(e, "@") || !strings.Contains(e, ".") {
		return "", ErrInvalidEmail
	}
	return e, nil
}
