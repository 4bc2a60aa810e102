package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// creditRepo implements CreditRepo. Every balance change runs in one
// transaction together with its journal entry.
type creditRepo struct {
	db *sql.DB
}

func (r *creditRepo) Balance(ctx context.Context, email string) (int64, error) {
	return balanceOf(ctx, r.db, email)
}

func (r *creditRepo) Grant(ctx context.Context, email string, amount int64, reason, reference string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	return r.apply(ctx, email, amount, reason, reference)
}

func (r *creditRepo) Consume(ctx context.Context, email string, amount int64, reason, reference string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("consume amount must be positive, got %d", amount)
	}
	return r.apply(ctx, email, -amount, reason, reference)
}

func (r *creditRepo) apply(ctx context.Context, email string, delta int64, reason, reference string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin credit tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	b := builder()

	query, args := b.Insert(CreditAccountsTable.Name).
		Columns("email", "balance", "created_at", "updated_at").
		Values(email, 0, now, now).
		OnConflict(entsql.ConflictColumns("email"), entsql.DoNothing()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("ensure credit account: %w", err)
	}

	where := entsql.EQ("email", email)
	if delta < 0 {
		where = entsql.And(where, entsql.GTE("balance", -delta))
	}
	query, args = b.Update(CreditAccountsTable.Name).
		Add("balance", delta).
		Set("updated_at", now).
		Where(where).
		Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update credit balance: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("update credit balance: %w", err)
	} else if n == 0 {
		return 0, ErrInsufficientBalance
	}

	balance, err := balanceOf(ctx, tx, email)
	if err != nil {
		return 0, err
	}

	query, args = b.Insert(CreditEntriesTable.Name).
		Columns("timestamp", "email", "delta", "balance_after", "reason", "reference").
		Values(now, email, delta, balance, reason, reference).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("append credit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit credit tx: %w", err)
	}
	return balance, nil
}

func (r *creditRepo) Entries(ctx context.Context, email string, limit int) ([]CreditEntry, error) {
	b := builder()
	sel := b.Select("id", "timestamp", "email", "delta", "balance_after", "reason", "reference").
		From(b.Table(CreditEntriesTable.Name)).
		Where(entsql.EQ("email", email)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query credit entries: %w", err)
	}
	defer rows.Close()

	var out []CreditEntry
	for rows.Next() {
		var e CreditEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Email, &e.Delta, &e.BalanceAfter, &e.Reason, &e.Reference); err != nil {
			return nil, fmt.Errorf("scan credit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func balanceOf(ctx context.Context, q queryRower, email string) (int64, error) {
	b := builder()
	query, args := b.Select("balance").
		From(b.Table(CreditAccountsTable.Name)).
		Where(entsql.EQ("email", email)).
		Query()

	var balance int64
	err := q.QueryRowContext(ctx, query, args...).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query credit balance: %w", err)
	}
	return balance, nil
}
