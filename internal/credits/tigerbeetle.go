package credits

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	tb "github.com/tigerbeetle/tigerbeetle-go"
	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"
)

const (
	tbLedger uint32 = 1
	tbCode   uint16 = 1
)

// tbClient is the subset of the TigerBeetle client the ledger uses.
type tbClient interface {
	CreateAccounts(accounts []tbtypes.Account) ([]tbtypes.AccountEventResult, error)
	CreateTransfers(transfers []tbtypes.Transfer) ([]tbtypes.TransferEventResult, error)
	LookupAccounts(ids []tbtypes.Uint128) ([]tbtypes.Account, error)
	Close()
}

// TigerBeetleLedger stores one account per email on a TigerBeetle cluster.
// Grants move credits from an operator account, consumption moves them back,
// and the email account refuses to go below zero.
type TigerBeetleLedger struct {
	client tbClient
}

// NewTigerBeetleLedger connects to the cluster and creates the operator
// account if missing.
func NewTigerBeetleLedger(ctx context.Context, clusterID uint64, addresses []string) (*TigerBeetleLedger, error) {
	client, err := tb.NewClient(tbtypes.ToUint128(clusterID), addresses)
	if err != nil {
		return nil, fmt.Errorf("create TB client: %w", err)
	}
	l := &TigerBeetleLedger{client: client}
	if err := l.ensureAccount(ctx, operatorAccountID(), false); err != nil {
		client.Close()
		return nil, err
	}
	return l, nil
}

func (l *TigerBeetleLedger) Close() error {
	l.client.Close()
	return nil
}

func (l *TigerBeetleLedger) Balance(ctx context.Context, email string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	return l.balance(ctx, emailAccountID(e))
}

func (l *TigerBeetleLedger) Grant(ctx context.Context, email string, amount int64, reference string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	id := emailAccountID(e)
	if err := l.ensureAccount(ctx, id, true); err != nil {
		return 0, err
	}
	if err := l.transfer(ctx, transferID("grant", e, reference), operatorAccountID(), id, amount); err != nil {
		return 0, err
	}
	return l.balance(ctx, id)
}

func (l *TigerBeetleLedger) Consume(ctx context.Context, email string, amount int64, reference string) (int64, error) {
	e, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("consume amount must be positive, got %d", amount)
	}
	id := emailAccountID(e)
	if err := l.transfer(ctx, transferID("consume", e, reference), id, operatorAccountID(), amount); err != nil {
		return 0, err
	}
	return l.balance(ctx, id)
}

func (l *TigerBeetleLedger) ensureAccount(ctx context.Context, id tbtypes.Uint128, guarded bool) error {
	account := tbtypes.Account{ID: id, Ledger: tbLedger, Code: tbCode}
	if guarded {
		account.Flags = tbtypes.AccountFlags{DebitsMustNotExceedCredits: true}.ToUint16()
	}
	results, err := callWithContext(ctx, func() ([]tbtypes.AccountEventResult, error) {
		return l.client.CreateAccounts([]tbtypes.Account{account})
	})
	if err != nil {
		return fmt.Errorf("%w: create account: %v", ErrUnavailable, err)
	}
	for _, r := range results {
		if r.Result == tbtypes.AccountExists {
			continue
		}
		return fmt.Errorf("create account: %s", r.Result)
	}
	return nil
}

func (l *TigerBeetleLedger) transfer(ctx context.Context, id, debit, credit tbtypes.Uint128, amount int64) error {
	t := tbtypes.Transfer{
		ID:              id,
		DebitAccountID:  debit,
		CreditAccountID: credit,
		Amount:          tbtypes.ToUint128(uint64(amount)),
		Ledger:          tbLedger,
		Code:            tbCode,
	}
	results, err := callWithContext(ctx, func() ([]tbtypes.TransferEventResult, error) {
		return l.client.CreateTransfers([]tbtypes.Transfer{t})
	})
	if err != nil {
		return fmt.Errorf("%w: create transfer: %v", ErrUnavailable, err)
	}
	for _, r := range results {
		switch r.Result {
		case tbtypes.TransferExists:
			// Same reference replayed.
		case tbtypes.TransferExceedsCredits, tbtypes.TransferDebitAccountNotFound:
			return ErrInsufficientCredits
		default:
			return fmt.Errorf("transfer: %s", r.Result)
		}
	}
	return nil
}

func (l *TigerBeetleLedger) balance(ctx context.Context, id tbtypes.Uint128) (int64, error) {
	accounts, err := callWithContext(ctx, func() ([]tbtypes.Account, error) {
		return l.client.LookupAccounts([]tbtypes.Uint128{id})
	})
	if err != nil {
		return 0, fmt.Errorf("%w: lookup account: %v", ErrUnavailable, err)
	}
	if len(accounts) == 0 {
		return 0, nil
	}
	credits := low64(accounts[0].CreditsPosted)
	debits := low64(accounts[0].DebitsPosted)
	if credits < debits {
		return 0, nil
	}
	return int64(credits - debits), nil
}

// callWithContext runs a blocking client call, returning early when ctx is
// done. The call itself keeps running to completion in the background.
func callWithContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		return res.value, res.err
	}
}

// id128 deterministically maps a label to a non-zero, non-max Uint128.
func id128(label string) tbtypes.Uint128 {
	sum := sha256.Sum256([]byte(label))
	var raw [16]byte
	copy(raw[:], sum[:16])
	allZero, allMax := true, true
	for _, b := range raw {
		allZero = allZero && b == 0
		allMax = allMax && b == 0xff
	}
	if allZero || allMax {
		raw[0] ^= 0x01
	}
	return tbtypes.BytesToUint128(raw)
}

func operatorAccountID() tbtypes.Uint128 { return id128("acct:operator") }

func emailAccountID(email string) tbtypes.Uint128 { return id128("acct:email:" + email) }

// transferID is deterministic when a reference is given, so retried calls
// are applied once. Without one every call is a new transfer.
func transferID(kind, email, reference string) tbtypes.Uint128 {
	if reference == "" {
		return tbtypes.ID()
	}
	return id128("xfer:" + kind + ":" + email + ":" + reference)
}

func low64(v tbtypes.Uint128) uint64 {
	b := v.Bytes()
	return binary.LittleEndian.Uint64(b[:8])
}
