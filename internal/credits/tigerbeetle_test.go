package credits

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"
)

// fakeTB models the account and transfer rules the ledger relies on.
type fakeTB struct {
	mu        sync.Mutex
	accounts  map[tbtypes.Uint128]*tbtypes.Account
	transfers map[tbtypes.Uint128]bool
	closed    bool
}

func newFakeTB() *fakeTB {
	return &fakeTB{accounts: map[tbtypes.Uint128]*tbtypes.Account{}, transfers: map[tbtypes.Uint128]bool{}}
}

func (f *fakeTB) CreateAccounts(accounts []tbtypes.Account) ([]tbtypes.AccountEventResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tbtypes.AccountEventResult
	for i, a := range accounts {
		if _, ok := f.accounts[a.ID]; ok {
			out = append(out, tbtypes.AccountEventResult{Index: uint32(i), Result: tbtypes.AccountExists})
			continue
		}
		a := a
		f.accounts[a.ID] = &a
	}
	return out, nil
}

func (f *fakeTB) CreateTransfers(transfers []tbtypes.Transfer) ([]tbtypes.TransferEventResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	guard := tbtypes.AccountFlags{DebitsMustNotExceedCredits: true}.ToUint16()
	var out []tbtypes.TransferEventResult
	for i, t := range transfers {
		fail := func(r tbtypes.CreateTransferResult) {
			out = append(out, tbtypes.TransferEventResult{Index: uint32(i), Result: r})
		}
		if f.transfers[t.ID] {
			fail(tbtypes.TransferExists)
			continue
		}
		debit, ok := f.accounts[t.DebitAccountID]
		if !ok {
			fail(tbtypes.TransferDebitAccountNotFound)
			continue
		}
		credit, ok := f.accounts[t.CreditAccountID]
		if !ok {
			fail(tbtypes.TransferCreditAccountNotFound)
			continue
		}
		amount := low64(t.Amount)
		if debit.Flags&guard != 0 && low64(debit.DebitsPosted)+amount > low64(debit.CreditsPosted) {
			fail(tbtypes.TransferExceedsCredits)
			continue
		}
		debit.DebitsPosted = tbtypes.ToUint128(low64(debit.DebitsPosted) + amount)
		credit.CreditsPosted = tbtypes.ToUint128(low64(credit.CreditsPosted) + amount)
		f.transfers[t.ID] = true
	}
	return out, nil
}

func (f *fakeTB) LookupAccounts(ids []tbtypes.Uint128) ([]tbtypes.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tbtypes.Account
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeTB) Close() { f.closed = true }

func newTestTBLedger(t *testing.T) (*TigerBeetleLedger, *fakeTB) {
	t.Helper()
	fake := newFakeTB()
	l := &TigerBeetleLedger{client: fake}
	require.NoError(t, l.ensureAccount(context.Background(), operatorAccountID(), false))
	return l, fake
}

func TestTigerBeetleLedger(t *testing.T) {
	l, fake := newTestTBLedger(t)
	ctx := context.Background()

	bal, err := l.Balance(ctx, "new@user.io")
	require.NoError(t, err)
	assert.Zero(t, bal)

	_, err = l.Consume(ctx, "new@user.io", 1, "")
	assert.ErrorIs(t, err, ErrInsufficientCredits, "unknown accounts cannot be debited")

	bal, err = l.Grant(ctx, "New@User.io", 10, "order-1")
	require.NoError(t, err)
	assert.EqualValues(t, 10, bal)

	bal, err = l.Grant(ctx, "new@user.io", 10, "order-1")
	require.NoError(t, err)
	assert.EqualValues(t, 10, bal, "replayed grant reference applies once")

	bal, err = l.Consume(ctx, "new@user.io", 3, "")
	require.NoError(t, err)
	assert.EqualValues(t, 7, bal)

	_, err = l.Consume(ctx, "new@user.io", 8, "")
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	bal, err = l.Balance(ctx, "new@user.io")
	require.NoError(t, err)
	assert.EqualValues(t, 7, bal)

	_, err = l.Grant(ctx, "new@user.io", 0, "")
	assert.Error(t, err)
	_, err = l.Balance(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	require.NoError(t, l.Close())
	assert.True(t, fake.closed)
}

func TestTigerBeetleIDs(t *testing.T) {
	assert.Equal(t, emailAccountID("a@b.co"), emailAccountID("a@b.co"))
	assert.NotEqual(t, emailAccountID("a@b.co"), emailAccountID("c@d.co"))
	assert.Equal(t, transferID("grant", "a@b.co", "r1"), transferID("grant", "a@b.co", "r1"))
	assert.NotEqual(t, transferID("grant", "a@b.co", "r1"), transferID("consume", "a@b.co", "r1"))
	assert.NotEqual(t, transferID("consume", "a@b.co", ""), transferID("consume", "a@b.co", ""))
}
