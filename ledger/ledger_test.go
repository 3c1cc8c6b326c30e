package ledger

import (
	"math"
	"testing"

	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

const (
	alice = "A11CE"
	bob   = "B0B"
)

func newTestLedger(t *testing.T) (*Ledger, *state.State) {
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	return New(st), st
}

func TestInitializeOnce(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Initialize(alice, 1000))

	bal, err := l.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), bal)

	err = l.Initialize(alice, 1000)
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)
	bal, err = l.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), bal)
}

func TestMintOverflow(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Mint(bob, math.MaxUint64-1))
	require.NoError(t, l.Mint(bob, 1))

	err := l.Mint(bob, 1)
	require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	bal, err := l.BalanceOf(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), bal)
}

func TestTransfer(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Initialize(alice, 100))

	require.ErrorIs(t, l.Transfer(bob, alice, 1), types.ErrNoBalanceRecord)
	require.ErrorIs(t, l.Transfer(alice, bob, 101), types.ErrInsufficientBalance)

	require.NoError(t, l.Transfer(alice, bob, 100))
	a, err := l.BalanceOf(alice)
	require.NoError(t, err)
	b, err := l.BalanceOf(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(0), a)
	require.Equal(t, uint64(100), b)

	require.NoError(t, l.Transfer(bob, bob, 40))
	b, err = l.BalanceOf(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(100), b)
}

func TestTransferOverflowLeavesBothSides(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Mint(alice, 10))
	require.NoError(t, l.Mint(bob, math.MaxUint64))

	require.ErrorIs(t, l.Transfer(alice, bob, 5), types.ErrArithmeticOverflow)
	a, err := l.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(10), a)
}

func TestLockRequiresStrictlyGreaterBalance(t *testing.T) {
	l, _ := newTestLedger(t)
	require.ErrorIs(t, l.Lock(alice, 1), types.ErrNoBalanceRecord)

	require.NoError(t, l.Mint(alice, 10))
	require.ErrorIs(t, l.Lock(alice, 10), types.ErrInsufficientBalance)
	require.ErrorIs(t, l.Lock(alice, 11), types.ErrInsufficientBalance)

	require.NoError(t, l.Lock(alice, 9))
	acnt, err := l.Account(alice)
	require.NoError(t, err)
	require.Equal(t, types.Balance{Free: 1, Locked: 9}, acnt)
}

func TestLockUnlockRoundTrip(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Mint(alice, 500))
	require.NoError(t, l.Lock(alice, 7))
	before, err := l.Account(alice)
	require.NoError(t, err)

	for _, amount := range []uint64{0, 1, 42, 492} {
		require.NoError(t, l.Lock(alice, amount))
		require.NoError(t, l.Unlock(alice, amount))
		after, err := l.Account(alice)
		require.NoError(t, err)
		require.Equal(t, before, after, "amount %d", amount)
	}
}

func TestUnlockUnderflow(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Mint(alice, 50))
	require.NoError(t, l.Lock(alice, 10))

	require.ErrorIs(t, l.Unlock(alice, 11), types.ErrArithmeticUnderflow)
	acnt, err := l.Account(alice)
	require.NoError(t, err)
	require.Equal(t, types.Balance{Free: 40, Locked: 10}, acnt)

	require.NoError(t, l.Unlock(alice, 9))
	locked, err := l.LockedOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), locked)
}

func TestUnlockOverflow(t *testing.T) {
	l, st := newTestLedger(t)
	require.NoError(t, st.SetBalance(alice, types.Balance{Free: math.MaxUint64 - 5, Locked: 10}))

	require.ErrorIs(t, l.Unlock(alice, 6), types.ErrArithmeticOverflow)
	acnt, err := l.Account(alice)
	require.NoError(t, err)
	require.Equal(t, types.Balance{Free: math.MaxUint64 - 5, Locked: 10}, acnt)

	require.NoError(t, l.Unlock(alice, 5))
	acnt, err = l.Account(alice)
	require.NoError(t, err)
	require.Equal(t, types.Balance{Free: math.MaxUint64, Locked: 5}, acnt)
}
