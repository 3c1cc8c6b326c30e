// Package ledger keeps the governance share balances. Every mutation reads
// and checks all affected records before writing any of them.
package ledger

import (
	"github.com/calehh/hac-dao/types"
	"github.com/ethereum/go-ethereum/common/math"
)

type Store interface {
	Balance(addr string) (types.Balance, bool, error)
	SetBalance(addr string, b types.Balance) error
	Initialized() (bool, error)
	SetInitialized() error
}

type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) Initialize(owner string, amount uint64) error {
	init, err := l.store.Initialized()
	if err != nil {
		return err
	}
	if init {
		return types.ErrAlreadyInitialized
	}
	b, _, err := l.store.Balance(owner)
	if err != nil {
		return err
	}
	free, overflow := math.SafeAdd(b.Free, amount)
	if overflow {
		return types.ErrArithmeticOverflow
	}
	b.Free = free
	if err = l.store.SetBalance(owner, b); err != nil {
		return err
	}
	return l.store.SetInitialized()
}

func (l *Ledger) Mint(addr string, amount uint64) error {
	b, _, err := l.store.Balance(addr)
	if err != nil {
		return err
	}
	free, overflow := math.SafeAdd(b.Free, amount)
	if overflow {
		return types.ErrArithmeticOverflow
	}
	b.Free = free
	return l.store.SetBalance(addr, b)
}

func (l *Ledger) Transfer(from, to string, amount uint64) error {
	fb, found, err := l.store.Balance(from)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNoBalanceRecord
	}
	if fb.Free < amount {
		return types.ErrInsufficientBalance
	}
	fromFree, underflow := math.SafeSub(fb.Free, amount)
	if underflow {
		return types.ErrArithmeticUnderflow
	}
	if from == to {
		return nil
	}
	tb, _, err := l.store.Balance(to)
	if err != nil {
		return err
	}
	toFree, overflow := math.SafeAdd(tb.Free, amount)
	if overflow {
		return types.ErrArithmeticOverflow
	}
	fb.Free = fromFree
	tb.Free = toFree
	if err = l.store.SetBalance(from, fb); err != nil {
		return err
	}
	return l.store.SetBalance(to, tb)
}

// Lock escrows amount out of the spendable balance. The balance must be
// strictly greater than amount.
func (l *Ledger) Lock(addr string, amount uint64) error {
	b, found, err := l.store.Balance(addr)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNoBalanceRecord
	}
	if b.Free <= amount {
		return types.ErrInsufficientBalance
	}
	free, underflow := math.SafeSub(b.Free, amount)
	if underflow {
		return types.ErrArithmeticUnderflow
	}
	locked, overflow := math.SafeAdd(b.Locked, amount)
	if overflow {
		return types.ErrArithmeticOverflow
	}
	b.Free = free
	b.Locked = locked
	return l.store.SetBalance(addr, b)
}

func (l *Ledger) Unlock(addr string, amount uint64) error {
	b, _, err := l.store.Balance(addr)
	if err != nil {
		return err
	}
	free, overflow := math.SafeAdd(b.Free, amount)
	if overflow {
		return types.ErrArithmeticOverflow
	}
	locked, underflow := math.SafeSub(b.Locked, amount)
	if underflow {
		return types.ErrArithmeticUnderflow
	}
	b.Free = free
	b.Locked = locked
	return l.store.SetBalance(addr, b)
}

func (l *Ledger) Account(addr string) (types.Balance, error) {
	b, _, err := l.store.Balance(addr)
	return b, err
}

func (l *Ledger) BalanceOf(addr string) (uint64, error) {
	b, _, err := l.store.Balance(addr)
	return b.Free, err
}

func (l *Ledger) LockedOf(addr string) (uint64, error) {
	b, _, err := l.store.Balance(addr)
	return b.Locked, err
}
