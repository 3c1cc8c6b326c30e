package state

import (
	"errors"

	"github.com/calehh/hac-dao/tx"
)

var (
	ErrTxNonceInvalid = errors.New("nonce invalid")
	ErrTxSigInvalid   = errors.New("signature invalid")
)

// Verify resolves and authenticates the sender of btx. With allowNonceGap a
// nonce ahead of the stored one is accepted, for mempool checks.
func (s *State) Verify(btx *tx.DAOTx, chainId string, allowNonceGap bool) (sender string, err error) {
	sender, err = btx.Sender()
	if err != nil {
		return
	}
	nonce, err := s.Nonce(sender)
	if err != nil {
		return "", err
	}
	if !(nonce == btx.Nonce || (allowNonceGap && nonce < btx.Nonce)) {
		return "", ErrTxNonceInvalid
	}
	succ, err := btx.VerifySig(chainId)
	if err != nil {
		return "", err
	}
	if !succ {
		return "", ErrTxSigInvalid
	}
	return
}

func (s *State) IncrementNonce(addr string) error {
	nonce, err := s.Nonce(addr)
	if err != nil {
		return err
	}
	return s.SetNonce(addr, nonce+1)
}
