package tx

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/calehh/hac-dao/types"
	"github.com/cometbft/cometbft/crypto"
)

type DAOTxType uint8

const (
	DAOTxTypeUnknown  DAOTxType = 0
	DAOTxTypeInit     DAOTxType = 1
	DAOTxTypeProposal DAOTxType = 2
	DAOTxTypeVote     DAOTxType = 3
	DAOTxTypeProcess  DAOTxType = 4
	DAOTxTypeTransfer DAOTxType = 5
)

func (t DAOTxType) String() string {
	switch t {
	case DAOTxTypeInit:
		return "init"
	case DAOTxTypeProposal:
		return "submit_proposal"
	case DAOTxTypeVote:
		return "submit_vote"
	case DAOTxTypeProcess:
		return "process_proposal"
	case DAOTxTypeTransfer:
		return "transfer"
	}
	return "unknown"
}

const (
	DAOTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx            = errors.New("invalid tx")
	ErrInvalidPubKey        = errors.New("invalid public key")
	ErrUnsupportedTxType    = errors.New("unsupported tx type")
	ErrUnmatchedTxType      = errors.New("unmatched tx type")
	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)

// ValidateAddress accepts only account ids a signer can resolve to: the
// upper-case hex of a CometBFT address, as Sender returns it.
func ValidateAddress(addr string) error {
	dat, err := hex.DecodeString(addr)
	if err != nil || len(dat) != crypto.AddressSize || addr != strings.ToUpper(addr) {
		return fmt.Errorf("%w: %q", types.ErrInvalidAddress, addr)
	}
	return nil
}
