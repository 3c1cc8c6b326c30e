package tx

import (
	"encoding/json"

	"github.com/cometbft/cometbft/crypto/ed25519"
)

// DAOTx is the signed envelope of every governance transaction.
type DAOTx struct {
	Version uint8     `json:"version"`
	Type    DAOTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	PubKey  []byte    `json:"pubKey"`
	Tx      any       `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

type InitTx struct {
	Amount uint64 `json:"amount"`
}

type ProposalTx struct {
	Applicant       string `json:"applicant"`
	SharesRequested uint64 `json:"sharesRequested"`
}

type VoteTx struct {
	Proposal uint64 `json:"proposal"`
	Ballot   uint8  `json:"ballot"`
}

type ProcessTx struct {
	Proposal uint64 `json:"proposal"`
}

type TransferTx struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type daoTxTmpl[Tx any] struct {
	Version uint8     `json:"version"`
	Type    DAOTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	PubKey  []byte    `json:"pubKey"`
	Tx      Tx        `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

// SigData is the byte string the sender signs: the envelope with the
// signature slot replaced by ext (the chain id).
func (tx *DAOTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

// Sender resolves the account id from the envelope's public key.
func (tx *DAOTx) Sender() (string, error) {
	if len(tx.PubKey) != ed25519.PubKeySize {
		return "", ErrInvalidPubKey
	}
	return ed25519.PubKey(tx.PubKey).Address().String(), nil
}

func (tx *DAOTx) VerifySig(chainId string) (bool, error) {
	if len(tx.PubKey) != ed25519.PubKeySize {
		return false, ErrInvalidPubKey
	}
	if len(tx.Sig) != 1 {
		return false, nil
	}
	dat, err := tx.SigData([]byte(chainId))
	if err != nil {
		return false, err
	}
	return ed25519.PubKey(tx.PubKey).VerifySignature(dat, tx.Sig[0]), nil
}

func parseDAOTxType(dat []byte) DAOTxType {
	var tx struct {
		Type DAOTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return DAOTxTypeUnknown
	}
	return tx.Type
}

func unmarshalDAOTx[Tx any](dat []byte) (btx *DAOTx, err error) {
	var txt daoTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	if txt.Version != DAOTxVersion1 {
		return nil, ErrUnsupportedTxVersion
	}
	btx = new(DAOTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.PubKey = txt.PubKey
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalDAOTx(dat []byte) (btx *DAOTx, err error) {
	tp := parseDAOTxType(dat)
	switch tp {
	case DAOTxTypeInit:
		return unmarshalDAOTx[InitTx](dat)
	case DAOTxTypeProposal:
		return unmarshalDAOTx[ProposalTx](dat)
	case DAOTxTypeVote:
		return unmarshalDAOTx[VoteTx](dat)
	case DAOTxTypeProcess:
		return unmarshalDAOTx[ProcessTx](dat)
	case DAOTxTypeTransfer:
		return unmarshalDAOTx[TransferTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalDAOTx(btx *DAOTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
