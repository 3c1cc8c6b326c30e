package crypto

import (
	"fmt"
	"os"

	"github.com/calehh/hac-dao/tx"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	"github.com/cometbft/cometbft/privval"
)

// PV is an account key used to sign governance transactions.
type PV struct {
	privateKey crypto.PrivKey
	publicKey  crypto.PubKey
}

func NewPV(priv crypto.PrivKey) *PV {
	return &PV{
		privateKey: priv,
		publicKey:  priv.PubKey(),
	}
}

func GenPV() *PV {
	return NewPV(ed25519.GenPrivKey())
}

// LoadFilePV reads a key file in the privval key format.
func LoadFilePV(keyFilePath string) (*PV, error) {
	keyJSONBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	pvKey := privval.FilePVKey{}
	err = cmtjson.Unmarshal(keyJSONBytes, &pvKey)
	if err != nil {
		return nil, fmt.Errorf("error reading key from %v: %w", keyFilePath, err)
	}
	return &PV{
		privateKey: pvKey.PrivKey,
		publicKey:  pvKey.PubKey,
	}, nil
}

// Save writes the key to keyFilePath in the privval key format.
func (k *PV) Save(keyFilePath string) error {
	pvKey := privval.FilePVKey{
		Address: k.publicKey.Address(),
		PubKey:  k.publicKey,
		PrivKey: k.privateKey,
	}
	dat, err := cmtjson.MarshalIndent(pvKey, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(keyFilePath, dat, 0o600)
}

func (k *PV) PublicKey() []byte {
	return k.publicKey.Bytes()
}

func (k *PV) Address() string {
	return k.publicKey.Address().String()
}

func (k *PV) Sign(data []byte) ([]byte, error) {
	return k.privateKey.Sign(data)
}

// SignTx fills in the public key of btx and signs it for chainId.
func (k *PV) SignTx(btx *tx.DAOTx, chainId string) error {
	btx.PubKey = k.PublicKey()
	dat, err := btx.SigData([]byte(chainId))
	if err != nil {
		return err
	}
	sig, err := k.Sign(dat)
	if err != nil {
		return err
	}
	btx.Sig = [][]byte{sig}
	return nil
}
