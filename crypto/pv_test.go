package crypto

import (
	"path/filepath"
	"testing"

	"github.com/calehh/hac-dao/tx"
	"github.com/stretchr/testify/require"
)

func TestSignTx(t *testing.T) {
	pv := GenPV()
	btx := &tx.DAOTx{
		Version: tx.DAOTxVersion1,
		Type:    tx.DAOTxTypeTransfer,
		Nonce:   3,
		Tx:      &tx.TransferTx{To: "B", Amount: 7},
	}
	require.NoError(t, pv.SignTx(btx, "dao-test"))

	sender, err := btx.Sender()
	require.NoError(t, err)
	require.Equal(t, pv.Address(), sender)

	ok, err := btx.VerifySig("dao-test")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = btx.VerifySig("other-chain")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveLoad(t *testing.T) {
	pv := GenPV()
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, pv.Save(path))

	loaded, err := LoadFilePV(path)
	require.NoError(t, err)
	require.Equal(t, pv.Address(), loaded.Address())
	require.Equal(t, pv.PublicKey(), loaded.PublicKey())
}
