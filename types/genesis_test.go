package types

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/stretchr/testify/require"
)

func TestGenesisFileRoundTrip(t *testing.T) {
	pk := ed25519.GenPrivKey().PubKey()
	genDoc, err := NewGenesisDoc("dao-test", pk, json.RawMessage(`{"owner":"A"}`))
	require.NoError(t, err)

	genFile := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, ExportGenesisFile(genDoc, genFile))

	loaded, err := LoadGenesisFile(genFile)
	require.NoError(t, err)
	require.Equal(t, "dao-test", loaded.ChainID)
	require.Equal(t, int64(1), loaded.InitialHeight)
	require.Len(t, loaded.Validators, 1)
	require.True(t, pk.Equals(loaded.Validators[0].PubKey))

	section, err := loaded.DAOState()
	require.NoError(t, err)
	require.JSONEq(t, `{"owner":"A"}`, string(section))
}

func TestGenesisValidation(t *testing.T) {
	pk := ed25519.GenPrivKey().PubKey()

	genDoc, err := NewGenesisDoc("", pk, json.RawMessage(`{}`))
	require.NoError(t, err)
	require.ErrorIs(t, genDoc.ValidateAndComplete(), ErrEmptyChainID)

	genDoc.ChainID = "dao-test"
	genDoc.Validators = nil
	require.ErrorIs(t, genDoc.ValidateAndComplete(), ErrNoValidators)

	genDoc, err = NewGenesisDoc("dao-test", pk, json.RawMessage(`{}`))
	require.NoError(t, err)
	genDoc.AppState = json.RawMessage(`{"bank":{}}`)
	require.ErrorIs(t, genDoc.ValidateAndComplete(), ErrMissingDAOModule)
}
