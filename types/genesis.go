package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	cmttypes "github.com/cometbft/cometbft/types"
)

const (
	DAOModuleName = "dao"
	DefaultPower  = 1000
)

const (
	FlagOverwrite = "overwrite"
	FlagChainID   = "chain-id"
	FlagHome      = "home"
	FlagOwner     = "owner"
	FlagSupply    = "initial-supply"
)

var (
	ErrEmptyChainID     = errors.New("genesis doc must include non-empty chain_id")
	ErrNoValidators     = errors.New("genesis doc must include at least one validator")
	ErrMissingDAOModule = errors.New("genesis app_state has no dao section")
)

// GenesisState maps module names to their raw genesis sections.
type GenesisState map[string]json.RawMessage

// Module returns the raw section of name.
func (gs GenesisState) Module(name string) (json.RawMessage, error) {
	section, ok := gs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingDAOModule, name)
	}
	return section, nil
}

type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisDoc is the CometBFT genesis file. AppState is a GenesisState with
// the governance parameters under DAOModuleName.
type GenesisDoc struct {
	GenesisTime     time.Time                 `json:"genesis_time"`
	ChainID         string                    `json:"chain_id"`
	InitialHeight   int64                     `json:"initial_height"`
	ConsensusParams *cmttypes.ConsensusParams `json:"consensus_params,omitempty"`
	Validators      []GenesisValidator        `json:"validators"`
	AppHash         []byte                    `json:"app_hash"`
	AppState        json.RawMessage           `json:"app_state"`
}

// NewGenesisDoc starts a single validator chain whose app_state holds
// daoState as the dao module section.
func NewGenesisDoc(chainID string, pk crypto.PubKey, daoState json.RawMessage) (*GenesisDoc, error) {
	appState, err := json.Marshal(GenesisState{DAOModuleName: daoState})
	if err != nil {
		return nil, err
	}
	return &GenesisDoc{
		GenesisTime:     time.Now().Round(0).UTC(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators:      []GenesisValidator{{Address: pk.Address(), PubKey: pk, Power: DefaultPower}},
		AppState:        appState,
	}, nil
}

// DAOState returns the dao module section of the app_state.
func (genDoc *GenesisDoc) DAOState() (json.RawMessage, error) {
	var gs GenesisState
	if err := json.Unmarshal(genDoc.AppState, &gs); err != nil {
		return nil, fmt.Errorf("decode app_state: %w", err)
	}
	return gs.Module(DAOModuleName)
}

func (genDoc *GenesisDoc) ValidateAndComplete() error {
	if genDoc.ChainID == "" {
		return ErrEmptyChainID
	}
	if genDoc.InitialHeight < 0 {
		return fmt.Errorf("initial_height cannot be negative (got %v)", genDoc.InitialHeight)
	}
	if genDoc.InitialHeight == 0 {
		genDoc.InitialHeight = 1
	}
	if len(genDoc.Validators) == 0 {
		return ErrNoValidators
	}
	for i, v := range genDoc.Validators {
		if v.Power <= 0 {
			return fmt.Errorf("validator %d has non-positive power %d", i, v.Power)
		}
	}
	if _, err := genDoc.DAOState(); err != nil {
		return err
	}
	if genDoc.GenesisTime.IsZero() {
		genDoc.GenesisTime = time.Now().Round(0).UTC()
	}
	return nil
}

func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := cmtjson.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func LoadGenesisFile(genFile string) (*GenesisDoc, error) {
	dat, err := os.ReadFile(genFile)
	if err != nil {
		return nil, err
	}
	genDoc := new(GenesisDoc)
	if err := cmtjson.Unmarshal(dat, genDoc); err != nil {
		return nil, fmt.Errorf("decode genesis %s: %w", genFile, err)
	}
	return genDoc, nil
}

// ExportGenesisFile validates genesis and writes it to genFile.
func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}
