package app

import (
	"encoding/json"

	"github.com/calehh/hac-dao/dao"
	"github.com/calehh/hac-dao/types"
)

// ParseAppState reads the dao parameters from a genesis app_state.
func ParseAppState(raw []byte) (cfg dao.Config, err error) {
	var gs types.GenesisState
	if err = json.Unmarshal(raw, &gs); err != nil {
		return
	}
	section, err := gs.Module(types.DAOModuleName)
	if err != nil {
		return
	}
	return dao.ParseConfig(section)
}

// NewAppState builds a genesis app_state holding cfg.
func NewAppState(cfg dao.Config) (json.RawMessage, error) {
	section, err := cfg.Marshal()
	if err != nil {
		return nil, err
	}
	return json.Marshal(types.GenesisState{types.DAOModuleName: section})
}
