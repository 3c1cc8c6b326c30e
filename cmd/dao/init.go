package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	app_config "github.com/calehh/hac-dao/config"
	"github.com/calehh/hac-dao/dao"
	"github.com/calehh/hac-dao/types"
	"github.com/spf13/cobra"
)

type printInfo struct {
	Moniker    string          `json:"moniker" yaml:"moniker"`
	ChainID    string          `json:"chain_id" yaml:"chain_id"`
	NodeID     string          `json:"node_id" yaml:"node_id"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)

	return err
}

const (
	flagVotingPeriod   = "voting-period"
	flagStartingOffset = "starting-offset"
	flagMinDeposit     = "min-deposit"
	flagReward         = "processing-reward"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, p2p, genesis, and application configuration files",
	Long: `Initialize validators's and node's configuration files.
The genesis app_state carries the DAO parameters. When --owner is empty the
validator key becomes the owner.`,
	Args: cobra.ExactArgs(0),
	RunE: initRun,
}

func init() {
	defaults := dao.DefaultConfig()
	initCmd.Flags().BoolP(types.FlagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(types.FlagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().String(types.FlagHome, "", "node home directory")
	initCmd.Flags().String(types.FlagOwner, "", "address allowed to initialize the token")
	initCmd.Flags().Uint64(types.FlagSupply, 0, "shares minted to the owner at genesis, 0 leaves the token uninitialized")
	initCmd.Flags().Uint64(flagVotingPeriod, defaults.VotingPeriodLength, "voting period length in blocks")
	initCmd.Flags().Uint64(flagStartingOffset, defaults.StartingPeriodOffset, "blocks between submission and the start of voting")
	initCmd.Flags().Uint64(flagMinDeposit, defaults.MinimumDeposit, "deposit locked for every proposal")
	initCmd.Flags().Uint64(flagReward, defaults.ProcessingReward, "part of the deposit paid to whoever processes a proposal")
}

func daoConfigFromFlags(cmd *cobra.Command) dao.Config {
	cfg := dao.DefaultConfig()
	cfg.Owner, _ = cmd.Flags().GetString(types.FlagOwner)
	cfg.InitialSupply, _ = cmd.Flags().GetUint64(types.FlagSupply)
	cfg.VotingPeriodLength, _ = cmd.Flags().GetUint64(flagVotingPeriod)
	cfg.StartingPeriodOffset, _ = cmd.Flags().GetUint64(flagStartingOffset)
	cfg.MinimumDeposit, _ = cmd.Flags().GetUint64(flagMinDeposit)
	cfg.ProcessingReward, _ = cmd.Flags().GetUint64(flagReward)
	return cfg
}

func initRun(cmd *cobra.Command, args []string) error {
	home, _ := cmd.Flags().GetString(types.FlagHome)
	chainID, _ := cmd.Flags().GetString(types.FlagChainID)
	overwrite, _ := cmd.Flags().GetBool(types.FlagOverwrite)
	if chainID == "" {
		chainID = fmt.Sprintf("dao-chain-%v", rand.Uint64())
	}
	appConfig := app_config.DefaultConfig(home)

	genFile := appConfig.GenesisFile()
	if existing, err := types.LoadGenesisFile(genFile); err == nil && !overwrite {
		return fmt.Errorf("genesis file %s of chain %s already exists, use --%s to replace it", genFile, existing.ChainID, types.FlagOverwrite)
	}

	nodeID, pk, err := app_config.InitializeNodeValidatorFiles(appConfig, nil)
	if err != nil {
		return err
	}

	daoConfig := daoConfigFromFlags(cmd)
	if daoConfig.Owner == "" {
		daoConfig.Owner = pk.Address().String()
	}
	if err = daoConfig.Validate(); err != nil {
		return err
	}
	daoState, err := daoConfig.Marshal()
	if err != nil {
		return err
	}
	appGenesis, err := types.NewGenesisDoc(chainID, pk, daoState)
	if err != nil {
		return err
	}
	if err = types.ExportGenesisFile(appGenesis, genFile); err != nil {
		return fmt.Errorf("Failed to export genesis file %v", err)
	}
	app_config.WriteConfigFile(filepath.Join(appConfig.RootDir, "config", "config.toml"), appConfig)
	return displayInfo(printInfo{ChainID: chainID, NodeID: nodeID, AppMessage: appGenesis.AppState})
}
