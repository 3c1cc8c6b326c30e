package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
)

const (
	DefaultHomeDir       = "$HOME/.dao"
	DefaultIndexerListen = "127.0.0.1:8088"
	DefaultIndexerDB     = "indexer.db"
	DefaultPollInterval  = 2 * time.Second
)

var (
	ErrEmptyIndexerListen = errors.New("app.indexer_listen must be set when the indexer is enabled")
	ErrInvalidPollPeriod  = errors.New("app.indexer_poll_interval must be positive")
)

type DAOAppConfig struct {
	Home string `mapstructure:"-"`

	EnableIndexer       bool          `mapstructure:"enable_indexer"`
	IndexerListen       string        `mapstructure:"indexer_listen"`
	IndexerDB           string        `mapstructure:"indexer_db"`
	IndexerPollInterval time.Duration `mapstructure:"indexer_poll_interval"`
}

func DefaultDAOAppConfig(home string) *DAOAppConfig {
	return &DAOAppConfig{
		Home:                home,
		EnableIndexer:       true,
		IndexerListen:       DefaultIndexerListen,
		IndexerDB:           DefaultIndexerDB,
		IndexerPollInterval: DefaultPollInterval,
	}
}

// DataDir is where the governance state tree is stored.
func (c *DAOAppConfig) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// IndexerDBPath resolves IndexerDB against the home directory.
func (c *DAOAppConfig) IndexerDBPath() string {
	if filepath.IsAbs(c.IndexerDB) {
		return c.IndexerDB
	}
	return filepath.Join(c.Home, c.IndexerDB)
}

func (c *DAOAppConfig) ValidateBasic() error {
	if !c.EnableIndexer {
		return nil
	}
	if c.IndexerListen == "" {
		return ErrEmptyIndexerListen
	}
	if c.IndexerPollInterval <= 0 {
		return ErrInvalidPollPeriod
	}
	return nil
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *DAOAppConfig `mapstructure:"app"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv(DefaultHomeDir)
	}
	config := &Config{
		DefaultDAOCometConfig(),
		DefaultDAOAppConfig(home),
	}
	config.SetRoot(home)
	_ = os.MkdirAll(filepath.Join(home, "config"), 0o755)
	return config
}

func (c *Config) ValidateBasic() error {
	if err := c.Config.ValidateBasic(); err != nil {
		return err
	}
	if err := c.App.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [app] section: %w", err)
	}
	return nil
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

// DefaultDAOCometConfig shortens the consensus timeouts; block height is the
// governance clock so blocks should be produced at a steady pace.
func DefaultDAOCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 3
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	cometConfig.Consensus.CreateEmptyBlocks = true
	return cometConfig
}
