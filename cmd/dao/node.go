package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/calehh/hac-dao/agent"
	"github.com/calehh/hac-dao/app"
	app_config "github.com/calehh/hac-dao/config"
	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	nm "github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var homeDir string

var nodeCmd = &cobra.Command{
	Use:   "dao",
	Short: "dao runs a shares based governance chain",
	Long: `A member-governed DAO on CometBFT. Members vote with shares
on applicants who ask to join; passing proposals mint new shares.`,
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	nodeCmd.Flags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
}

func loadConfig(home string) (*app_config.Config, error) {
	appConfig := app_config.DefaultConfig(home)
	viper.SetConfigFile(filepath.Join(appConfig.RootDir, "config", "config.toml"))
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := viper.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	appConfig.App.Home = appConfig.RootDir
	if err := appConfig.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid configuration data: %w", err)
	}
	return appConfig, nil
}

func run(cmd *cobra.Command, args []string) {
	appConfig, err := loadConfig(homeDir)
	if err != nil {
		log.Fatal(err)
	}

	pv := privval.LoadFilePV(
		appConfig.PrivValidatorKeyFile(),
		appConfig.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(appConfig.NodeKeyFile())
	if err != nil {
		log.Fatalf("failed to load node's key: %v", err)
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err = cmtflags.ParseLogLevel(appConfig.LogLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}

	daoApp, err := app.NewDAOApp(appConfig.App, logger)
	if err != nil {
		log.Fatalf("new App err:%v", err)
	}

	node, err := nm.NewNode(
		appConfig.Config,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(daoApp),
		nm.DefaultGenesisDocProviderFunc(appConfig.Config),
		cmtconfig.DefaultDBProvider,
		nm.DefaultMetricsProvider(appConfig.Instrumentation),
		logger,
	)
	if err != nil {
		log.Fatalf("Creating node: %v", err)
	}

	daoApp.Start(node.BlockStore())
	if err = node.Start(); err != nil {
		log.Fatalf("start comet node err %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	if appConfig.App.EnableIndexer {
		if err = startIndexer(ctx, appConfig, logger); err != nil {
			log.Fatalf("start indexer err %s", err.Error())
		}
	}

	defer func() {
		log.Println("shut down...")
		cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := node.Stop(); err != nil {
				logger.Error("stop comet node", "err", err)
			}
			node.Wait()
			daoApp.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

func startIndexer(ctx context.Context, appConfig *app_config.Config, logger cmtlog.Logger) error {
	rpcUrl, err := url.Parse(appConfig.RPC.ListenAddress)
	if err != nil {
		return err
	}
	rpcUrl.Scheme = "http"
	indexer, err := agent.NewChainIndexer(logger, appConfig.App.IndexerDBPath(), rpcUrl.String(), appConfig.App.IndexerPollInterval)
	if err != nil {
		return err
	}
	go indexer.Start(ctx)

	service := agent.NewService(appConfig.App.IndexerListen, indexer)
	go func() {
		if err := service.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("indexer service stopped", "err", err)
		}
	}()
	return nil
}
