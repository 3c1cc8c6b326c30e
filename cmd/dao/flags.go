package main

import (
	"os"

	"github.com/calehh/hac-dao/agent"
	"github.com/calehh/hac-dao/crypto"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"
)

const defaultKeyPath = "./config/priv_validator_key.json"

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", "http://127.0.0.1:26657", "dao node rpc url")
}

func keyFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "skeyPath", "s", defaultKeyPath, "private key path")
}

func newClient(url string) (*agent.Client, error) {
	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stderr))
	return agent.NewClient(url, cmtlog.NewFilter(logger, cmtlog.AllowError()))
}

type txArguments struct {
	Url  string
	Skey string
}

func (a *txArguments) bind(cmd *cobra.Command) {
	urlFlag(cmd, &a.Url)
	keyFlag(cmd, &a.Skey)
}

func (a *txArguments) load() (*agent.Client, *crypto.PV, error) {
	pv, err := crypto.LoadFilePV(a.Skey)
	if err != nil {
		return nil, nil, err
	}
	cli, err := newClient(a.Url)
	if err != nil {
		return nil, nil, err
	}
	return cli, pv, nil
}
