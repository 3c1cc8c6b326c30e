package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/calehh/hac-dao/crypto"
	"github.com/spf13/cobra"
)

type accountArguments struct {
	Url     string
	Address string
	Skey    string
}

var accountArgs accountArguments

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show balance, locked deposit and nonce of an account",
	Run:   accountRun,
}

func init() {
	urlFlag(accountCmd, &accountArgs.Url)
	accountCmd.Flags().StringVarP(&accountArgs.Address, "address", "a", "", "account address, defaults to the key's address")
	keyFlag(accountCmd, &accountArgs.Skey)
}

func accountRun(cmd *cobra.Command, args []string) {
	address := accountArgs.Address
	if address == "" {
		pv, err := crypto.LoadFilePV(accountArgs.Skey)
		if err != nil {
			fmt.Printf("load key err:%v\n", err)
			return
		}
		address = pv.Address()
	}
	cli, err := newClient(accountArgs.Url)
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	act, err := cli.Account(context.Background(), address)
	if err != nil {
		fmt.Printf("query account err:%v\n", err)
		return
	}
	fmt.Printf("addr:%v balance:%v locked:%v nonce:%v\n", act.Address, act.Free, act.Locked, act.Nonce)
}

type keyArguments struct {
	Skey string
}

var keyArgs keyArguments

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the public key and address of a key file",
	Run:   keyRun,
}

var keyGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a new key file",
	Args:  cobra.ExactArgs(0),
	Run:   keyGenRun,
}

func init() {
	keyCmd.PersistentFlags().StringVarP(&keyArgs.Skey, "skeyPath", "s", defaultKeyPath, "private key path")
	keyCmd.AddCommand(keyGenCmd)
}

func keyRun(cmd *cobra.Command, args []string) {
	pv, err := crypto.LoadFilePV(keyArgs.Skey)
	if err != nil {
		fmt.Printf("load key err:%v\n", err)
		return
	}
	printKey(pv)
}

func keyGenRun(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(keyArgs.Skey); err == nil {
		fmt.Printf("key file %s already exists\n", keyArgs.Skey)
		return
	}
	pv := crypto.GenPV()
	if err := pv.Save(keyArgs.Skey); err != nil {
		fmt.Printf("save key err:%v\n", err)
		return
	}
	printKey(pv)
}

func printKey(pv *crypto.PV) {
	fmt.Println("pubkey:", hex.EncodeToString(pv.PublicKey()))
	fmt.Println("address:", pv.Address())
}
