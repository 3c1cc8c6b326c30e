package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	"github.com/spf13/cobra"
)

func broadcast(args *txArguments, tp tx.DAOTxType, body any) {
	cli, pv, err := args.load()
	if err != nil {
		fmt.Printf("load err:%v\n", err)
		return
	}
	res, err := cli.Broadcast(context.Background(), pv, tp, body)
	if err != nil {
		fmt.Printf("broadcast %s err:%v\n", tp, err)
		return
	}
	dat, _ := json.Marshal(res)
	fmt.Printf("%v\n", string(dat))
}

type initDAOArguments struct {
	txArguments
	Amount uint64
}

var initDAOArgs initDAOArguments

var initDAOCmd = &cobra.Command{
	Use:   "initdao",
	Short: "Mint the initial shares to the owner",
	Run: func(cmd *cobra.Command, args []string) {
		broadcast(&initDAOArgs.txArguments, tx.DAOTxTypeInit, &tx.InitTx{Amount: initDAOArgs.Amount})
	},
}

type proposeArguments struct {
	txArguments
	Applicant string
	Shares    uint64
}

var proposeArgs proposeArguments

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Submit a membership proposal for an applicant",
	Run: func(cmd *cobra.Command, args []string) {
		broadcast(&proposeArgs.txArguments, tx.DAOTxTypeProposal, &tx.ProposalTx{
			Applicant:       proposeArgs.Applicant,
			SharesRequested: proposeArgs.Shares,
		})
	},
}

type voteArguments struct {
	txArguments
	Proposal uint64
	No       bool
}

var voteArgs voteArguments

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Vote yes (default) or no on a proposal",
	Run: func(cmd *cobra.Command, args []string) {
		ballot := types.BallotYes
		if voteArgs.No {
			ballot = types.BallotNo
		}
		broadcast(&voteArgs.txArguments, tx.DAOTxTypeVote, &tx.VoteTx{
			Proposal: voteArgs.Proposal,
			Ballot:   uint8(ballot),
		})
	},
}

type processArguments struct {
	txArguments
	Proposal uint64
}

var processArgs processArguments

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Close the voting of a proposal and apply its outcome",
	Run: func(cmd *cobra.Command, args []string) {
		broadcast(&processArgs.txArguments, tx.DAOTxTypeProcess, &tx.ProcessTx{Proposal: processArgs.Proposal})
	},
}

type transferArguments struct {
	txArguments
	To     string
	Amount uint64
}

var transferArgs transferArguments

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer free shares to another address",
	Run: func(cmd *cobra.Command, args []string) {
		broadcast(&transferArgs.txArguments, tx.DAOTxTypeTransfer, &tx.TransferTx{
			To:     transferArgs.To,
			Amount: transferArgs.Amount,
		})
	},
}

func init() {
	initDAOArgs.bind(initDAOCmd)
	initDAOCmd.Flags().Uint64VarP(&initDAOArgs.Amount, "amount", "m", 0, "shares to mint")

	proposeArgs.bind(proposeCmd)
	proposeCmd.Flags().StringVarP(&proposeArgs.Applicant, "applicant", "a", "", "applicant address")
	proposeCmd.Flags().Uint64VarP(&proposeArgs.Shares, "shares", "n", 0, "shares requested for the applicant")
	_ = proposeCmd.MarkFlagRequired("applicant")

	voteArgs.bind(voteCmd)
	voteCmd.Flags().Uint64VarP(&voteArgs.Proposal, "proposal", "p", 0, "proposal index")
	voteCmd.Flags().BoolVarP(&voteArgs.No, "no", "", false, "vote no")

	processArgs.bind(processCmd)
	processCmd.Flags().Uint64VarP(&processArgs.Proposal, "proposal", "p", 0, "proposal index")

	transferArgs.bind(transferCmd)
	transferCmd.Flags().StringVarP(&transferArgs.To, "to", "t", "", "recipient address")
	transferCmd.Flags().Uint64VarP(&transferArgs.Amount, "amount", "m", 0, "amount to transfer")
	_ = transferCmd.MarkFlagRequired("to")
}
