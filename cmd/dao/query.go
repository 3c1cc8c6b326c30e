package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calehh/hac-dao/agent"
	"github.com/spf13/cobra"
)

type queryArguments struct {
	Url string
}

var queryArgs queryArguments

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query governance state of a node",
}

var queryDAOCmd = &cobra.Command{
	Use:   "dao",
	Short: "Show parameters, share totals and proposal count",
	Args:  cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		queryRun(func(ctx context.Context, c *agent.Client) (any, error) { return c.DAO(ctx) })
	},
}

var queryProposalCmd = &cobra.Command{
	Use:   "proposal [index]",
	Short: "Show a proposal",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var idx uint64
		if _, err := fmt.Sscan(args[0], &idx); err != nil {
			fmt.Printf("invalid proposal index:%v\n", args[0])
			return
		}
		queryRun(func(ctx context.Context, c *agent.Client) (any, error) { return c.Proposal(ctx, idx) })
	},
}

var queryMemberCmd = &cobra.Command{
	Use:   "member [address]",
	Short: "Show a member record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		queryRun(func(ctx context.Context, c *agent.Client) (any, error) { return c.Member(ctx, args[0]) })
	},
}

func init() {
	queryCmd.PersistentFlags().StringVarP(&queryArgs.Url, "url", "u", "http://127.0.0.1:26657", "dao node rpc url")
	queryCmd.AddCommand(queryDAOCmd)
	queryCmd.AddCommand(queryProposalCmd)
	queryCmd.AddCommand(queryMemberCmd)
}

func queryRun(fn func(ctx context.Context, c *agent.Client) (any, error)) {
	cli, err := newClient(queryArgs.Url)
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	res, err := fn(context.Background(), cli)
	if err != nil {
		fmt.Printf("query err:%v\n", err)
		return
	}
	dat, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(dat))
}
