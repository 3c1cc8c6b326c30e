package main

import (
	"fmt"
	"os"
)

func main() {
	nodeCmd.AddCommand(initCmd)
	nodeCmd.AddCommand(versionCmd)
	nodeCmd.AddCommand(accountCmd)
	nodeCmd.AddCommand(keyCmd)
	nodeCmd.AddCommand(initDAOCmd)
	nodeCmd.AddCommand(proposeCmd)
	nodeCmd.AddCommand(voteCmd)
	nodeCmd.AddCommand(processCmd)
	nodeCmd.AddCommand(transferCmd)
	nodeCmd.AddCommand(queryCmd)
	if err := nodeCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
