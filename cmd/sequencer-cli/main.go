package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/virtue186/sequencer/cmd/sequencer-cli/chain"
	"github.com/virtue186/sequencer/cmd/sequencer-cli/tx"
)

var rootCmd = &cobra.Command{
	Use:   "sequencer-cli",
	Short: "A command-line client for querying a sequencer node",
	Long: `sequencer-cli reads chain height, transactions and receipts
from a sequencer node over its JSON-RPC API.`,
}

func init() {
	// 持久化标志，所有子命令共享
	rootCmd.PersistentFlags().String("url", "http://localhost:1234/rpc", "URL of the sequencer RPC API server")
}

func main() {
	rootCmd.AddCommand(chain.NewSpecVersionCmd())
	rootCmd.AddCommand(chain.NewBlockNumberCmd())
	rootCmd.AddCommand(tx.NewTxCmd())
	rootCmd.AddCommand(tx.NewReceiptCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}
