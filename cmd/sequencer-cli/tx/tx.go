package tx

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtue186/sequencer/cmd/sequencer-cli/client"
	"github.com/virtue186/sequencer/types"
)

// NewTxCmd 按哈希查询交易
func NewTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tx [hash]",
		Short: "Query a transaction by its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := types.FeltFromHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction hash: %w", err)
			}
			apiEndpoint, err := cmd.Flags().GetString("url")
			if err != nil {
				return err
			}
			tx, err := client.New(apiEndpoint).TransactionByHash(hash)
			if err != nil {
				return err
			}
			return printJSON(cmd, tx)
		},
	}
}

// NewReceiptCmd 按交易哈希查询回执
func NewReceiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt [hash]",
		Short: "Query the receipt of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := types.FeltFromHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction hash: %w", err)
			}
			apiEndpoint, err := cmd.Flags().GetString("url")
			if err != nil {
				return err
			}
			receipt, err := client.New(apiEndpoint).TransactionReceipt(hash)
			if err != nil {
				return err
			}
			return printJSON(cmd, receipt)
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
