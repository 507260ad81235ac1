package chain

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtue186/sequencer/cmd/sequencer-cli/client"
)

// NewSpecVersionCmd 查询节点实现的 JSON-RPC 规范版本
func NewSpecVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spec-version",
		Short: "Print the JSON-RPC specification version served by the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiEndpoint, err := cmd.Flags().GetString("url")
			if err != nil {
				return err
			}
			version, err := client.New(apiEndpoint).SpecVersion()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

// NewBlockNumberCmd 查询当前链高度
func NewBlockNumberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block-number",
		Short: "Print the current chain height",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiEndpoint, err := cmd.Flags().GetString("url")
			if err != nil {
				return err
			}
			number, err := client.New(apiEndpoint).BlockNumber()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), number)
			return nil
		},
	}
}
