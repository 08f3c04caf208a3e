package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "block-backtest",
	Short: "Block-graph trading strategy backtester",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backtestCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
