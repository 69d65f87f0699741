package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/anypoint-reconciler/internal/app"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded apply runs, or show one run in detail.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := app.OpenHistory(cmd.Context(), viper.GetViper())
		if err != nil {
			return err
		}
		defer history.Close()

		if len(args) == 1 {
			return history.Show(cmd.Context(), args[0])
		}
		return history.List(cmd.Context(), historyLimit)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to list")
	rootCmd.AddCommand(historyCmd)
}
