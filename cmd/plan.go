package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/anypoint-reconciler/internal/app"
)

var planManifest string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what an apply would change, without mutating anything.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.Build(cmd.Context(), viper.GetViper(), planManifest)
		if err != nil {
			return err
		}
		defer application.Close()

		report, err := application.RunPlan(cmd.Context())
		if err != nil {
			return err
		}
		switch {
		case report.Summary.Failed > 0:
			exitCode = exitError
		case report.Summary.HasChanges():
			exitCode = exitPending
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planManifest, "manifest", "f", "manifest.yaml", "Manifest file (.yaml, .yml or .hcl)")
	rootCmd.AddCommand(planCmd)
}
