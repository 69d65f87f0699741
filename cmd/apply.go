package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/anypoint-reconciler/internal/app"
)

var (
	applyManifest string
	applyWatch    bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile every declared resource against the live platform.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.Build(cmd.Context(), viper.GetViper(), applyManifest)
		if err != nil {
			return err
		}
		defer application.Close()

		if applyWatch {
			return application.WatchApply(cmd.Context())
		}

		report, err := application.RunApply(cmd.Context())
		if err != nil {
			return err
		}
		if report.Summary.Failed > 0 {
			exitCode = exitError
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyManifest, "manifest", "f", "manifest.yaml", "Manifest file (.yaml, .yml or .hcl)")
	applyCmd.Flags().BoolVar(&applyWatch, "watch", false, "Re-apply whenever the manifest changes on disk")
	applyCmd.Flags().Bool("no-journal", false, "Do not record this run in the local journal")
	cobra.CheckErr(viper.BindPFlag("journal.disabled", applyCmd.Flags().Lookup("no-journal")))
	rootCmd.AddCommand(applyCmd)
}
