package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apperrors "github.com/olusolaa/anypoint-reconciler/internal/errors"
)

// Exit codes: 0 clean, 1 error, 2 pending changes (plan only).
const (
	exitClean   = 0
	exitError   = 1
	exitPending = 2
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	noColor   bool

	exitCode = exitClean
)

var rootCmd = &cobra.Command{
	Use:   "anypoint-reconciler",
	Short: "Reconciles declared Anypoint Platform resources against the live platform.",
	Long: `anypoint-reconciler reads a manifest of declared Anypoint Platform
resources (business groups, environments, users, Exchange assets, managed
APIs, policies, contracts, MQ destinations, CloudHub applications, Design
Center projects) and converges the platform toward it with the minimal set
of mutations. 'plan' shows what would change, 'apply' changes it, 'history'
lists what past runs did.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(err)
		os.Exit(exitError)
	}
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is ./anypoint-reconciler.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Override log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cobra.CheckErr(viper.BindPFlag("settings.log_level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("settings.log_format", rootCmd.PersistentFlags().Lookup("log-format")))
	cobra.CheckErr(viper.BindPFlag("settings.no_color", rootCmd.PersistentFlags().Lookup("no-color")))

	viper.SetEnvPrefix("ANYPOINT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The session settings read as ANYPOINT_BEARER, not
	// ANYPOINT_ANYPOINT_BEARER, so they bind without the prefix doubling.
	cobra.CheckErr(viper.BindEnv("anypoint.host", "ANYPOINT_HOST"))
	cobra.CheckErr(viper.BindEnv("anypoint.bearer", "ANYPOINT_BEARER"))
	cobra.CheckErr(viper.BindEnv("anypoint.organization", "ANYPOINT_ORGANIZATION"))
	cobra.CheckErr(viper.BindEnv("anypoint.environment", "ANYPOINT_ENVIRONMENT"))
}

func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName("anypoint-reconciler")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "reading the configuration file")
		}
	}
	return nil
}

func reportError(err error) {
	msg, suggestion, ok := apperrors.GetUserFacingMessage(err)
	if !ok {
		msg = err.Error()
		suggestion = ""
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
	}
}
