package main

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	var configPath string
	var proxyFile string

	// rootCmd runs the validator when called without a subcommand
	var rootCmd = &cobra.Command{
		Use:          "storkpull",
		Short:        "Stork oracle price validator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidator(cmd.Context(), configPath, proxyFile)
		},
	}

	var runCmd = &cobra.Command{
		Use:          "run",
		Short:        "Validate signed prices for every configured account",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidator(cmd.Context(), configPath, proxyFile)
		},
	}

	var proxiesCmd = &cobra.Command{
		Use:   "proxies",
		Short: "Print the proxy assignment for the configured accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printAssignments(cmd.OutOrStdout(), configPath, proxyFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "config file path (.json, .jsonc or .yaml)")
	rootCmd.PersistentFlags().StringVarP(&proxyFile, "proxies", "p", "", "proxy list file, overrides proxies.file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(proxiesCmd)

	return rootCmd
}

func main() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
