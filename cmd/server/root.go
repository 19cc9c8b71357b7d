package main

import (
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "cashmate",
	Short: "CashMate personal finance backend",
	Long: `CashMate serves the personal finance API: accounts, transactions,
savings goals, reminders, notifications and the finance chat assistant.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to a config file (default: ./cashmate.{yaml,json,toml} if present)")
	rootCmd.AddCommand(serveCmd, seedCmd)
}
