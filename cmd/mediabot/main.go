package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/memohai/mediabot/internal/config"
	"github.com/memohai/mediabot/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "mediabot",
	Short:         "Telegram media caption index with a keyword search API",
	Version:       version.GetInfo(),
	SilenceUsage:  true,
	SilenceErrors: false,
	Long: `mediabot stores media sent to a Telegram bot together with its caption
in a JSON index, answers /search from the chat, and serves the index over HTTP.

Running without a subcommand is the same as "mediabot serve".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the TOML config file")
}

func defaultConfigPath() string {
	if value := os.Getenv("CONFIG_PATH"); value != "" {
		return value
	}
	return config.DefaultConfigPath
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
