package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/memohai/mediabot/cmd/mediabot/modules"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the HTTP query API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app := fx.New(modules.Options(modules.ConfigPath(configPath)))
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}
