package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memohai/mediabot/internal/boot"
	"github.com/memohai/mediabot/internal/config"
	"github.com/memohai/mediabot/internal/logger"
	"github.com/memohai/mediabot/internal/media"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every record in the media index as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := readIndex(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return writeRecords(cmd.OutOrStdout(), records)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword...>",
	Short: "Print records whose caption contains the keyword as JSON",
	Long: `Search matches the keyword case-insensitively against captions.
Multiple arguments are joined with a single space.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := readIndex(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return writeRecords(cmd.OutOrStdout(), media.Filter(records, strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(listCmd, searchCmd)
}

// readIndex loads the index without starting the bot; logs go to stderr.
func readIndex(stderr io.Writer) ([]media.Record, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(stderr, cfg.Log.Level, cfg.Log.Format)
	path := boot.ResolveStorePath(cfg)
	records, err := media.ReadFile(path)
	if err != nil {
		log.Error("read media index failed", slog.String("path", path), slog.Any("error", err))
		return nil, err
	}
	log.Debug("media index read", slog.String("path", path), slog.Int("records", len(records)))
	return records, nil
}

func writeRecords(w io.Writer, records []media.Record) error {
	data, err := media.EncodeRecords(records)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
