package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vivify-tools/vivsync/internal/version"
	"github.com/vivify-tools/vivsync/internal/vivsync"
	"github.com/vivify-tools/vivsync/internal/vivsync/watch"
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	var idle time.Duration
	var ignore []string

	watchCmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Watch a directory and sync file writes to the preview server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			slog.Info("vivsync", "version", version.Version, "revision", version.Revision)

			client := vivsync.New(cfg)
			w, err := watch.New(client, dir, idle, ignore...)
			if err != nil {
				return err
			}

			defer client.Flush()
			if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("watch", "error", err)
				return err
			}
			return nil
		},
	}

	watchCmd.Flags().DurationVar(&idle, "idle", watch.DefaultIdle, "quiet period before an idle sync fires")
	watchCmd.Flags().StringSliceVar(&ignore, "ignore", nil, "extra ignore patterns (gitignore syntax)")
	watchCmd.Flags().Bool("instant", false, "sync on every write instead of after the idle period")
	watchCmd.Flags().Bool("auto-scroll", false, "sync cursor position (host-driven; no-op for plain file watches)")
	watchCmd.Flags().StringSlice("filetypes", nil, "filetype patterns to sync (regexp, any-of)")

	viper.BindPFlag("instant_refresh", watchCmd.Flags().Lookup("instant"))
	viper.BindPFlag("auto_scroll", watchCmd.Flags().Lookup("auto-scroll"))
	viper.BindPFlag("filetypes", watchCmd.Flags().Lookup("filetypes"))

	return watchCmd
}
