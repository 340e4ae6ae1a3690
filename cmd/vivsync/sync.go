package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vivify-tools/vivsync/internal/utils"
	"github.com/vivify-tools/vivsync/internal/vivsync"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newCursorCmd())
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync FILE",
		Short: "Push the current content of FILE to the preview server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			path, err := utils.ResolvePath(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			c := vivsync.New(cfg)
			c.SyncText(path, string(data))
			// one-shot process: wait for the request before exiting
			c.Flush()
			return nil
		},
	}
}

func newCursorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cursor FILE LINE",
		Short: "Push a 1-based cursor line for FILE to the preview server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			path, err := utils.ResolvePath(args[0])
			if err != nil {
				return err
			}
			line, err := strconv.Atoi(args[1])
			if err != nil || line < 1 {
				return fmt.Errorf("invalid line %q", args[1])
			}

			c := vivsync.New(cfg)
			c.SyncCursor(path, line)
			c.Flush()
			return nil
		},
	}
}
