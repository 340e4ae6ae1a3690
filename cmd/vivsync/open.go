package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vivify-tools/vivsync/internal/utils"
	"github.com/vivify-tools/vivsync/internal/vivsync"
)

func init() {
	rootCmd.AddCommand(newOpenCmd())
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open FILE [LINE]",
		Short: "Open a Vivify preview window for FILE",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			path, err := utils.ResolvePath(args[0])
			if err != nil {
				return err
			}

			line := 1
			if len(args) == 2 {
				line, err = strconv.Atoi(args[1])
				if err != nil || line < 1 {
					return fmt.Errorf("invalid line %q", args[1])
				}
			}

			c := vivsync.New(cfg)
			if err := c.OpenViewer(path, line); err != nil {
				return err
			}
			c.Flush()
			return nil
		},
	}
}
