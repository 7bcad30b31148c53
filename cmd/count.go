package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Hem1234567/laras-07/internal/sink"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of rows in the remote projects table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("remote"); err != nil {
			return err
		}
		ctx := cmd.Context()

		raw, err := sink.NewUpserter(ctx, cfg.Remote)
		if err != nil {
			return eris.Wrap(err, "count")
		}
		up := sink.WithRetry(raw, remoteBackoff(cfg.Remote))
		defer up.Close() //nolint:errcheck

		n, err := up.Count(ctx)
		if err != nil {
			return eris.Wrap(err, "count")
		}
		fmt.Fprintf(os.Stdout, "%s: %d rows in %s\n", up.Name(), n, cfg.Remote.Table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
