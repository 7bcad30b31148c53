package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Hem1234567/laras-07/internal/fallback"
	"github.com/Hem1234567/laras-07/internal/sink"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the curated project list to the remote table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("remote"); err != nil {
			return err
		}
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		bulk, _ := cmd.Flags().GetBool("bulk")
		if file == "" {
			file = cfg.Fallback.File
		}

		supplier, err := fallback.Open(file)
		if err != nil {
			return err
		}
		records := supplier.Fallback()

		raw, err := sink.NewUpserter(ctx, cfg.Remote)
		if err != nil {
			return eris.Wrap(err, "seed")
		}
		up := sink.WithRetry(raw, remoteBackoff(cfg.Remote))
		defer up.Close() //nolint:errcheck

		if pg, ok := raw.(*sink.PostgresUpserter); ok && bulk {
			n, err := pg.UpsertBatch(ctx, records)
			if err != nil {
				return eris.Wrap(err, "seed: bulk upsert")
			}
			zap.L().Info("seed complete", zap.String("sink", up.Name()), zap.Int64("rows", n))
			fmt.Fprintf(os.Stdout, "Upserted %d records (bulk)\n", n)
			return nil
		}

		stats, err := sink.UpsertAll(ctx, up, records)
		if err != nil {
			return eris.Wrap(err, "seed")
		}
		zap.L().Info("seed complete",
			zap.String("sink", up.Name()),
			zap.Int("succeeded", stats.Succeeded),
			zap.Int("failed", stats.Failed),
		)
		fmt.Fprintf(os.Stdout, "Upserted %d of %d records\n", stats.Succeeded, stats.Attempted)
		for _, f := range stats.Failures {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", f.ProjectCode, f.Err)
		}
		if stats.Failed > 0 {
			return eris.Errorf("seed: %d records failed", stats.Failed)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "curated project list (YAML or JSON; default from config, else built-in list)")
	seedCmd.Flags().Bool("bulk", false, "use a single batched statement (postgres driver only)")
	rootCmd.AddCommand(seedCmd)
}
