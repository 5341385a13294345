package cmd

import (
	"context"
	"fmt"

	"site-cleaner/feature/cleanup"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyLimit int

// historyCmd lists recorded cleanup runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent cleanup runs",
	Long:  `Lists the cleanup runs recorded in the database, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		registry := cleanup.NewRegistry(afero.NewOsFs(), rt.cfg.Cleaner, rt.client, rt.cfg.Storage.Bucket, rt.db)
		svc := cleanup.NewService(afero.NewOsFs(), registry, nil, rt.cfg.Cleaner, rt.log, rt.db)

		runs, err := svc.History(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}
		if len(runs) == 0 {
			rt.log.Info("No cleanup runs recorded yet.")
			return nil
		}

		for _, run := range runs {
			fields := []zap.Field{
				zap.Uint("id", run.ID),
				zap.String("when", humanize.Time(run.StartedAt)),
				zap.String("destination", run.Destination),
				zap.String("outcome", run.Outcome),
				zap.Int("removed", run.Removed),
				zap.String("reclaimed", humanize.Bytes(uint64(run.ReclaimBytes))),
				zap.Duration("took", run.Duration()),
			}
			if run.Error != "" {
				fields = append(fields, zap.String("error", run.Error))
			}
			rt.log.Info("Cleanup run", fields...)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	RootCmd.AddCommand(historyCmd)
}
