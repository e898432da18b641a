package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rebuild bulk statistics locally",
	Long:  "Rebuilds the bulk statistics of every selected category in parallel, without Temporal.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cats, err := selectedCategories()
		if err != nil {
			return err
		}
		acts, err := newActivities()
		if err != nil {
			return err
		}

		counts := make([]int, len(cats))
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range cats {
			g.Go(func() error {
				n, err := acts.RebuildCategory(gctx, c)
				if err != nil {
					return fmt.Errorf("rebuild %s: %w", c, err)
				}
				counts[i] = n
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, c := range cats {
			slog.Info("category done", "category", c, "records", counts[i])
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(runCmd) }
