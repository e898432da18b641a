package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/mietradar/internal/workflows"
)

var submitWait bool

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Start a bulk rebuild workflow",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cats, err := selectedCategories()
		if err != nil {
			return err
		}

		c, err := dialTemporal()
		if err != nil {
			return err
		}
		defer c.Close()

		opts := client.StartWorkflowOptions{
			ID:        "bulk-rebuild-" + uuid.NewString(),
			TaskQueue: cfg.Temporal.TaskQueue,
		}
		run, err := c.ExecuteWorkflow(cmd.Context(), opts, workflows.BulkRebuildWorkflow, workflows.BulkRebuildInput{Categories: cats})
		if err != nil {
			return fmt.Errorf("start workflow: %w", err)
		}
		slog.Info("bulk rebuild submitted", "workflow_id", run.GetID(), "run_id", run.GetRunID())

		if !submitWait {
			return nil
		}
		var result workflows.BulkRebuildResult
		if err := run.Get(cmd.Context(), &result); err != nil {
			return fmt.Errorf("bulk rebuild failed: %w", err)
		}
		for cat, n := range result.Records {
			slog.Info("category done", "category", cat, "records", n)
		}
		for _, cat := range result.Skipped {
			slog.Warn("category skipped", "category", cat)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "wait for the workflow result")
	rootCmd.AddCommand(submitCmd)
}
