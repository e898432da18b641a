package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/mietradar/internal/core/domain"
	"github.com/samirrijal/mietradar/internal/core/usecases"
	"github.com/samirrijal/mietradar/internal/pkg/config"
	"github.com/samirrijal/mietradar/internal/pkg/geospatial"
	"github.com/samirrijal/mietradar/internal/pkg/logging"
	"github.com/samirrijal/mietradar/internal/workflows"
)

var (
	cfg *config.Config

	inputDir   string
	outputDir  string
	categories []string
)

var rootCmd = &cobra.Command{
	Use:   "precompute",
	Short: "Offline builder of bulk rent statistics",
	Long: "Summarizes raw bulk rent observations into the per-neighborhood statistics files " +
		"loaded by the API at startup, either locally or through a Temporal worker.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load("mietradar-precompute")
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		logging.Setup(cfg.Log.Level, cfg.Log.Format, slog.String("service", "mietradar-precompute"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&inputDir, "input", "", "directory with raw bulk observation files (default data.bulk_dir)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "directory for bulk stats files (default data.bulk_dir)")
	rootCmd.PersistentFlags().StringSliceVar(&categories, "category", nil, "categories to rebuild (default all)")
}

// selectedCategories parses --category, accepting the legacy aliases.
func selectedCategories() ([]domain.DwellingCategory, error) {
	if len(categories) == 0 {
		return domain.Categories, nil
	}
	out := make([]domain.DwellingCategory, 0, len(categories))
	for _, s := range categories {
		c, err := domain.ParseCategory(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// newActivities wires the activities from configuration and flags.
func newActivities() (*workflows.BulkActivities, error) {
	hoods, err := geospatial.LoadNeighborhoodsFile(cfg.Data.NeighborhoodsFile)
	if err != nil {
		return nil, fmt.Errorf("load neighborhoods: %w", err)
	}
	in, out := inputDir, outputDir
	if in == "" {
		in = cfg.Data.BulkDir
	}
	if out == "" {
		out = cfg.Data.BulkDir
	}
	slog.Info("precompute configured", "input", in, "output", out, "neighborhoods", len(hoods))
	return &workflows.BulkActivities{
		InputDir:      in,
		OutputDir:     out,
		Neighborhoods: usecases.NewNeighborhoodService(hoods),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
