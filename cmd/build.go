package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/sitepress/internal/assets"
	"github.com/conneroisu/sitepress/internal/config"
	"github.com/conneroisu/sitepress/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [entry.html]",
	Short: "Run one build and write artifacts to the output directory",
	Long: `Run one generation cycle: discover assets from the entrypoint, publish each
as a content-addressed artifact, and write the rewritten HTML last.

Examples:
  sitepress build index.html
  sitepress build index.html --output public
  sitepress build index.html --prefix /static --fallback-404`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindBuildFlags,
	RunE:    runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("output", "o", "dist", "Output directory")
	buildCmd.Flags().String("prefix", "", "Public URL prefix for rewritten references")
	buildCmd.Flags().Bool("fallback-404", false, "Duplicate the page artifact under the 404 name")
}

func bindBuildFlags(cmd *cobra.Command, _ []string) error {
	return bindFlags(cmd, map[string]string{
		"build.output":       "output",
		"build.path_prefix":  "prefix",
		"build.fallback_404": "fallback-404",
	})
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	entry, err := resolveEntrypoint(cfg, args)
	if err != nil {
		return err
	}

	logger := newLogger()
	writer := pipeline.NewWriter(cfg.Build.Output)
	gen := pipeline.NewGenerator(entry, pipeline.Options{
		PathPrefix:        cfg.Build.PathPrefix,
		MainAsFallback404: cfg.Build.Fallback404,
		Workers:           cfg.Build.Workers,
	}, cfg.Toolchain(), logger)

	start := time.Now()
	count := 0
	_, err = gen.Generate(cmd.Context(), func(a assets.Artifact) error {
		count++
		return writer.Write(a)
	})
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d artifacts to %s in %v\n", count, cfg.Build.Output, time.Since(start).Round(time.Millisecond))
	return nil
}

// resolveEntrypoint picks the entrypoint from the positional argument or the
// configuration, in that order.
func resolveEntrypoint(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Build.Entrypoint != "" {
		return cfg.Build.Entrypoint, nil
	}
	return "", fmt.Errorf("no entrypoint: pass one as an argument or set build.entrypoint")
}
