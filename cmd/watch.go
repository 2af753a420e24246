package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/sitepress/internal/config"
	"github.com/conneroisu/sitepress/internal/pipeline"
	"github.com/conneroisu/sitepress/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [entry.html]",
	Short: "Rebuild to disk whenever a contributing file changes",
	Long: `Run the build in a loop: after each build, block until any file that
contributed to it changes (including transitive script dependencies), then
rebuild the full output set. Useful behind an external web server.

Examples:
  sitepress watch index.html
  sitepress watch index.html --output public`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindWatchFlags,
	RunE:    runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("output", "o", "dist", "Output directory")
	watchCmd.Flags().String("prefix", "", "Public URL prefix for rewritten references")
}

func bindWatchFlags(cmd *cobra.Command, _ []string) error {
	return bindFlags(cmd, map[string]string{
		"build.output":      "output",
		"build.path_prefix": "prefix",
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	debounce := time.Duration(cfg.Development.DebounceMs) * time.Millisecond

	loop := pipeline.NewWatchLoop(entry, pipeline.Options{
		PathPrefix:        cfg.Build.PathPrefix,
		MainAsFallback404: cfg.Build.Fallback404,
		InsertLiveReload:  cfg.Development.LiveReload,
		LiveReloadPort:    cfg.Development.LiveReloadPort,
		Workers:           cfg.Build.Workers,
	}, cfg.Toolchain(), watcher.New(debounce, logger), logger)

	return loop.Run(cmd.Context(), writer.Write)
}
