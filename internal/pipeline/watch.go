package pipeline

import (
	"context"

	"github.com/conneroisu/sitepress/internal/logging"
	"github.com/conneroisu/sitepress/internal/toolchain"
	"github.com/conneroisu/sitepress/internal/watcher"
)

// WatchLoop regenerates the full output set whenever a file that contributed
// to the last build changes. States: building, streaming to the consumer,
// waiting on the watch set; the loop has no terminal state other than context
// cancellation, and a failed build propagates out rather than being retried —
// it indicates a persistent authoring error.
type WatchLoop struct {
	gen     *Generator
	watcher *watcher.PathWatcher
	logger  logging.Logger
}

// NewWatchLoop wraps a generator in a watch loop. Watch-path collection is
// forced on for every cycle; live-reload injection follows the options, so a
// caller serving through an external web server can leave it off.
func NewWatchLoop(entry string, opts Options, tools *toolchain.Toolchain, pw *watcher.PathWatcher, logger logging.Logger) *WatchLoop {
	opts.WatchPaths = true
	return &WatchLoop{
		gen:     NewGenerator(entry, opts, tools, logger),
		watcher: pw,
		logger:  logger.WithComponent("watch"),
	}
}

// Run builds, streams, waits, and repeats until ctx is cancelled or a build
// fails. The watch-path set is recomputed from scratch every cycle: files no
// longer referenced stop being watched, newly referenced files are picked up
// on the next cycle.
func (w *WatchLoop) Run(ctx context.Context, emit Emit) error {
	for {
		build, err := w.gen.Generate(ctx, emit)
		if err != nil {
			return err
		}
		w.logger.Info(ctx, "build complete", "page", build.PageArtifact, "watching", len(build.WatchPaths))

		if _, err := w.watcher.WaitForChange(ctx, build.WatchPaths); err != nil {
			return err
		}
	}
}
