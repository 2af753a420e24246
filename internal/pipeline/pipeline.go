// Package pipeline orchestrates generation cycles: parse the entrypoint,
// discover its assets, produce every artifact, serialize the rewritten
// document last, and collect the watch-path set for the next cycle. Every
// cycle recomputes from scratch; nothing is cached across builds.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conneroisu/sitepress/internal/assets"
	"github.com/conneroisu/sitepress/internal/document"
	"github.com/conneroisu/sitepress/internal/errors"
	"github.com/conneroisu/sitepress/internal/logging"
	"github.com/conneroisu/sitepress/internal/toolchain"
)

// Fallback404Name is the synthetic artifact name used for single-page-app
// routing fallback.
const Fallback404Name = "404"

// defaultWorkers bounds concurrent asset production within one cycle.
const defaultWorkers = 4

// Options configures a generation cycle.
type Options struct {
	// PathPrefix is the public URL prefix written into rewritten
	// references.
	PathPrefix string
	// WatchPaths enables collection of the watch-path set. Skipped
	// entirely when off, since the script dependency query is expensive.
	WatchPaths bool
	// InsertLiveReload injects the live-reload client script into the
	// body before serialization.
	InsertLiveReload bool
	// LiveReloadPort is the port the injected script points at.
	LiveReloadPort int
	// MainAsFallback404 duplicates the page artifact under the synthetic
	// 404 name.
	MainAsFallback404 bool
	// OnBuild, when set, runs after each completed cycle with its summary.
	OnBuild func(*Build)
	// Workers bounds concurrent asset production. Zero means the default.
	Workers int
}

// Emit receives completed artifacts in discovery order. The page artifact
// arrives after every asset artifact; an optional 404 duplicate arrives last.
type Emit func(assets.Artifact) error

// Build summarizes a completed generation cycle.
type Build struct {
	// PageName is the entrypoint filename minus its extension.
	PageName string
	// PageArtifact is the name of the serialized HTML artifact.
	PageArtifact string
	// WatchPaths is every local file that contributed to this build, in
	// first-seen order. Empty unless Options.WatchPaths was set.
	WatchPaths []string
}

// Generator runs generation cycles for one entrypoint.
type Generator struct {
	entry  string
	opts   Options
	tools  *toolchain.Toolchain
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(entry string, opts Options, tools *toolchain.Toolchain, logger logging.Logger) *Generator {
	return &Generator{
		entry:  entry,
		opts:   opts,
		tools:  tools,
		logger: logger.WithComponent("pipeline"),
	}
}

// Generate runs one full cycle, streaming artifacts to emit. Assets produce
// concurrently but their artifacts are emitted in discovery order, and all
// production completes before the document serializes. Any failure aborts the
// cycle; artifacts already emitted from an aborted cycle must be discarded by
// the caller.
func (g *Generator) Generate(ctx context.Context, emit Emit) (*Build, error) {
	data, err := os.ReadFile(g.entry)
	if err != nil {
		return nil, errors.ReadError(g.entry, err)
	}

	doc, err := document.Parse(g.entry, data)
	if err != nil {
		return nil, err
	}

	discovered := doc.Assets(ctx, g.logger, g.tools)
	g.logger.Debug(ctx, "assets discovered", "count", len(discovered))

	if g.opts.InsertLiveReload {
		doc.InjectLiveReload(g.opts.LiveReloadPort)
	}

	params := doc.Params(g.opts.PathPrefix)
	if err := g.produceAll(ctx, discovered, params, emit); err != nil {
		return nil, err
	}

	page, err := doc.Serialize()
	if err != nil {
		return nil, err
	}

	pageArtifact := assets.Artifact{
		Name:      filepath.Base(doc.Path()),
		Body:      page,
		MediaType: assets.MediaTypeHTML,
		ModTime:   assets.FixedModTime,
	}
	if err := emit(pageArtifact); err != nil {
		return nil, err
	}

	if g.opts.MainAsFallback404 {
		fallback := pageArtifact
		fallback.Name = Fallback404Name
		if err := emit(fallback); err != nil {
			return nil, err
		}
	}

	build := &Build{
		PageName:     doc.PageName(),
		PageArtifact: pageArtifact.Name,
	}

	if g.opts.WatchPaths {
		build.WatchPaths, err = g.collectWatchPaths(ctx, doc, discovered, params)
		if err != nil {
			return nil, err
		}
	}

	if g.opts.OnBuild != nil {
		g.opts.OnBuild(build)
	}

	return build, nil
}

// produceAll runs asset production with bounded concurrency. Each asset
// mutates only its own document nodes, so no locking is needed; artifacts are
// handed to emit in discovery order regardless of completion order.
func (g *Generator) produceAll(ctx context.Context, discovered []assets.Asset, params assets.Params, emit Emit) error {
	workers := g.opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	type result struct {
		artifacts []assets.Artifact
		err       error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]result, len(discovered))
	done := make([]chan struct{}, len(discovered))
	sem := make(chan struct{}, workers)

	for i, asset := range discovered {
		done[i] = make(chan struct{})
		go func(i int, asset assets.Asset) {
			defer close(done[i])
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i].err = err
				return
			}
			results[i].artifacts, results[i].err = asset.Produce(ctx, params)
		}(i, asset)
	}

	for i, asset := range discovered {
		<-done[i]
		if err := results[i].err; err != nil {
			cancel()
			g.logger.Error(ctx, err, "asset production failed", "ref", asset.Ref())
			return err
		}
		for _, artifact := range results[i].artifacts {
			g.logger.Debug(ctx, "artifact produced", "name", artifact.Name, "ref", asset.Ref())
			if err := emit(artifact); err != nil {
				cancel()
				return err
			}
		}
	}
	return nil
}

// collectWatchPaths flattens the entrypoint and every asset's declared local
// dependencies into one ordered, deduplicated set of absolute paths.
func (g *Generator) collectWatchPaths(ctx context.Context, doc *document.Document, discovered []assets.Asset, params assets.Params) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	entry, err := filepath.Abs(doc.Path())
	if err != nil {
		return nil, err
	}
	add(entry)
	for _, asset := range discovered {
		assetPaths, err := asset.WatchPaths(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, p := range assetPaths {
			add(p)
		}
	}
	return paths, nil
}
