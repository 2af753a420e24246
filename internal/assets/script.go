package assets

import (
	"context"
	"path/filepath"

	"golang.org/x/net/html"

	"github.com/conneroisu/sitepress/internal/hash"
	"github.com/conneroisu/sitepress/internal/toolchain"
)

// Script is a module entry file referenced by a <script src>. Its artifact is
// the bundler's output for that entry, and its watch set is the bundler's
// full local dependency closure rather than just the referenced file.
type Script struct {
	node    *html.Node
	src     string
	bundler toolchain.Bundler
	graph   toolchain.GraphQuery
}

// NewScript recognizes a script asset on a script node. Inline scripts (no
// src attribute) and remote sources yield (nil, nil); neither is an error.
func NewScript(n *html.Node, tools *toolchain.Toolchain) (*Script, error) {
	src, ok := attrValue(n, "src")
	if !ok {
		return nil, nil
	}
	if IsRemote(src) {
		return nil, nil
	}
	return &Script{node: n, src: src, bundler: tools.Bundler, graph: tools.Graph}, nil
}

// Ref returns the src the script was discovered from.
func (s *Script) Ref() string { return s.src }

// WatchPaths queries the module graph for the entry file's transitive
// dependencies and keeps the local ones, as absolute paths. A failing graph
// query is fatal.
func (s *Script) WatchPaths(ctx context.Context, p Params) ([]string, error) {
	specifiers, err := s.graph.Dependencies(ctx, s.entryPath(p))
	if err != nil {
		return nil, err
	}

	paths := toolchain.LocalPaths(specifiers)
	for i, pth := range paths {
		if !filepath.IsAbs(pth) {
			pth = filepath.Join(p.Base, pth)
		}
		abs, err := filepath.Abs(pth)
		if err != nil {
			return nil, err
		}
		paths[i] = abs
	}
	return paths, nil
}

// Produce bundles the entry file, addresses the bundle by content, rewrites
// the script's src, and emits one JavaScript artifact.
func (s *Script) Produce(ctx context.Context, p Params) ([]Artifact, error) {
	bundle, err := s.bundler.Bundle(ctx, s.entryPath(p))
	if err != nil {
		return nil, err
	}

	name := hash.ArtifactName(p.PageName, hash.Digest(bundle), "js")
	setAttr(s.node, "src", publishedRef(p.PathPrefix, name))

	return []Artifact{{
		Name:      name,
		Body:      bundle,
		MediaType: MediaTypeJS,
		ModTime:   FixedModTime,
	}}, nil
}

func (s *Script) entryPath(p Params) string {
	return filepath.Join(p.Base, s.src)
}
