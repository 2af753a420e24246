package assets

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/conneroisu/sitepress/internal/errors"
	"github.com/conneroisu/sitepress/internal/hash"
)

// Image is an image referenced by an <img> or <source> node through src,
// srcset, or both. Local sources from the two attributes are merged with set
// semantics; each source publishes its own artifact.
type Image struct {
	node    *html.Node
	sources []string
}

// NewImage recognizes an image asset on an img or source node. A node whose
// sources are all remote yields (nil, nil). An img carrying neither src nor
// srcset is a recoverable warning.
func NewImage(n *html.Node) (*Image, error) {
	src, hasSrc := attrValue(n, "src")
	srcset, hasSrcset := attrValue(n, "srcset")

	if n.Data == "img" && !hasSrc && !hasSrcset {
		return nil, errors.MissingAttr("img", "src")
	}

	seen := make(map[string]bool)
	var sources []string
	add := func(ref string) {
		if ref == "" || IsRemote(ref) || seen[ref] {
			return
		}
		seen[ref] = true
		sources = append(sources, ref)
	}

	if hasSrc {
		add(src)
	}
	if hasSrcset {
		for _, ref := range ParseSrcset(srcset) {
			add(ref)
		}
	}

	if len(sources) == 0 {
		return nil, nil
	}

	// Set semantics: order between src and srcset entries is not
	// significant, so sort for deterministic production order.
	sort.Strings(sources)
	return &Image{node: n, sources: sources}, nil
}

// ParseSrcset extracts the URL token from each comma-separated
// "url descriptor" entry of a srcset value. Descriptors are dropped.
func ParseSrcset(srcset string) []string {
	var urls []string
	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(entry)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}

// Ref returns the image's sources joined for logging.
func (im *Image) Ref() string { return strings.Join(im.sources, ", ") }

// WatchPaths returns every local source file as an absolute path.
func (im *Image) WatchPaths(ctx context.Context, p Params) ([]string, error) {
	paths := make([]string, 0, len(im.sources))
	for _, src := range im.sources {
		abs, err := filepath.Abs(filepath.Join(p.Base, src))
		if err != nil {
			return nil, err
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

// Produce publishes each local source independently: one artifact per source,
// extension derived from the source's own extension. A source present in both
// src and srcset is rewritten in both places.
func (im *Image) Produce(ctx context.Context, p Params) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(im.sources))
	for _, source := range im.sources {
		srcPath := filepath.Join(p.Base, source)
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return nil, errors.ReadError(srcPath, err)
		}

		ext := strings.TrimPrefix(filepath.Ext(source), ".")
		name := hash.ArtifactName(p.PageName, hash.Digest(data), ext)
		im.rewriteNode(source, publishedRef(p.PathPrefix, name))

		mediaType := mime.TypeByExtension(filepath.Ext(source))
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}

		artifacts = append(artifacts, Artifact{
			Name:      name,
			Body:      data,
			MediaType: mediaType,
			ModTime:   FixedModTime,
		})
	}
	return artifacts, nil
}

// rewriteNode points the node's references for one source at its published
// name. srcset rewriting replaces the first literal occurrence of the source
// substring, leaving descriptor tokens untouched. A source path that is a
// substring of another srcset entry can match that entry first; production
// order is sorted so the behavior is at least deterministic.
func (im *Image) rewriteNode(source, published string) {
	if src, ok := attrValue(im.node, "src"); ok && src == source {
		setAttr(im.node, "src", published)
	}
	if srcset, ok := attrValue(im.node, "srcset"); ok && strings.Contains(srcset, source) {
		setAttr(im.node, "srcset", strings.Replace(srcset, source, published, 1))
	}
}
