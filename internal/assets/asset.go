// Package assets implements the four referenced-asset variants the pipeline
// knows how to publish: plain stylesheets, preprocessed stylesheets, bundled
// scripts, and images. Each asset keeps a handle to the document node it was
// discovered from; discovery never mutates the node, only artifact production
// rewrites its reference attributes.
package assets

import (
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// FixedModTime is the timestamp stamped on every artifact. Builds are
// reproducible byte for byte, so wall-clock time never leaks into output.
var FixedModTime = time.Unix(0, 0).UTC()

// Media types of published artifacts.
const (
	MediaTypeCSS  = "text/css"
	MediaTypeJS   = "application/javascript"
	MediaTypeHTML = "text/html"
)

// Artifact is one output file of a generation cycle.
type Artifact struct {
	Name      string
	Body      []byte
	MediaType string
	ModTime   time.Time
}

// Params is the immutable per-cycle context passed to artifact production.
type Params struct {
	// PageName is the entrypoint filename minus its extension.
	PageName string
	// Base is the directory containing the entrypoint; all relative asset
	// references resolve against it.
	Base string
	// PathPrefix is the public URL prefix written into rewritten references.
	PathPrefix string
}

// Asset is a referenced asset discovered from the entry document. An asset is
// valid only while its owning document tree is alive; it never outlives one
// generation cycle.
type Asset interface {
	// Ref returns the source reference the asset was discovered from.
	Ref() string

	// WatchPaths returns the local files whose changes invalidate this
	// asset, as absolute paths.
	WatchPaths(ctx context.Context, p Params) ([]string, error)

	// Produce builds the asset's artifacts and rewrites the owning node's
	// reference attributes to their published names.
	Produce(ctx context.Context, p Params) ([]Artifact, error)
}

// IsRemote reports whether ref addresses a remote resource rather than a
// local file.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// publishedRef joins the public prefix and an artifact name with forward
// slashes. Published references are URL paths, never filesystem paths.
func publishedRef(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
