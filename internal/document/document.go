// Package document wraps the parsed HTML entrypoint of a build cycle. The
// document owns the mutable node tree; discovered assets hold handles into it
// and rewrite their own nodes during artifact production, after which the
// document serializes as the cycle's final artifact.
package document

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/conneroisu/sitepress/internal/assets"
	"github.com/conneroisu/sitepress/internal/errors"
	"github.com/conneroisu/sitepress/internal/logging"
	"github.com/conneroisu/sitepress/internal/toolchain"
)

// Ext is the required entrypoint extension.
const Ext = ".html"

// doctype is the fixed prefix of every serialized page artifact.
const doctype = "<!DOCTYPE html>"

// Document is the parsed entrypoint of one generation cycle. It is built
// fresh from disk every cycle and discarded after the cycle's artifacts are
// produced; there is no cross-build reuse.
type Document struct {
	path     string
	base     string
	pageName string
	root     *html.Node
}

// Parse builds a Document from the entrypoint's bytes. The path must end in
// .html and strip to a non-empty page name; both violations are fatal.
func Parse(path string, data []byte) (*Document, error) {
	if !strings.HasSuffix(path, Ext) {
		return nil, errors.EntrypointError(path, errors.CodeEntrypointExt, "entrypoint must have the "+Ext+" extension")
	}

	pageName := strings.TrimSuffix(filepath.Base(path), Ext)
	if pageName == "" {
		return nil, errors.EntrypointError(path, errors.CodeEntrypointName, "entrypoint has an empty page name")
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapFatal(err, errors.ErrorTypeValidation, errors.CodeSerialize, "parsing entrypoint HTML")
	}

	return &Document{
		path:     path,
		base:     filepath.Dir(path),
		pageName: pageName,
		root:     root,
	}, nil
}

// Path returns the entrypoint's original path.
func (d *Document) Path() string { return d.path }

// Base returns the directory asset references resolve against.
func (d *Document) Base() string { return d.base }

// PageName returns the entrypoint filename minus its extension.
func (d *Document) PageName() string { return d.pageName }

// Params returns the generation parameters for this document.
func (d *Document) Params(pathPrefix string) assets.Params {
	return assets.Params{
		PageName:   d.pageName,
		Base:       d.base,
		PathPrefix: pathPrefix,
	}
}

// Assets scans the document for referenced local assets in a fixed order:
// script nodes, then stylesheet links, then image and source nodes, each
// group in document order. Recognizer warnings (missing href or src) are
// logged and the node is skipped. Scanning never mutates the tree.
func (d *Document) Assets(ctx context.Context, logger logging.Logger, tools *toolchain.Toolchain) []assets.Asset {
	var found []assets.Asset

	for _, n := range findAll(d.root, "script") {
		asset, err := assets.NewScript(n, tools)
		if err != nil {
			logger.Warn(ctx, err, "skipping script node")
			continue
		}
		if asset != nil {
			found = append(found, asset)
		}
	}

	for _, n := range findAll(d.root, "link") {
		asset, err := assets.NewStylesheet(n, tools)
		if err != nil {
			logger.Warn(ctx, err, "skipping link node")
			continue
		}
		if asset != nil {
			found = append(found, asset)
		}
	}

	for _, n := range findAll(d.root, "img", "source") {
		asset, err := assets.NewImage(n)
		if err != nil {
			logger.Warn(ctx, err, "skipping image node")
			continue
		}
		if asset != nil {
			found = append(found, asset)
		}
	}

	return found
}

// InjectLiveReload appends the live-reload client script as the last child of
// the body, pointed at the reload server on port.
func (d *Document) InjectLiveReload(port int) {
	body := findFirst(d.root, "body")
	if body == nil {
		return
	}

	script := &html.Node{
		Type: html.ElementNode,
		Data: "script",
		Attr: []html.Attribute{{
			Key: "src",
			Val: fmt.Sprintf("http://localhost:%d/livereload.js", port),
		}},
	}
	body.AppendChild(script)
}

// Serialize renders the document with the fixed doctype prefix. It runs after
// every discovered asset has rewritten its references into the shared tree,
// so the output already points at the published artifact names.
func (d *Document) Serialize() ([]byte, error) {
	root := firstElement(d.root)
	if root == nil {
		return nil, errors.NewFatal(errors.ErrorTypeInternal, errors.CodeSerialize, "document has no root element")
	}

	var buf bytes.Buffer
	buf.WriteString(doctype)
	if err := html.Render(&buf, root); err != nil {
		return nil, errors.WrapFatal(err, errors.ErrorTypeInternal, errors.CodeSerialize, "serializing document")
	}
	return buf.Bytes(), nil
}

// findAll returns every element with one of the given tag names, in document
// order.
func findAll(root *html.Node, tags ...string) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, tag := range tags {
				if n.Data == tag {
					nodes = append(nodes, n)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return nodes
}

func findFirst(root *html.Node, tag string) *html.Node {
	nodes := findAll(root, tag)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func firstElement(root *html.Node) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}
