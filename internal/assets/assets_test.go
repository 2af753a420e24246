package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/net/html"

	"github.com/conneroisu/sitepress/internal/toolchain"
)

// node builds an element node with attribute key/value pairs.
func node(tag string, attrPairs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(attrPairs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrPairs[i], Val: attrPairs[i+1]})
	}
	return n
}

func attr(t *testing.T, n *html.Node, key string) string {
	t.Helper()
	val, ok := attrValue(n, key)
	if !ok {
		t.Fatalf("node has no %s attribute", key)
	}
	return val
}

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeBundler struct {
	out []byte
	err error
}

func (f fakeBundler) Bundle(_ context.Context, _ string) ([]byte, error) {
	return f.out, f.err
}

type fakeCompiler struct {
	out []byte
	err error
}

func (f fakeCompiler) Compile(_ context.Context, _ []byte) ([]byte, error) {
	return f.out, f.err
}

type fakeGraph struct {
	specs []string
	err   error
}

func (f fakeGraph) Dependencies(_ context.Context, _ string) ([]string, error) {
	return f.specs, f.err
}

func fakeTools() *toolchain.Toolchain {
	return &toolchain.Toolchain{
		Bundler:  fakeBundler{out: []byte("bundled")},
		Compiler: fakeCompiler{out: []byte("compiled")},
		Graph:    fakeGraph{},
		StyleExt: ".scss",
	}
}
