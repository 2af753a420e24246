package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/conneroisu/sitepress/internal/errors"
	"github.com/conneroisu/sitepress/internal/hash"
	"github.com/conneroisu/sitepress/internal/toolchain"
)

// Stylesheet is a plain CSS file referenced by a <link rel="stylesheet">.
type Stylesheet struct {
	node *html.Node
	href string
}

// NewStylesheet recognizes a stylesheet asset on a link node. It returns
// (nil, nil) when the node is not a local stylesheet reference: a different
// rel, or a remote href. A stylesheet link missing its href is a recoverable
// warning. An href carrying the preprocessor's source extension selects the
// preprocessed variant.
func NewStylesheet(n *html.Node, tools *toolchain.Toolchain) (Asset, error) {
	rel, _ := attrValue(n, "rel")
	if !strings.EqualFold(rel, "stylesheet") {
		return nil, nil
	}

	href, ok := attrValue(n, "href")
	if !ok {
		return nil, errors.MissingAttr("link", "href")
	}
	if IsRemote(href) {
		return nil, nil
	}

	sheet := &Stylesheet{node: n, href: href}
	if strings.HasSuffix(href, tools.StyleExt) {
		return &PreprocessedStylesheet{Stylesheet: sheet, compiler: tools.Compiler}, nil
	}
	return sheet, nil
}

// Ref returns the href the stylesheet was discovered from.
func (s *Stylesheet) Ref() string { return s.href }

// WatchPaths returns the stylesheet's source file as an absolute path.
func (s *Stylesheet) WatchPaths(ctx context.Context, p Params) ([]string, error) {
	abs, err := filepath.Abs(s.sourcePath(p))
	if err != nil {
		return nil, err
	}
	return []string{abs}, nil
}

// Produce reads the stylesheet, addresses it by content, rewrites the link's
// href to the published name, and emits one CSS artifact.
func (s *Stylesheet) Produce(ctx context.Context, p Params) ([]Artifact, error) {
	src := s.sourcePath(p)
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, errors.ReadError(src, err)
	}

	name := hash.ArtifactName(p.PageName, hash.Digest(data), "css")
	setAttr(s.node, "href", publishedRef(p.PathPrefix, name))

	return []Artifact{{
		Name:      name,
		Body:      data,
		MediaType: MediaTypeCSS,
		ModTime:   FixedModTime,
	}}, nil
}

func (s *Stylesheet) sourcePath(p Params) string {
	return filepath.Join(p.Base, s.href)
}

// PreprocessedStylesheet is a stylesheet whose source runs through the
// external preprocessor. It shares the plain stylesheet's addressing and
// rewrite behavior: the digest is computed over the raw source, and the
// published name always carries the .css extension.
type PreprocessedStylesheet struct {
	*Stylesheet
	compiler toolchain.StyleCompiler
}

// Produce compiles the source to CSS and emits the compiled artifact under
// the raw source's content address.
func (s *PreprocessedStylesheet) Produce(ctx context.Context, p Params) ([]Artifact, error) {
	src := s.sourcePath(p)
	raw, err := os.ReadFile(src)
	if err != nil {
		return nil, errors.ReadError(src, err)
	}

	compiled, err := s.compiler.Compile(ctx, raw)
	if err != nil {
		return nil, err
	}

	name := hash.ArtifactName(p.PageName, hash.Digest(raw), "css")
	setAttr(s.node, "href", publishedRef(p.PathPrefix, name))

	return []Artifact{{
		Name:      name,
		Body:      compiled,
		MediaType: MediaTypeCSS,
		ModTime:   FixedModTime,
	}}, nil
}
