// Package toolchain wraps the external tools the pipeline delegates to: the
// JavaScript module bundler, the stylesheet preprocessor, and the module
// dependency graph query. Each tool runs as a subprocess; a non-zero exit
// surfaces the tool's diagnostics as a fatal error and is never retried.
package toolchain

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os/exec"
	"strings"

	"github.com/conneroisu/sitepress/internal/errors"
)

// Bundler resolves a script entry file's import graph into a single bundle.
type Bundler interface {
	Bundle(ctx context.Context, entryPath string) ([]byte, error)
}

// StyleCompiler compiles preprocessed stylesheet source to CSS.
type StyleCompiler interface {
	Compile(ctx context.Context, source []byte) ([]byte, error)
}

// GraphQuery returns the module specifiers in an entry file's transitive
// dependency graph, including the entry itself.
type GraphQuery interface {
	Dependencies(ctx context.Context, entryPath string) ([]string, error)
}

// Toolchain bundles the external collaborators the asset variants need.
type Toolchain struct {
	Bundler  Bundler
	Compiler StyleCompiler
	Graph    GraphQuery

	// StyleExt is the source extension that selects the preprocessor
	// (with leading dot).
	StyleExt string
}

// Default returns a toolchain backed by the standard external commands.
func Default() *Toolchain {
	return &Toolchain{
		Bundler:  NewExecBundler("esbuild", "--bundle"),
		Compiler: NewExecStyleCompiler("sass", "--stdin"),
		Graph:    NewExecGraphQuery("deno", "info", "--json"),
		StyleExt: ".scss",
	}
}

// ExecBundler shells out to a bundler command. The entry path is appended as
// the final argument and the bundle is read from stdout.
type ExecBundler struct {
	command string
	args    []string
}

// NewExecBundler creates a bundler running command with args.
func NewExecBundler(command string, args ...string) *ExecBundler {
	return &ExecBundler{command: command, args: args}
}

// Bundle runs the bundler on entryPath and returns the bundled bytes.
func (b *ExecBundler) Bundle(ctx context.Context, entryPath string) ([]byte, error) {
	return runTool(ctx, b.command, append(append([]string{}, b.args...), entryPath), nil)
}

// ExecStyleCompiler shells out to a stylesheet compiler reading source from
// stdin and writing CSS to stdout.
type ExecStyleCompiler struct {
	command string
	args    []string
}

// NewExecStyleCompiler creates a style compiler running command with args.
func NewExecStyleCompiler(command string, args ...string) *ExecStyleCompiler {
	return &ExecStyleCompiler{command: command, args: args}
}

// Compile compiles source to CSS.
func (c *ExecStyleCompiler) Compile(ctx context.Context, source []byte) ([]byte, error) {
	return runTool(ctx, c.command, c.args, source)
}

// ExecGraphQuery shells out to a module graph inspector emitting JSON of the
// form {"modules": [{"specifier": ...}, ...]}.
type ExecGraphQuery struct {
	command string
	args    []string
}

// NewExecGraphQuery creates a graph query running command with args.
func NewExecGraphQuery(command string, args ...string) *ExecGraphQuery {
	return &ExecGraphQuery{command: command, args: args}
}

type graphOutput struct {
	Modules []struct {
		Specifier string `json:"specifier"`
	} `json:"modules"`
}

// Dependencies returns every module specifier in entryPath's import graph.
func (g *ExecGraphQuery) Dependencies(ctx context.Context, entryPath string) ([]string, error) {
	out, err := runTool(ctx, g.command, append(append([]string{}, g.args...), entryPath), nil)
	if err != nil {
		return nil, err
	}

	var graph graphOutput
	if err := json.Unmarshal(out, &graph); err != nil {
		return nil, errors.WrapFatal(err, errors.ErrorTypeTool, errors.CodeToolFailed, "parsing dependency graph output")
	}

	specifiers := make([]string, 0, len(graph.Modules))
	for _, mod := range graph.Modules {
		specifiers = append(specifiers, mod.Specifier)
	}
	return specifiers, nil
}

// LocalPaths filters module specifiers to those addressing the local
// filesystem and converts them to filesystem paths. Network specifiers
// (http, https, and any other non-file scheme) are excluded.
func LocalPaths(specifiers []string) []string {
	paths := make([]string, 0, len(specifiers))
	for _, spec := range specifiers {
		if strings.HasPrefix(spec, "file://") {
			if u, err := url.Parse(spec); err == nil {
				paths = append(paths, u.Path)
			}
			continue
		}
		if strings.Contains(spec, "://") {
			continue
		}
		paths = append(paths, spec)
	}
	return paths
}

// runTool executes a subprocess, feeding stdin if non-nil, and returns its
// stdout. On failure the stderr text rides along in the returned error.
func runTool(ctx context.Context, command string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.WrapFatal(ctx.Err(), errors.ErrorTypeTool, errors.CodeToolFailed, command+" interrupted")
		}
		return nil, errors.ToolError(command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
