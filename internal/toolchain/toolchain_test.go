package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/sitepress/internal/errors"
)

func TestLocalPaths(t *testing.T) {
	tests := []struct {
		name       string
		specifiers []string
		want       []string
	}{
		{
			name:       "empty",
			specifiers: nil,
			want:       []string{},
		},
		{
			name:       "plain paths pass through",
			specifiers: []string{"src/main.ts", "/abs/util.ts"},
			want:       []string{"src/main.ts", "/abs/util.ts"},
		},
		{
			name:       "file scheme converts to path",
			specifiers: []string{"file:///project/src/main.ts"},
			want:       []string{"/project/src/main.ts"},
		},
		{
			name:       "network specifiers excluded",
			specifiers: []string{"https://esm.sh/preact", "http://localhost/mod.ts"},
			want:       []string{},
		},
		{
			name: "mixed graph",
			specifiers: []string{
				"file:///site/js/app.ts",
				"https://deno.land/std/path/mod.ts",
				"file:///site/js/dom.ts",
			},
			want: []string{"/site/js/app.ts", "/site/js/dom.ts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalPaths(tt.specifiers))
		})
	}
}

func TestExecBundlerReadsStdout(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "entry.ts")
	require.NoError(t, os.WriteFile(entry, []byte("console.log(1);\n"), 0o644))

	bundler := NewExecBundler("cat")
	out, err := bundler.Bundle(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1);\n", string(out))
}

func TestExecBundlerFailureCarriesDiagnostics(t *testing.T) {
	bundler := NewExecBundler("cat")
	_, err := bundler.Bundle(context.Background(), filepath.Join(t.TempDir(), "missing.ts"))
	require.Error(t, err)
	assert.False(t, errors.IsRecoverable(err))
	assert.Contains(t, err.Error(), "cat")
}

func TestExecStyleCompilerPipesStdin(t *testing.T) {
	compiler := NewExecStyleCompiler("cat")
	out, err := compiler.Compile(context.Background(), []byte("body { color: red }"))
	require.NoError(t, err)
	assert.Equal(t, "body { color: red }", string(out))
}

func TestExecGraphQueryParsesModules(t *testing.T) {
	graphJSON := filepath.Join(t.TempDir(), "graph.json")
	body := `{"modules":[{"specifier":"file:///site/js/app.ts"},{"specifier":"https://esm.sh/preact"}]}`
	require.NoError(t, os.WriteFile(graphJSON, []byte(body), 0o644))

	// cat ignores its leading args and prints the trailing entry path, which
	// here holds the canned graph output.
	graph := NewExecGraphQuery("cat")
	specs, err := graph.Dependencies(context.Background(), graphJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///site/js/app.ts", "https://esm.sh/preact"}, specs)
}

func TestExecGraphQueryRejectsMalformedOutput(t *testing.T) {
	graphJSON := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(graphJSON, []byte("not json"), 0o644))

	graph := NewExecGraphQuery("cat")
	_, err := graph.Dependencies(context.Background(), graphJSON)
	require.Error(t, err)
	assert.False(t, errors.IsRecoverable(err))
}

func TestRunToolMissingCommand(t *testing.T) {
	bundler := NewExecBundler("sitepress-no-such-tool")
	_, err := bundler.Bundle(context.Background(), "entry.ts")
	require.Error(t, err)
	assert.False(t, errors.IsRecoverable(err))
}

func TestRunToolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	compiler := NewExecStyleCompiler("cat")
	_, err := compiler.Compile(ctx, []byte("x"))
	require.Error(t, err)
}

func TestDefaultToolchain(t *testing.T) {
	tc := Default()
	require.NotNil(t, tc.Bundler)
	require.NotNil(t, tc.Compiler)
	require.NotNil(t, tc.Graph)
	assert.Equal(t, ".scss", tc.StyleExt)
}
