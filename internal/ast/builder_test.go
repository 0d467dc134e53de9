package ast

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allLanguageIDs is the full identifier set, aliases included.
var allLanguageIDs = []string{"typescript", "ts", "tsx", "javascript", "js", "json", "rust", "rs"}

func buildTS(t *testing.T, source string, opts Options) *Response {
	t.Helper()
	resp, err := Build(context.Background(), "typescript", []byte(source), opts)
	require.NoError(t, err)
	return resp
}

func TestBuild_TypeScript(t *testing.T) {
	t.Parallel()

	resp := buildTS(t, "const answer = 42;", Options{MaxDepth: 3, MaxNodes: 32, IncludeSnippet: true})

	assert.Equal(t, "typescript", resp.Language)
	assert.Equal(t, "program", resp.Root.Kind)
	assert.Positive(t, resp.Statistics.TotalNodes)
	assert.False(t, resp.Statistics.Truncated)
	assert.Equal(t, "const answer = 42;", resp.Root.Snippet)
}

func TestBuild_UnknownLanguage(t *testing.T) {
	t.Parallel()

	_, err := Build(context.Background(), "unknown", []byte(""), DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.NotErrorIs(t, err, ErrParseFailed)
}

func TestBuild_EmptySource(t *testing.T) {
	t.Parallel()

	// An empty document still has a root node, and a budget of 32 leaves
	// headroom so the response is never marked truncated.
	for _, id := range allLanguageIDs {
		resp, err := Build(context.Background(), id, nil, Options{MaxDepth: 5, MaxNodes: 32, IncludeSnippet: true})
		require.NoError(t, err, "language %s", id)
		assert.Equal(t, 1, resp.Statistics.TotalNodes, "language %s", id)
		assert.False(t, resp.Statistics.Truncated, "language %s", id)
		assert.Empty(t, resp.Root.Children, "language %s", id)
		assert.Empty(t, resp.Root.Snippet, "language %s", id)
	}
}

func TestBuild_ZeroBudget(t *testing.T) {
	t.Parallel()

	for _, id := range allLanguageIDs {
		_, err := Build(context.Background(), id, []byte("x"), Options{MaxDepth: 5, MaxNodes: 0})
		assert.ErrorIs(t, err, ErrLimitExceeded, "language %s", id)
	}
}

func TestBuild_MaxDepthZero(t *testing.T) {
	t.Parallel()

	resp := buildTS(t, "function f() { return g(h(1)); }", Options{MaxDepth: 0, MaxNodes: 128, IncludeSnippet: false})

	assert.Equal(t, "program", resp.Root.Kind)
	assert.Empty(t, resp.Root.Children)
	assert.Equal(t, 1, resp.Statistics.TotalNodes)
	assert.False(t, resp.Statistics.Truncated)
}

func TestBuild_BudgetTruncatesSiblings(t *testing.T) {
	t.Parallel()

	resp := buildTS(t, "const a = 1;\nconst b = 2;\nconst c = 3;", Options{MaxDepth: 5, MaxNodes: 2, IncludeSnippet: false})

	// Root plus exactly one child; remaining statements are dropped and the
	// response is flagged.
	assert.Equal(t, 2, resp.Statistics.TotalNodes)
	assert.True(t, resp.Statistics.Truncated)
	assert.Len(t, resp.Root.Children, 1)
}

func TestBuild_SnippetTruncatedAt120Runes(t *testing.T) {
	t.Parallel()

	source := "const x = \"" + strings.Repeat("a", 200) + "\";"
	resp := buildTS(t, source, Options{MaxDepth: 5, MaxNodes: 64, IncludeSnippet: true})

	assert.Equal(t, 121, utf8.RuneCountInString(resp.Root.Snippet), "120 characters plus the ellipsis")
	assert.True(t, strings.HasSuffix(resp.Root.Snippet, "…"))
}

func TestBuild_SnippetDisabled(t *testing.T) {
	t.Parallel()

	resp := buildTS(t, "const answer = 42;", Options{MaxDepth: 3, MaxNodes: 32, IncludeSnippet: false})
	assert.Empty(t, resp.Root.Snippet)
}

func TestBuild_PositionsAndBytes(t *testing.T) {
	t.Parallel()

	resp := buildTS(t, "const answer = 42;", Options{MaxDepth: 5, MaxNodes: 64, IncludeSnippet: false})

	assert.Equal(t, uint32(0), resp.Root.StartByte)
	assert.Equal(t, uint32(18), resp.Root.EndByte)
	assert.Equal(t, Position{Line: 0, Column: 0}, resp.Root.Start)

	require.NotEmpty(t, resp.Root.Children)
	decl := resp.Root.Children[0]
	assert.Equal(t, "lexical_declaration", decl.Kind)
}

func TestBuild_MalformedSourceStillParses(t *testing.T) {
	t.Parallel()

	// Error-recovered source still yields a tree; ParseFailed is reserved
	// for the parser producing nothing at all.
	resp, err := Build(context.Background(), "typescript", []byte("const = = ;;;"), DefaultOptions())
	require.NoError(t, err)
	assert.Positive(t, resp.Statistics.TotalNodes)
}

func TestParseTree_ReturnsTree(t *testing.T) {
	t.Parallel()

	tree, err := ParseTree(context.Background(), "json", []byte(`{"a": 1}`))
	require.NoError(t, err)
	defer tree.Close()
	assert.Equal(t, "document", tree.RootNode().Type())
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, DefaultMaxDepth, opts.MaxDepth)
	assert.Equal(t, DefaultMaxNodes, opts.MaxNodes)
	assert.True(t, opts.IncludeSnippet)
}
