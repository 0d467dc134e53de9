// Package ast parses source text with tree-sitter and serializes the result
// into a depth- and size-bounded tree suitable for wire transfer.
package ast

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/grammar"
)

const (
	// DefaultMaxDepth bounds how deep serialization descends.
	DefaultMaxDepth = 5
	// DefaultMaxNodes bounds how many nodes a single response may carry.
	DefaultMaxNodes = 2048

	snippetMaxRunes = 120
	ellipsis        = "…"
)

// Options controls tree serialization.
type Options struct {
	MaxDepth       int
	MaxNodes       int
	IncludeSnippet bool
}

// DefaultOptions returns the serialization limits used when a caller does not
// specify its own.
func DefaultOptions() Options {
	return Options{
		MaxDepth:       DefaultMaxDepth,
		MaxNodes:       DefaultMaxNodes,
		IncludeSnippet: true,
	}
}

// Position is a zero-based line/column pair.
type Position struct {
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

// Node is a serialized syntax-tree node. Only named grammar nodes appear;
// punctuation and other anonymous tokens are never materialized.
type Node struct {
	Kind      string   `json:"kind"`
	Start     Position `json:"start"`
	End       Position `json:"end"`
	StartByte uint32   `json:"start_byte"`
	EndByte   uint32   `json:"end_byte"`
	Children  []Node   `json:"children,omitempty"`
	Snippet   string   `json:"snippet,omitempty"`
}

// Statistics describes what the traversal produced.
type Statistics struct {
	TotalNodes int  `json:"total_nodes"`
	Truncated  bool `json:"truncated"`
}

// Response is a serialized tree plus its statistics.
type Response struct {
	Language   string     `json:"language"`
	Root       Node       `json:"root"`
	Statistics Statistics `json:"statistics"`
}

// ParseTree parses source with the grammar for languageID and returns the raw
// tree-sitter tree. The caller owns the tree and should Close it when done.
func ParseTree(ctx context.Context, languageID string, source []byte) (*sitter.Tree, error) {
	lang, err := grammar.Resolve(languageID)
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if tree == nil {
		return nil, ErrParseFailed
	}
	return tree, nil
}

// Build parses source and serializes the tree under the given limits.
// ErrLimitExceeded is returned only when the root itself cannot be produced,
// i.e. MaxNodes is zero. A non-zero budget always yields at least the root.
func Build(ctx context.Context, languageID string, source []byte, opts Options) (*Response, error) {
	tree, err := ParseTree(ctx, languageID, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	b := &builder{
		source:    source,
		opts:      opts,
		remaining: opts.MaxNodes,
	}
	root := b.visit(tree.RootNode(), 0)
	if root == nil {
		return nil, ErrLimitExceeded
	}

	return &Response{
		Language: languageID,
		Root:     *root,
		Statistics: Statistics{
			TotalNodes: b.total,
			// The counter never grows, so remaining==0 here means the
			// budget was exhausted at some point during the traversal.
			Truncated: b.remaining == 0,
		},
	}, nil
}

// builder carries the shared remaining-budget counter through the traversal.
type builder struct {
	source    []byte
	opts      Options
	remaining int
	total     int
}

// visit serializes one node and, while depth allows, its named children.
// Returns nil when the budget is already exhausted on entry.
func (b *builder) visit(node *sitter.Node, depth int) *Node {
	if b.remaining <= 0 {
		return nil
	}
	b.remaining--
	b.total++

	out := &Node{
		Kind:      node.Type(),
		Start:     toPosition(node.StartPoint()),
		End:       toPosition(node.EndPoint()),
		StartByte: node.StartByte(),
		EndByte:   node.EndByte(),
	}

	if b.opts.IncludeSnippet {
		out.Snippet = trimSnippet(node.Content(b.source))
	}

	// Nodes at MaxDepth are still produced, but their children are not visited.
	if depth < b.opts.MaxDepth {
		count := int(node.NamedChildCount())
		for i := 0; i < count; i++ {
			if b.remaining == 0 {
				break
			}
			if child := b.visit(node.NamedChild(i), depth+1); child != nil {
				out.Children = append(out.Children, *child)
			}
		}
	}

	return out
}

// trimSnippet trims whitespace and caps the text at snippetMaxRunes
// characters, appending an ellipsis when cut. Returns "" for
// whitespace-only text.
func trimSnippet(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if utf8.RuneCountInString(trimmed) <= snippetMaxRunes {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:snippetMaxRunes]) + ellipsis
}

func toPosition(point sitter.Point) Position {
	return Position{Line: point.Row, Column: point.Column}
}
