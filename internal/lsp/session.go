// Package lsp serves the editor-facing protocol: per-connection document
// sessions, hover, go-to-definition, and find-references over tree-sitter
// syntax trees.
package lsp

import (
	"context"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/ast"
)

// document is one open text document: full text plus its parsed tree. It is
// replaced wholesale on every edit and destroyed on close, never diffed.
type document struct {
	languageID string
	text       []byte
	tree       *sitter.Tree
}

// session owns the documents of exactly one connection. The jsonrpc2 read
// loop delivers that connection's messages serially, so no locking is needed;
// sessions across connections never share state.
type session struct {
	log       *slog.Logger
	documents map[uri.URI]*document
}

func newSession(log *slog.Logger) *session {
	return &session{
		log:       log,
		documents: make(map[uri.URI]*document),
	}
}

// open parses the document text and stores it. On parse failure the document
// is not inserted and the failure is reported back for client logging.
func (s *session) open(ctx context.Context, item protocol.TextDocumentItem) error {
	tree, err := ast.ParseTree(ctx, string(item.LanguageID), []byte(item.Text))
	if err != nil {
		s.log.Warn("failed to parse document", "uri", item.URI, "error", err)
		return err
	}
	s.closeDocument(item.URI)
	s.documents[item.URI] = &document{
		languageID: string(item.LanguageID),
		text:       []byte(item.Text),
		tree:       tree,
	}
	return nil
}

// change re-parses the document with its stored language id and replaces the
// entry. Only full-document replacement is supported; a ranged change is
// still treated as the complete new text. On parse failure the previous
// document is left untouched — stale but valid beats missing. A change for an
// unopened URI is ignored.
func (s *session) change(ctx context.Context, docURI uri.URI, changes []protocol.TextDocumentContentChangeEvent) error {
	if len(changes) == 0 {
		return nil
	}
	last := changes[len(changes)-1]
	if last.Range != (protocol.Range{}) || last.RangeLength != 0 {
		s.log.Warn("partial text updates are not supported; treating change as full document replacement", "uri", docURI)
	}

	doc, ok := s.documents[docURI]
	if !ok {
		return nil
	}

	newText := []byte(last.Text)
	tree, err := ast.ParseTree(ctx, doc.languageID, newText)
	if err != nil {
		s.log.Warn("failed to update document", "uri", docURI, "error", err)
		return err
	}
	doc.tree.Close()
	s.documents[docURI] = &document{
		languageID: doc.languageID,
		text:       newText,
		tree:       tree,
	}
	return nil
}

// closeDocument removes the URI's entry unconditionally.
func (s *session) closeDocument(docURI uri.URI) {
	if doc, ok := s.documents[docURI]; ok {
		doc.tree.Close()
		delete(s.documents, docURI)
	}
}

func (s *session) document(docURI uri.URI) (*document, bool) {
	doc, ok := s.documents[docURI]
	return doc, ok
}

// hover renders the node at the position: its kind, plus a fenced code
// excerpt when a non-empty trimmed snippet exists. Returns nil when there is
// no document or no node at the point.
func (s *session) hover(docURI uri.URI, pos protocol.Position) *protocol.Hover {
	doc, ok := s.document(docURI)
	if !ok {
		return nil
	}
	node := nodeAt(doc, pos)
	if node == nil {
		return nil
	}

	contents := node.Type()
	if snippet := strings.TrimSpace(node.Content(doc.text)); snippet != "" {
		contents = node.Type() + "\n```\n" + snippet + "\n```"
	}
	nodeRange := toRange(node)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: contents,
		},
		Range: &nodeRange,
	}
}

// definition resolves the identifier at the position and returns the first
// declaration of that name found by the tree search. An absent result is a
// nil slice, not an error.
func (s *session) definition(docURI uri.URI, pos protocol.Position) []protocol.Location {
	doc, ok := s.document(docURI)
	if !ok {
		return nil
	}
	name, _, ok := identifierAt(doc, pos)
	if !ok {
		return nil
	}
	declRange, ok := findDeclaration(doc, name)
	if !ok {
		return nil
	}
	return []protocol.Location{{URI: docURI, Range: declRange}}
}

// references collects every occurrence of the identifier at the position. The
// declaration is prepended when requested. The occurrence the cursor is on is
// always excluded from the reference list, independent of includeDeclaration.
func (s *session) references(docURI uri.URI, pos protocol.Position, includeDeclaration bool) []protocol.Location {
	doc, ok := s.document(docURI)
	if !ok {
		return nil
	}
	name, node, ok := identifierAt(doc, pos)
	if !ok {
		return nil
	}

	var locations []protocol.Location
	if includeDeclaration {
		if declRange, ok := findDeclaration(doc, name); ok {
			locations = append(locations, protocol.Location{URI: docURI, Range: declRange})
		}
	}

	origin := toRange(node)
	for _, refRange := range findReferences(doc, name) {
		if refRange == origin {
			continue
		}
		locations = append(locations, protocol.Location{URI: docURI, Range: refRange})
	}
	return locations
}
