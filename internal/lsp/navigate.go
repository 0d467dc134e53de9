package lsp

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.lsp.dev/protocol"
)

// identifierKinds are the node kinds treated as identifier-like when
// resolving names at a cursor position.
var identifierKinds = map[string]bool{
	"identifier":                    true,
	"property_identifier":           true,
	"shorthand_property_identifier": true,
	"type_identifier":               true,
	"predefined_type":               true,
}

// declarationKinds are the node kinds that can declare a name.
var declarationKinds = map[string]bool{
	"function_declaration":   true,
	"method_definition":      true,
	"lexical_declaration":    true,
	"variable_declaration":   true,
	"variable_declarator":    true,
	"class_declaration":      true,
	"interface_declaration":  true,
	"type_alias_declaration": true,
	"enum_declaration":       true,
}

// nodeAt returns the smallest named node whose range contains the position,
// or nil when the tree has no named node there.
func nodeAt(doc *document, pos protocol.Position) *sitter.Node {
	point := sitter.Point{Row: pos.Line, Column: pos.Character}
	return doc.tree.RootNode().NamedDescendantForPointRange(point, point)
}

// identifierAt resolves the identifier at a position: the node itself when
// its kind is identifier-like, otherwise the first identifier-like node among
// its immediate named children. Returns false when no identifier is there.
func identifierAt(doc *document, pos protocol.Position) (string, *sitter.Node, bool) {
	node := nodeAt(doc, pos)
	if node == nil {
		return "", nil, false
	}

	identifier := node
	if !identifierKinds[identifier.Type()] {
		identifier = nil
		count := int(node.NamedChildCount())
		for i := 0; i < count; i++ {
			if child := node.NamedChild(i); identifierKinds[child.Type()] {
				identifier = child
				break
			}
		}
		if identifier == nil {
			return "", nil, false
		}
	}

	text := strings.TrimSpace(identifier.Content(doc.text))
	if text == "" {
		return "", nil, false
	}
	return text, identifier, true
}

// findDeclaration walks the whole tree with an explicit stack seeded with the
// root, popping last-pushed-first with children pushed in source order. The
// resulting visit order is deterministic but right-biased per level, and is
// preserved exactly so repeated queries pick the same candidate when several
// declarations share a name.
func findDeclaration(doc *document, name string) (protocol.Range, bool) {
	stack := []*sitter.Node{doc.tree.RootNode()}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if declaresName(node, doc.text, name) {
			return toRange(node), true
		}
		count := int(node.NamedChildCount())
		for i := 0; i < count; i++ {
			stack = append(stack, node.NamedChild(i))
		}
	}
	return protocol.Range{}, false
}

// declaresName reports whether node is a declaration whose named-child
// identifier text equals name exactly.
func declaresName(node *sitter.Node, source []byte, name string) bool {
	if !declarationKinds[node.Type()] {
		return false
	}
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if identifierKinds[child.Type()] && strings.TrimSpace(child.Content(source)) == name {
			return true
		}
	}
	return false
}

// findReferences collects the range of every identifier-like node whose text
// equals name, using the same stack traversal as findDeclaration. Plain
// occurrences count; there is no declaration-kind filter.
func findReferences(doc *document, name string) []protocol.Range {
	stack := []*sitter.Node{doc.tree.RootNode()}
	var ranges []protocol.Range

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if identifierKinds[node.Type()] && strings.TrimSpace(node.Content(doc.text)) == name {
			ranges = append(ranges, toRange(node))
		}
		count := int(node.NamedChildCount())
		for i := 0; i < count; i++ {
			stack = append(stack, node.NamedChild(i))
		}
	}
	return ranges
}

func toRange(node *sitter.Node) protocol.Range {
	start := node.StartPoint()
	end := node.EndPoint()
	return protocol.Range{
		Start: protocol.Position{Line: start.Row, Character: start.Column},
		End:   protocol.Position{Line: end.Row, Character: end.Column},
	}
}
