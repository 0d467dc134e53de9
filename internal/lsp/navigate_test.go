package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func TestNodeAt(t *testing.T) {
	t.Parallel()

	s := newSession(testLogger())
	docURI := openDoc(t, s, "/project/main.ts", "typescript", "const answer = 42;")
	doc, ok := s.document(docURI)
	require.True(t, ok)

	node := nodeAt(doc, protocol.Position{Line: 0, Character: 6})
	require.NotNil(t, node)
	assert.Equal(t, "identifier", node.Type())
	assert.Equal(t, "answer", node.Content(doc.text))
}

func TestIdentifierAt_DirectHit(t *testing.T) {
	t.Parallel()

	s := newSession(testLogger())
	docURI := openDoc(t, s, "/project/main.ts", "typescript", "const answer = 42;")
	doc, _ := s.document(docURI)

	name, node, ok := identifierAt(doc, protocol.Position{Line: 0, Character: 6})
	require.True(t, ok)
	assert.Equal(t, "answer", name)
	assert.Equal(t, "identifier", node.Type())
}

func TestIdentifierAt_ResolvesThroughParent(t *testing.T) {
	t.Parallel()

	s := newSession(testLogger())
	docURI := openDoc(t, s, "/project/main.ts", "typescript", "const answer = 42;")
	doc, _ := s.document(docURI)

	// The "=" sits inside the declarator; the declarator's first
	// identifier-like child supplies the name.
	name, _, ok := identifierAt(doc, protocol.Position{Line: 0, Character: 13})
	require.True(t, ok)
	assert.Equal(t, "answer", name)
}

func TestFindDeclaration(t *testing.T) {
	t.Parallel()

	s := newSession(testLogger())
	docURI := openDoc(t, s, "/project/main.ts", "typescript", "function greet() {}\nconst x = greet();")
	doc, _ := s.document(docURI)

	declRange, ok := findDeclaration(doc, "greet")
	require.True(t, ok)
	assert.Equal(t, uint32(0), declRange.Start.Line)

	_, ok = findDeclaration(doc, "missing")
	assert.False(t, ok)
}

func TestFindDeclaration_LaterSiblingWins(t *testing.T) {
	t.Parallel()

	s := newSession(testLogger())
	docURI := openDoc(t, s, "/project/main.ts", "typescript", "function dup() {}\nfunction dup() {}")
	doc, _ := s.document(docURI)

	// Siblings are visited last-to-first, so of two same-name declarations
	// the later one is found. The order is deterministic across queries.
	for i := 0; i < 3; i++ {
		declRange, ok := findDeclaration(doc, "dup")
		require.True(t, ok)
		assert.Equal(t, uint32(1), declRange.Start.Line)
	}
}

func TestFindReferences(t *testing.T) {
	t.Parallel()

	s := newSession(testLogger())
	docURI := openDoc(t, s, "/project/main.ts", "typescript", "const answer = 42;\nconsole.log(answer);\nconst twice = answer + answer;")
	doc, _ := s.document(docURI)

	ranges := findReferences(doc, "answer")
	assert.Len(t, ranges, 4)

	assert.Empty(t, findReferences(doc, "missing"))
}

func TestDeclaresName(t *testing.T) {
	t.Parallel()

	s := newSession(testLogger())
	docURI := openDoc(t, s, "/project/main.ts", "typescript", "const answer = 42;")
	doc, _ := s.document(docURI)

	root := doc.tree.RootNode()
	declarator := root.NamedChild(0).NamedChild(0)
	require.Equal(t, "variable_declarator", declarator.Type())

	assert.True(t, declaresName(declarator, doc.text, "answer"))
	assert.False(t, declaresName(declarator, doc.text, "other"))
	assert.False(t, declaresName(root, doc.text, "answer"), "program is not a declaration kind")
}
