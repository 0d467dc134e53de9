package indexer

import (
	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/ast"
	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/semantic"
)

// Public type aliases for internal types used in the Service API. These are
// Go type aliases (=) — identical to the internal types at compile time.
// External consumers use these names; no conversion is needed.

type AstOptions = ast.Options
type AstResponse = ast.Response
type AstNode = ast.Node
type AddDocumentRequest = semantic.AddRequest
type AddDocumentResponse = semantic.AddResponse
type SearchRequest = semantic.SearchRequest
type SearchResult = semantic.SearchResult
type HistoryEntry = semantic.HistoryEntry
