// Package indexer is a source-code intelligence backend built on tree-sitter.
// It turns raw source text into a queryable, size-bounded syntax tree, answers
// hover/definition/references queries over a persistent LSP connection, and
// maintains an append-only semantic index of documents with deterministic
// hashed embeddings.
//
// # Components
//
// Three cores share the same underlying tree representation:
//
//  1. Syntax tree builder (internal/ast): parses source with a grammar
//     resolved from a language identifier and serializes the result into a
//     depth- and node-budgeted tree with positions, byte ranges, and optional
//     text snippets.
//
//  2. Protocol sessions (internal/lsp): a TCP JSON-RPC server where every
//     connection owns a private document session. Documents are re-parsed
//     wholesale on each edit; hover, go-to-definition, and find-references
//     run against the stored trees.
//
//  3. Semantic store (internal/semantic): a process-wide, append-only index
//     of (path, content, embedding, commit, timestamp) records supporting
//     top-k cosine search with path/commit filtering and per-path history.
//     Embeddings are deterministic feature hashes, not a learned model.
//
// # Usage
//
// Create a Service and call the request-layer operations:
//
//	svc := indexer.New()
//
//	resp, err := svc.BuildAST(ctx, "typescript", src, indexer.AstOptions{
//		MaxDepth: 5, MaxNodes: 2048, IncludeSnippet: true,
//	})
//
//	added, err := svc.AddDocument(ctx, indexer.AddDocumentRequest{
//		Path: "src/main.ts", Content: src, CommitID: "abc123",
//	})
//	results := svc.Search(ctx, indexer.SearchRequest{Query: "parse", TopK: 5})
//	history, err := svc.History(ctx, "src/main.ts")
//
// AddDocument and History consult an injected security gate (path allow-list
// and content scanning); Search results are post-filtered by the same gate.
// See internal/security for the environment-driven default policy.
//
// The LSP server and the HTTP request layer are wired together by
// cmd/indexer.
package indexer
