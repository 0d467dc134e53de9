package indexer

import (
	"context"
	"log/slog"

	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/ast"
	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/security"
	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/semantic"
)

// SecurityGate is the injected capability consulted at the request boundary.
// The service never interprets the gate's policy; it only reacts to pass/fail.
type SecurityGate interface {
	// CheckPath rejects paths outside the allow-list.
	CheckPath(path string) error
	// ScanContent rejects content matching a blocked pattern.
	ScanContent(content string) error
	// Allowed reports whether a path may appear in results.
	Allowed(path string) bool
}

// Service composes the syntax tree builder, the semantic document store, and
// a security gate into the operations exposed to the request layer.
type Service struct {
	gate     SecurityGate
	semantic *semantic.Store
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithGate replaces the environment-derived security gate.
func WithGate(gate SecurityGate) Option {
	return func(s *Service) {
		s.gate = gate
	}
}

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// New creates a Service with an empty semantic index. Without options the
// security gate is built from the environment.
func New(opts ...Option) *Service {
	s := &Service{
		semantic: semantic.NewStore(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gate == nil {
		s.gate = security.FromEnv()
	}
	return s
}

// BuildAST parses source and serializes the syntax tree under the given
// limits.
func (s *Service) BuildAST(ctx context.Context, languageID string, source string, opts ast.Options) (*ast.Response, error) {
	return ast.Build(ctx, languageID, []byte(source), opts)
}

// AddDocument indexes a document after it passes the path allow-list and the
// content scan.
func (s *Service) AddDocument(ctx context.Context, req AddDocumentRequest) (*AddDocumentResponse, error) {
	if err := s.gate.CheckPath(req.Path); err != nil {
		return nil, err
	}
	if err := s.gate.ScanContent(req.Content); err != nil {
		return nil, err
	}
	resp := s.semantic.Add(req)
	s.log.Debug("document indexed", "path", req.Path, "document_id", resp.DocumentID)
	return &resp, nil
}

// Search runs a similarity query. Results are post-filtered by the gate's
// Allowed predicate before being returned.
func (s *Service) Search(ctx context.Context, req SearchRequest) []SearchResult {
	results := s.semantic.Search(req)
	allowed := results[:0]
	for _, result := range results {
		if s.gate.Allowed(result.Path) {
			allowed = append(allowed, result)
		}
	}
	return allowed
}

// History lists every indexed version of a path, oldest first, after the
// path passes the allow-list.
func (s *Service) History(ctx context.Context, path string) ([]HistoryEntry, error) {
	if err := s.gate.CheckPath(path); err != nil {
		return nil, err
	}
	return s.semantic.History(path), nil
}
