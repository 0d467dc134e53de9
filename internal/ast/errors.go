package ast

import (
	"errors"

	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/grammar"
)

// Sentinel errors for tree building. ErrUnsupportedLanguage and
// ErrLanguageUnavailable are re-exported from the grammar package so callers
// can check either package's sentinel with errors.Is.
var (
	// ErrUnsupportedLanguage indicates the caller used an unrecognized
	// language identifier. Not retryable without changing input.
	ErrUnsupportedLanguage = grammar.ErrUnsupportedLanguage

	// ErrLanguageUnavailable indicates a recognized language whose grammar
	// could not be attached to a parser. A service-level defect, not a
	// caller error.
	ErrLanguageUnavailable = grammar.ErrLanguageUnavailable

	// ErrParseFailed indicates the parser produced no tree at all.
	// Malformed source does not trigger this; error-recovered parses still
	// yield a tree with error-marked nodes.
	ErrParseFailed = errors.New("parse failed")

	// ErrLimitExceeded indicates the node budget was too small to produce
	// even the root node. The caller should relax limits.
	ErrLimitExceeded = errors.New("tree serialization limit exceeded")
)
