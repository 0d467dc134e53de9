// Package security implements the path allow-list (ACL) and blocked-pattern
// (DLP) checks consulted at the request boundary before documents reach the
// semantic index.
package security

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Sentinel errors for gate rejections.
var (
	ErrACLViolation = errors.New("path not permitted by ACL policy")
	ErrDLPMatch     = errors.New("content blocked by DLP pattern")
)

var defaultAllowedPrefixes = []string{"/"}

var defaultDLPPatterns = []string{
	`-----BEGIN (?:RSA|DSA|EC|PGP) PRIVATE KEY-----`,
	`AKIA[0-9A-Z]{16}`,
	`(?i)secret(?:key)?\s*[:=]\s*[^\s]{16,}`,
	`(?i)password\s*[:=]\s*[^\s]{12,}`,
	`(?i)api[_-]?key\s*[:=]\s*[^\s]{16,}`,
}

// Gate validates paths against an allow-list and scans content for blocked
// patterns. It carries no other policy; callers only react to pass/fail.
type Gate struct {
	allowedPrefixes []string
	dlpPatterns     []*regexp.Regexp
}

// FromEnv builds a Gate from INDEXER_ACL_ALLOW (comma-separated path prefixes,
// defaulting to "/") and INDEXER_DLP_BLOCK_PATTERNS (extra regular expressions
// appended to the built-in set). Unparseable patterns are skipped.
func FromEnv() *Gate {
	allowed := splitList(os.Getenv("INDEXER_ACL_ALLOW"))
	if len(allowed) == 0 {
		allowed = append([]string(nil), defaultAllowedPrefixes...)
	}

	patterns := compilePatterns(defaultDLPPatterns)
	patterns = append(patterns, compilePatterns(splitList(os.Getenv("INDEXER_DLP_BLOCK_PATTERNS")))...)

	return &Gate{allowedPrefixes: allowed, dlpPatterns: patterns}
}

// WithRules builds a Gate with explicit rules, used by composition roots and
// tests that need policy independent of the environment.
func WithRules(allowedPrefixes []string, dlpPatterns []*regexp.Regexp) *Gate {
	return &Gate{allowedPrefixes: allowedPrefixes, dlpPatterns: dlpPatterns}
}

// Allowed reports whether path matches any allow-list prefix. Matching is
// insensitive to a leading slash on either side; "/" and "*" allow everything.
func (g *Gate) Allowed(path string) bool {
	if len(g.allowedPrefixes) == 0 {
		return true
	}
	normalized := path
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	for _, prefix := range g.allowedPrefixes {
		switch {
		case prefix == "/" || prefix == "*":
			return true
		case strings.HasPrefix(normalized, prefix):
			return true
		case strings.HasPrefix(strings.TrimPrefix(normalized, "/"), strings.TrimPrefix(prefix, "/")):
			return true
		}
	}
	return false
}

// CheckPath returns ErrACLViolation when path fails the allow-list.
func (g *Gate) CheckPath(path string) error {
	if g.Allowed(path) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrACLViolation, path)
}

// ScanContent returns ErrDLPMatch when content matches a blocked pattern.
// The matched pattern is included in the error.
func (g *Gate) ScanContent(content string) error {
	for _, pattern := range g.dlpPatterns {
		if pattern.MatchString(content) {
			return fmt.Errorf("%w: %s", ErrDLPMatch, pattern.String())
		}
	}
	return nil
}

func splitList(value string) []string {
	var entries []string
	for _, segment := range strings.Split(value, ",") {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			entries = append(entries, segment)
		}
	}
	return entries
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}
