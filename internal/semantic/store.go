// Package semantic maintains an append-only, in-memory index of documents
// with deterministic hashed embeddings, top-k similarity search, and per-path
// history.
package semantic

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// DefaultTopK is the result count used when a search does not specify one.
	DefaultTopK = 5

	searchSnippetMaxRunes = 160
	searchSnippetHead     = 157
	ellipsis              = "…"
)

// record is one indexed document version. Records are never mutated or
// deleted; successive versions of the same path coexist.
type record struct {
	id        uuid.UUID
	path      string
	content   string
	embedding []float32
	commitID  string
	timestamp time.Time
}

// Store is a process-wide shared index. A single reader-writer lock guards the
// record sequence and the path index together as one unit: appends take the
// write lock, searches and history reads take the read lock. Append-only
// semantics make finer-grained locking unnecessary.
type Store struct {
	mu      sync.RWMutex
	records []record
	byPath  map[string][]int // path -> positions in records, insertion order
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byPath: make(map[string][]int)}
}

// AddRequest describes a document to index. CommitID is optional; a zero
// Timestamp defaults to the current time.
type AddRequest struct {
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	CommitID  string    `json:"commit_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// AddResponse reports the fresh record id and the embedding dimension.
type AddResponse struct {
	DocumentID   uuid.UUID `json:"document_id"`
	EmbeddingDim int       `json:"embedding_dim"`
}

// SearchRequest describes a similarity query. TopK <= 0 means DefaultTopK.
// PathPrefix filters by exact prefix match; CommitID by exact equality.
type SearchRequest struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k,omitempty"`
	PathPrefix string `json:"path_prefix,omitempty"`
	CommitID   string `json:"commit_id,omitempty"`
}

// SearchResult is one scored candidate.
type SearchResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	Path       string    `json:"path"`
	Score      float32   `json:"score"`
	Snippet    string    `json:"snippet"`
	CommitID   string    `json:"commit_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// HistoryEntry is one indexed version of a path.
type HistoryEntry struct {
	DocumentID uuid.UUID `json:"document_id"`
	CommitID   string    `json:"commit_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Add embeds content and appends a new record unconditionally. Identical
// path+content pairs are never deduplicated; each call creates a fresh record
// and extends the path's history.
func (s *Store) Add(req AddRequest) AddResponse {
	rec := record{
		id:        uuid.New(),
		path:      req.Path,
		content:   req.Content,
		embedding: Embed(req.Content),
		commitID:  req.CommitID,
		timestamp: req.Timestamp,
	}
	if rec.timestamp.IsZero() {
		rec.timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	position := len(s.records)
	s.byPath[req.Path] = append(s.byPath[req.Path], position)
	s.records = append(s.records, rec)

	return AddResponse{DocumentID: rec.id, EmbeddingDim: EmbeddingDim}
}

// Search embeds the query, scores every record passing the filters by cosine
// similarity, and returns the TopK highest-scoring results. Ties keep the
// order produced by the filtering pass.
func (s *Store) Search(req SearchRequest) []SearchResult {
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	queryEmbedding := Embed(req.Query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []SearchResult
	for _, rec := range s.records {
		if req.PathPrefix != "" && !strings.HasPrefix(rec.path, req.PathPrefix) {
			continue
		}
		if req.CommitID != "" && rec.commitID != req.CommitID {
			continue
		}
		results = append(results, SearchResult{
			DocumentID: rec.id,
			Path:       rec.path,
			Score:      cosine(queryEmbedding, rec.embedding),
			Snippet:    searchSnippet(rec.content),
			CommitID:   rec.commitID,
			Timestamp:  rec.timestamp,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// History returns every indexed version of path, exact match only, in
// insertion order. An unknown path yields an empty list.
func (s *Store) History(path string) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := s.byPath[path]
	entries := make([]HistoryEntry, 0, len(positions))
	for _, position := range positions {
		rec := s.records[position]
		entries = append(entries, HistoryEntry{
			DocumentID: rec.id,
			CommitID:   rec.commitID,
			Timestamp:  rec.timestamp,
		})
	}
	return entries
}

// Len returns the number of indexed records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// searchSnippet returns trimmed content verbatim when it fits, otherwise the
// first searchSnippetHead characters plus an ellipsis.
func searchSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if utf8.RuneCountInString(trimmed) <= searchSnippetMaxRunes {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:searchSnippetHead]) + ellipsis
}
