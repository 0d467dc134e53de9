package semantic

import (
	"math"
	"strings"
	"unicode"

	"github.com/zeebo/xxh3"
)

// EmbeddingDim is the fixed dimension of every document embedding.
const EmbeddingDim = 256

// hashSeed fixes the XXH3 seed so embeddings are deterministic across
// processes and runs.
const hashSeed uint64 = 0xA11CED00DF005

// Embed computes a deterministic feature-hashing embedding of text.
//
// Tokens are runs of letters, digits, and underscores, case-folded. Each token
// hashes to a bucket (hash mod EmbeddingDim) and contributes a magnitude of
// (hash mod 997) / 997; repeated and colliding tokens reinforce their bucket.
// The vector is L2-normalized unless it is all zero. Empty or whitespace-only
// text yields the zero vector. This is an untrained heuristic, not a learned
// representation; collisions are accepted as noise.
func Embed(text string) []float32 {
	vector := make([]float32, EmbeddingDim)
	if strings.TrimSpace(text) == "" {
		return vector
	}

	for _, token := range tokenize(text) {
		hash := xxh3.HashStringSeed(token, hashSeed)
		bucket := hash % EmbeddingDim
		vector[bucket] += float32(hash%997) / 997
	}

	normalize(vector)
	return vector
}

// tokenize splits text on runs of non-alphanumeric, non-underscore characters
// and lowercases each token.
func tokenize(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})
	for i, token := range tokens {
		tokens[i] = strings.ToLower(token)
	}
	return tokens
}

// normalize scales the vector to unit L2 length, leaving an all-zero vector
// untouched.
func normalize(vector []float32) {
	var sumSq float64
	for _, v := range vector {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	length := float32(math.Sqrt(sumSq))
	for i := range vector {
		vector[i] /= length
	}
}

// cosine returns the dot product of two already-normalized vectors, clamped
// to [-1, 1].
func cosine(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	if dot > 1 {
		return 1
	}
	if dot < -1 {
		return -1
	}
	return dot
}
