package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_KnownLanguages(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"typescript", "ts", "tsx", "javascript", "js", "json", "rust", "rs"} {
		lang, err := Resolve(id)
		require.NoError(t, err, "language %s should resolve", id)
		assert.NotNil(t, lang)
	}
}

func TestResolve_AliasesShareGrammar(t *testing.T) {
	t.Parallel()

	long, err := Resolve("typescript")
	require.NoError(t, err)
	short, err := Resolve("ts")
	require.NoError(t, err)
	assert.Same(t, long, short)

	rustLong, err := Resolve("rust")
	require.NoError(t, err)
	rustShort, err := Resolve("rs")
	require.NoError(t, err)
	assert.Same(t, rustLong, rustShort)
}

func TestResolve_UnknownLanguage(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"cobol", "", "TypeScript", "TS", "python"} {
		_, err := Resolve(id)
		assert.ErrorIs(t, err, ErrUnsupportedLanguage, "id %q", id)
	}
}

func TestIDs_CoversAliases(t *testing.T) {
	t.Parallel()

	ids := IDs()
	assert.Len(t, ids, 8)
	assert.Contains(t, ids, "json")
	assert.Contains(t, ids, "tsx")
}
