// Package grammar maps language identifiers to tree-sitter grammars.
package grammar

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
	tsjson "github.com/tree-sitter/tree-sitter-json/bindings/go"
)

// Sentinel errors distinguishing "unknown identifier" (a caller mistake)
// from "known identifier whose grammar cannot be attached" (a service defect).
var (
	ErrUnsupportedLanguage = fmt.Errorf("unsupported language")
	ErrLanguageUnavailable = fmt.Errorf("language unavailable")
)

// idToGrammar maps language identifiers (including short aliases) to
// tree-sitter Language objects. Lazily initialized on first call via sync.Once.
var (
	idToGrammar  map[string]*sitter.Language
	grammarsOnce sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		tsLang := ts.GetLanguage()
		jsLang := javascript.GetLanguage()
		rsLang := rust.GetLanguage()
		// smacker ships no JSON grammar; wrap the official binding's
		// language pointer instead.
		jsonLang := sitter.NewLanguage(tsjson.Language())
		idToGrammar = map[string]*sitter.Language{
			"typescript": tsLang,
			"ts":         tsLang,
			"tsx":        tsx.GetLanguage(),
			"javascript": jsLang,
			"js":         jsLang,
			"json":       jsonLang,
			"rust":       rsLang,
			"rs":         rsLang,
		}
	})
}

// Resolve returns the grammar for a language identifier. Identifiers are
// case-sensitive. An unrecognized identifier yields ErrUnsupportedLanguage;
// a recognized identifier whose grammar could not be constructed yields
// ErrLanguageUnavailable.
func Resolve(languageID string) (*sitter.Language, error) {
	initGrammars()
	lang, ok := idToGrammar[languageID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, languageID)
	}
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrLanguageUnavailable, languageID)
	}
	return lang, nil
}

// IDs returns every recognized language identifier, in no particular order.
func IDs() []string {
	initGrammars()
	ids := make([]string, 0, len(idToGrammar))
	for id := range idToGrammar {
		ids = append(ids, id)
	}
	return ids
}
