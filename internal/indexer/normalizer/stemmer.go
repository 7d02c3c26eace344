package normalizer

import (
	"strings"

	"github.com/kljensen/snowball/english"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// Stemmer reduces a lowercase alphabetic word to its stem. Implementations
// must be deterministic and free of side effects.
type Stemmer interface {
	Stem(word string) string
}

// StemmerFunc adapts a plain function to the Stemmer interface.
type StemmerFunc func(word string) string

func (f StemmerFunc) Stem(word string) string { return f(word) }

var (
	// Porter2 is the Snowball English stemmer. Stop words are stemmed too.
	Porter2 Stemmer = StemmerFunc(func(word string) string {
		return english.Stem(word, true)
	})
	// Suffix is a small rule-based suffix stripper.
	Suffix Stemmer = StemmerFunc(stripSuffix)
	// None leaves words untouched.
	None Stemmer = StemmerFunc(func(word string) string { return word })
)

// ByName maps a configured stemmer name to its implementation.
func ByName(name string) (Stemmer, error) {
	switch name {
	case "porter2", "":
		return Porter2, nil
	case "suffix":
		return Suffix, nil
	case "none":
		return None, nil
	default:
		return nil, apperrors.Invalid("unknown stemmer %q", name)
	}
}

var suffixRules = []struct {
	suffix      string
	replacement string
	minLen      int
}{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"eness", "ene", 2},
	{"tion", "t", 3},
	{"sion", "s", 3},
	{"ying", "y", 2},
	{"ling", "l", 3},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"est", "", 3},
	{"ful", "", 3},
	{"ous", "", 3},
	{"ess", "", 3},
	{"ble", "", 3},
	{"ed", "", 3},
	{"er", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}

// stripSuffix applies the first matching rule whose result keeps at least
// minLen characters.
func stripSuffix(word string) string {
	for _, rule := range suffixRules {
		if strings.HasSuffix(word, rule.suffix) {
			stemmed := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(stemmed) >= rule.minLen {
				return stemmed
			}
		}
	}
	return word
}
