package normalizer

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

func TestNormalizeStripsAndFolds(t *testing.T) {
	n := New(None)
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", " \t\n ", []string{}},
		{"case folding", "Cat DOG cAt", []string{"cat", "dog", "cat"}},
		{"inner punctuation removed", "don't e-mail U.S.A.", []string{"dont", "email", "usa"}},
		{"digits removed", "b2b 1995 r2d2", []string{"bb", "rd"}},
		{"tokens that vanish are dropped", "!!! 42 -- ok", []string{"ok"}},
		{"non ascii letters removed", "café naïve", []string{"caf", "nave"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizePorter2(t *testing.T) {
	n := New(Porter2)
	assert.Equal(t, []string{"run", "connect", "connect", "generous"},
		n.Normalize("Running connections CONNECTED generously"))
}

func TestNormalizeDropsEmptyStems(t *testing.T) {
	n := New(StemmerFunc(func(w string) string {
		if w == "the" {
			return ""
		}
		return w
	}))
	assert.Equal(t, []string{"cat"}, n.Normalize("The cat"))
}

func TestNormalizeIsSharedSafely(t *testing.T) {
	n := New(Porter2)
	want := n.Normalize("searching indexed documents quickly")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, n.Normalize("searching indexed documents quickly"))
		}()
	}
	wg.Wait()
}

func TestSuffixStemmer(t *testing.T) {
	tests := map[string]string{
		"relational": "relate",
		"cats":       "cat",
		"running":    "runn",
		"is":         "is",
		"glass":      "glass",
	}
	for in, want := range tests {
		assert.Equal(t, want, Suffix.Stem(in), in)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"porter2", "suffix", "none", ""} {
		s, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}
	_, err := ByName("lancaster")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = NewByName("lancaster")
	assert.Error(t, err)
}

func TestNewNilStemmer(t *testing.T) {
	assert.Equal(t, []string{"running"}, New(nil).Normalize("Running"))
}
