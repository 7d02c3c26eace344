package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
)

func newConsole(t *testing.T) *Console {
	t.Helper()
	ix, err := index.Build(map[string][]string{
		"d1": {"cat", "cat", "dog"},
		"d2": {"dog", "bird"},
	})
	require.NoError(t, err)
	return New(executor.New(ix, normalizer.New(normalizer.None), executor.Options{}))
}

func TestRunAnswersUntilEmptyLine(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("cat\ndog\ndog bird fish\n\nnever asked\n")

	require.NoError(t, newConsole(t).Run(context.Background(), in, &out))

	got := out.String()
	assert.Equal(t, 4, strings.Count(got, Prompt))
	assert.Contains(t, got, foundHeader+"\n('d1', 0.89442719099991")
	assert.Contains(t, got, noMatchTerm+"\n")
	assert.Contains(t, got, "('d2', ")
	assert.NotContains(t, got, "never asked")
}

func TestRunNoMatchWording(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("zebra\nzebra okapi\n\n")

	require.NoError(t, newConsole(t).Run(context.Background(), in, &out))
	assert.Contains(t, out.String(), noMatchTerm)
	assert.Contains(t, out.String(), noMatchTerms)
}

func TestRunStopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newConsole(t).Run(context.Background(), strings.NewReader("cat"), &out))
	assert.Equal(t, 2, strings.Count(out.String(), Prompt))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := newConsole(t).Run(ctx, strings.NewReader("cat\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingExecutor struct{}

func (failingExecutor) Execute(context.Context, string) (*executor.SearchResult, error) {
	return nil, errors.New("index unavailable")
}

func TestRunReportsErrorsAndContinues(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, New(failingExecutor{}).Run(context.Background(), strings.NewReader("cat\n\n"), &out))
	assert.Contains(t, out.String(), "Search failed: index unavailable")
	assert.Equal(t, 2, strings.Count(out.String(), Prompt))
}
