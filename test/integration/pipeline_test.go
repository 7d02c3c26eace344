// Package integration runs the whole pipeline in process: an XML collection
// is indexed to disk, reloaded and queried over HTTP and the console.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/source"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/console"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/middleware"
)

const collection = `<DOCS>
<DOC id="nyt-001"><TEXT><P>Stocks rallied as markets cheered the election result.</P></TEXT></DOC>
<DOC id="nyt-002"><TEXT><P>Heavy snow closed schools across the city.</P><P>Snowfall records fell.</P></TEXT></DOC>
<DOC id="nyt-003"><TEXT>The election campaign focused on schools and the economy.</TEXT></DOC>
<DOC id="nyt-004"><TEXT><P>Markets fell sharply; traders blamed snow delays.</P></TEXT></DOC>
</DOCS>`

func buildAndLoad(t *testing.T) (*executor.Executor, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "nyt.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(collection), 0644))

	norm := normalizer.New(normalizer.Porter2)
	st := store.New(dir, "nyt")
	built, err := indexer.NewEngine(norm, st, indexer.Options{Collection: "nyt", Workers: 2}).
		Build(context.Background(), source.NewXMLSource(xmlPath))
	require.NoError(t, err)
	require.Equal(t, 4, built.DocCount())

	loaded, err := st.Load()
	require.NoError(t, err)
	return executor.New(loaded, norm, executor.Options{Workers: 2}), st
}

func TestIndexedFilesLayout(t *testing.T) {
	_, st := buildAndLoad(t)

	idf, err := os.ReadFile(st.IDFPath())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(idf), "\n"), "\n")
	for _, line := range lines {
		assert.Len(t, strings.Split(line, "\t"), 2, line)
	}
	// "elect" is in two of four documents
	assert.Contains(t, lines, "elect\t0.6931471805599453")

	tf, err := os.ReadFile(st.TFPath())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(tf), "nyt-001 "))
}

func TestQueryOverHTTP(t *testing.T) {
	exec, _ := buildAndLoad(t)

	mux := http.NewServeMux()
	handler.New(exec, handler.Options{Collection: "nyt"}).Routes(mux)
	srv := httptest.NewServer(middleware.Chain(mux, middleware.RequestID))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/search?q=election+schools")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var result executor.SearchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result.Results)
	// the only document mentioning both terms ranks first
	assert.Equal(t, "nyt-003", result.Results[0].DocID)
	for i := 1; i < len(result.Results); i++ {
		assert.GreaterOrEqual(t, result.Results[i-1].Score, result.Results[i].Score)
	}
}

func TestReloadedIndexAnswersLikeBuiltIndex(t *testing.T) {
	exec, _ := buildAndLoad(t)

	for _, q := range []string{"snow", "markets fell", "economy", "unknownword"} {
		first := exec.ExecuteQuery(q)
		second := exec.ExecuteQuery(strings.ToUpper(q))
		assert.Equal(t, first, second, q)
	}
}

func TestConsoleSession(t *testing.T) {
	exec, _ := buildAndLoad(t)

	var out bytes.Buffer
	in := strings.NewReader("snowfall\nqwerty\n\n")
	require.NoError(t, console.New(exec).Run(context.Background(), in, &out))

	assert.Contains(t, out.String(), "('nyt-002', ")
	assert.Contains(t, out.String(), "Sorry, I didn't find any documents for this term.")
}
