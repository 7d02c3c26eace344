package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/postgres"
)

func collect(t *testing.T, src Source) []Document {
	t.Helper()
	var docs []Document
	require.NoError(t, src.Documents(context.Background(), func(d Document) error {
		docs = append(docs, d)
		return nil
	}))
	return docs
}

const collectionXML = `<?xml version="1.0"?>
<DOCS>
  <DOC id="d1">
    <HEADLINE>ignored headline</HEADLINE>
    <TEXT>
      <P>The cat sat.</P>
      stray text between paragraphs
      <P>Cats <B>purr</B> loudly</P>
    </TEXT>
  </DOC>
  <DOC id="d2"><TEXT>Plain text &amp; no paragraphs</TEXT></DOC>
  <DOC id="d3"><TEXT></TEXT></DOC>
</DOCS>`

func TestReadXML(t *testing.T) {
	var docs []Document
	err := ReadXML(context.Background(), strings.NewReader(collectionXML), func(d Document) error {
		docs = append(docs, d)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "d1", docs[0].ID)
	assert.Equal(t, []string{"The", "cat", "sat.", "Cats", "purr", "loudly"}, strings.Fields(docs[0].Text))
	assert.NotContains(t, docs[0].Text, "stray")
	assert.NotContains(t, docs[0].Text, "headline")

	assert.Equal(t, "d2", docs[1].ID)
	assert.Equal(t, "Plain text & no paragraphs", docs[1].Text)

	assert.Equal(t, "d3", docs[2].ID)
	assert.Empty(t, strings.TrimSpace(docs[2].Text))
}

func TestReadXMLMissingID(t *testing.T) {
	err := ReadXML(context.Background(), strings.NewReader(`<DOCS><DOC><TEXT>x</TEXT></DOC></DOCS>`), func(Document) error {
		return nil
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestReadXMLStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := ReadXML(context.Background(), strings.NewReader(collectionXML), func(Document) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestReadXMLCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ReadXML(ctx, strings.NewReader(collectionXML), func(Document) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestXMLSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nyt.xml")
	require.NoError(t, os.WriteFile(path, []byte(collectionXML), 0644))

	docs := collect(t, NewXMLSource(path))
	assert.Len(t, docs, 3)

	err := NewXMLSource(filepath.Join(t.TempDir(), "missing.xml")).Documents(context.Background(), func(Document) error { return nil })
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("dog bird"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("cat dog"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skipped"), 0644))

	docs := collect(t, NewDirSource(dir))
	assert.Equal(t, []Document{
		{ID: "a", Text: "cat dog"},
		{ID: "b", Text: "dog bird"},
	}, docs)
}

func TestDirSourceEmpty(t *testing.T) {
	assert.Empty(t, collect(t, NewDirSource(t.TempDir())))
}

func TestPostgresSource(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load("")
	require.NoError(t, err)
	client, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	defer client.Close()

	// temp tables are per connection
	client.DB.SetMaxOpenConns(1)
	_, err = client.DB.ExecContext(ctx, `CREATE TEMP TABLE documents (id TEXT PRIMARY KEY, title TEXT NOT NULL DEFAULT '', body TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = client.DB.ExecContext(ctx, `INSERT INTO documents (id, title, body) VALUES ('d2', 'Dogs', 'dog bird'), ('d1', 'Cats', 'cat dog')`)
	require.NoError(t, err)

	docs := collect(t, NewPostgresSource(client.DB))
	assert.Equal(t, []Document{
		{ID: "d1", Text: "Cats\ncat dog"},
		{ID: "d2", Text: "Dogs\ndog bird"},
	}, docs)
}
