// Package source streams raw documents into the indexer from the supported
// corpus formats: a TREC-style XML collection, a directory of text files and
// a PostgreSQL table.
package source

import "context"

// Document is one raw, not yet normalized, corpus entry.
type Document struct {
	ID   string
	Text string
}

// Source yields every document of a corpus exactly once. Returning an error
// from fn stops the iteration and Documents returns that error.
type Source interface {
	Documents(ctx context.Context, fn func(Document) error) error
}
