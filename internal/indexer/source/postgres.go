package source

import (
	"context"
	"database/sql"
	"fmt"
)

const documentsQuery = `SELECT id, title, body FROM documents ORDER BY id`

// PostgresSource reads the documents table:
//
//	CREATE TABLE documents (
//	    id    TEXT PRIMARY KEY,
//	    title TEXT NOT NULL DEFAULT '',
//	    body  TEXT NOT NULL
//	);
//
// Title and body are indexed together.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Documents(ctx context.Context, fn func(Document) error) error {
	rows, err := s.db.QueryContext(ctx, documentsQuery)
	if err != nil {
		return fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, title, body string
		if err := rows.Scan(&id, &title, &body); err != nil {
			return fmt.Errorf("scanning document row: %w", err)
		}
		if err := fn(Document{ID: id, Text: title + "\n" + body}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating documents: %w", err)
	}
	return nil
}
