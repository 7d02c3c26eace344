// Package store persists an index as two plain-text tables next to each
// other: <collection>.idf and <collection>.tf. The layout is a public
// interface and is kept byte-stable.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

const (
	IDFExt = ".idf"
	TFExt  = ".tf"
)

// Store reads and writes the tables of one collection inside dataDir.
type Store struct {
	dataDir    string
	collection string
	logger     *slog.Logger
}

// New creates a Store for the named collection.
func New(dataDir, collection string) *Store {
	return &Store{
		dataDir:    dataDir,
		collection: collection,
		logger:     slog.Default().With("component", "index-store", "collection", collection),
	}
}

// IDFPath returns the location of the idf table.
func (s *Store) IDFPath() string {
	return filepath.Join(s.dataDir, s.collection+IDFExt)
}

// TFPath returns the location of the tf table.
func (s *Store) TFPath() string {
	return filepath.Join(s.dataDir, s.collection+TFExt)
}

// Save writes both tables. Each file is written to a .tmp sibling, synced and
// renamed into place so readers never observe a partial table.
func (s *Store) Save(ix *index.Index) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := writeAtomic(s.IDFPath(), func(w io.Writer) error { return WriteIDF(w, ix) }); err != nil {
		return err
	}
	if err := writeAtomic(s.TFPath(), func(w io.Writer) error { return WriteTF(w, ix) }); err != nil {
		return err
	}
	s.logger.Info("index saved",
		"idf_path", s.IDFPath(),
		"tf_path", s.TFPath(),
		"terms", ix.TermCount(),
		"docs", ix.DocCount(),
	)
	return nil
}

// Load reads both tables back into an Index. A missing table fails with
// ErrIndexNotFound; malformed lines are skipped.
func (s *Store) Load() (*index.Index, error) {
	idf, idfSkipped, err := readFile(s.IDFPath(), ReadIDF)
	if err != nil {
		return nil, err
	}
	docs, tfSkipped, err := readFile(s.TFPath(), ReadTF)
	if err != nil {
		return nil, err
	}
	if idfSkipped > 0 || tfSkipped > 0 {
		s.logger.Warn("skipped malformed index lines",
			"idf_lines", idfSkipped,
			"tf_lines", tfSkipped,
		)
	}
	ix := index.New(idf, docs)
	s.logger.Info("index loaded",
		"terms", ix.TermCount(),
		"docs", ix.DocCount(),
		"pairs", ix.PairCount(),
	)
	return ix, nil
}

func readFile[T any](path string, parse func(io.Reader) (T, int, error)) (T, int, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, 0, fmt.Errorf("opening %s: %w", path, apperrors.ErrIndexNotFound)
		}
		return zero, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	v, skipped, err := parse(f)
	if err != nil {
		return zero, skipped, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, skipped, nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp file %s: %w", tmpPath, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmpPath, err)
	}
	return nil
}
