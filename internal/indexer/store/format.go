package store

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
)

// WriteIDF writes one "<term>\t<idf>" line per term, terms ascending.
func WriteIDF(w io.Writer, ix *index.Index) error {
	bw := bufio.NewWriter(w)
	for _, term := range ix.Terms() {
		idf, _ := ix.IDF(term)
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", term, FormatFloat(idf)); err != nil {
			return fmt.Errorf("writing idf for term %q: %w", term, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing idf table: %w", err)
	}
	return nil
}

// WriteTF writes one "<docID> <term> <tf>" line per stored pair, grouped by
// document in ascending id order with terms ascending inside each document.
func WriteTF(w io.Writer, ix *index.Index) error {
	bw := bufio.NewWriter(w)
	for _, docID := range ix.DocIDs() {
		for _, term := range sortedKeys(ix.Doc(docID)) {
			tf := ix.Doc(docID)[term]
			if _, err := fmt.Fprintf(bw, "%s %s %s\n", docID, term, FormatFloat(tf)); err != nil {
				return fmt.Errorf("writing tf for %s/%s: %w", docID, term, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing tf table: %w", err)
	}
	return nil
}

// ReadIDF parses an idf table. Lines that do not split into exactly two
// tab-separated fields, or whose value is not a number, are skipped and
// counted.
func ReadIDF(r io.Reader) (index.IdfTable, int, error) {
	idf := make(index.IdfTable)
	skipped := 0
	err := scanLines(r, func(line string) {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) != 2 {
			skipped++
			return
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			skipped++
			return
		}
		idf[fields[0]] = v
	})
	if err != nil {
		return nil, skipped, fmt.Errorf("reading idf table: %w", err)
	}
	return idf, skipped, nil
}

// ReadTF parses a tf table. Lines that do not split into exactly three
// whitespace-separated fields, or whose value is not a number, are skipped
// and counted.
func ReadTF(r io.Reader) (map[string]index.DocVector, int, error) {
	docs := make(map[string]index.DocVector)
	skipped := 0
	err := scanLines(r, func(line string) {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			skipped++
			return
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			skipped++
			return
		}
		vec, ok := docs[fields[0]]
		if !ok {
			vec = make(index.DocVector)
			docs[fields[0]] = vec
		}
		vec[fields[1]] = v
	})
	if err != nil {
		return nil, skipped, fmt.Errorf("reading tf table: %w", err)
	}
	return docs, skipped, nil
}

// FormatFloat renders v as the shortest decimal that parses back to v.
// Integral values keep a trailing ".0" and magnitudes outside [1e-4, 1e16)
// use exponent notation, e.g. 0.0, 0.5, 0.6931471805599453, 1e-05.
func FormatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func scanLines(r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	return scanner.Err()
}

func sortedKeys(vec index.DocVector) []string {
	keys := make([]string, 0, len(vec))
	for term := range vec {
		keys = append(keys, term)
	}
	slices.Sort(keys)
	return keys
}
