// Package console runs the interactive query prompt.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
)

const (
	Prompt       = "Please enter query, terms separated by whitespace: "
	foundHeader  = "I found the following documents matching your query:"
	noMatchTerm  = "Sorry, I didn't find any documents for this term."
	noMatchTerms = "Sorry, I didn't find any documents for those terms."
)

type QueryExecutor interface {
	Execute(ctx context.Context, rawQuery string) (*executor.SearchResult, error)
}

type Console struct {
	executor QueryExecutor
}

func New(exec QueryExecutor) *Console {
	return &Console{executor: exec}
}

// Run prompts for queries until the user enters an empty line, the input
// ends or ctx is cancelled. Query errors are printed and the loop goes on.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprint(out, Prompt); err != nil {
			return err
		}
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		query := strings.TrimRight(scanner.Text(), "\r")
		if query == "" {
			return nil
		}

		result, err := c.executor.Execute(ctx, query)
		if err != nil {
			fmt.Fprintf(out, "Search failed: %v\n", err)
			continue
		}
		if err := writeResults(out, query, result); err != nil {
			return err
		}
	}
}

func writeResults(out io.Writer, query string, result *executor.SearchResult) error {
	w := bufio.NewWriter(out)
	if len(result.Results) == 0 {
		msg := noMatchTerms
		if len(strings.Fields(query)) == 1 {
			msg = noMatchTerm
		}
		fmt.Fprintln(w, msg)
		return w.Flush()
	}
	fmt.Fprintln(w, foundHeader)
	for _, sd := range result.Results {
		fmt.Fprintf(w, "('%s', %s)\n", sd.DocID, store.FormatFloat(sd.Score))
	}
	return w.Flush()
}
