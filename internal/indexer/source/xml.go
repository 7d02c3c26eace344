package source

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// XMLSource reads a collection shaped like
//
//	<DOCS>
//	  <DOC id="d1"><TEXT><P>first paragraph</P><P>second</P></TEXT></DOC>
//	</DOCS>
//
// When TEXT has child elements only their text is used; otherwise the text
// directly inside TEXT is. Everything outside TEXT is ignored.
type XMLSource struct {
	path string
}

func NewXMLSource(path string) *XMLSource {
	return &XMLSource{path: path}
}

func (s *XMLSource) Documents(ctx context.Context, fn func(Document) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("opening collection %s: %w", s.path, err)
	}
	defer f.Close()

	if err := ReadXML(ctx, f, fn); err != nil {
		return fmt.Errorf("reading collection %s: %w", s.path, err)
	}
	return nil
}

// docState accumulates the text of the DOC element being decoded.
type docState struct {
	id        string
	inText    bool
	depth     int // element depth below TEXT
	direct    []string
	nested    []string
	hasNested bool
}

func (d *docState) text() string {
	if d.hasNested {
		return strings.Join(d.nested, " ")
	}
	return strings.Join(d.direct, " ")
}

// ReadXML streams DOC elements from r.
func ReadXML(ctx context.Context, r io.Reader, fn func(Document) error) error {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var doc *docState
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decoding xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "DOC" && doc == nil:
				id, ok := attr(t, "id")
				if !ok {
					return apperrors.Invalid("DOC element without id attribute")
				}
				doc = &docState{id: id}
			case doc == nil:
			case doc.inText:
				doc.depth++
				doc.hasNested = true
			case t.Name.Local == "TEXT":
				doc.inText = true
			}
		case xml.EndElement:
			switch {
			case doc == nil:
			case doc.inText && doc.depth > 0:
				doc.depth--
			case doc.inText && t.Name.Local == "TEXT":
				doc.inText = false
			case t.Name.Local == "DOC":
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(Document{ID: doc.id, Text: doc.text()}); err != nil {
					return err
				}
				doc = nil
			}
		case xml.CharData:
			if doc == nil || !doc.inText {
				continue
			}
			if doc.depth > 0 {
				doc.nested = append(doc.nested, string(t))
			} else {
				doc.direct = append(doc.direct, string(t))
			}
		}
	}
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
