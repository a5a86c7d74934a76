package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Section is the list of records stored under one kind
type Section struct {
	Kind    string
	Records []json.RawMessage
}

// Document is an import document; sections keep the order of the source file
type Document struct {
	Sections []Section
}

// ReadDocumentFile opens and parses the import document at path
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDocument(f)
}

// ReadDocument parses a top-level JSON object of kind -> array of records.
// Records are kept raw and parsed one at a time by the importer.
func ReadDocument(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid import document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("invalid import document: expected a JSON object")
	}

	doc := &Document{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid import document: %w", err)
		}
		kind, _ := tok.(string)

		var records []json.RawMessage
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("invalid import document: records of %q: %w", kind, err)
		}
		doc.Sections = append(doc.Sections, Section{Kind: kind, Records: records})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid import document: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid import document: unexpected data after top-level object")
	}
	return doc, nil
}

// RecordCount returns the total number of records across all sections
func (d *Document) RecordCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Records)
	}
	return n
}
