package ontology

import (
	"bufio"
	"io"
	"strings"

	"phetools/pkg/domain"
)

const scannerBufferSize = 1 << 20

// ReadOBO parses the subset of OBO-format stanzas the index needs (id, name,
// synonym, alt_id, is_a, is_obsolete, replaced_by) and builds the index.
// Unknown tags and non-Term stanzas are skipped.
func ReadOBO(r io.Reader) (*Index, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scannerBufferSize), scannerBufferSize)

	var doc GraphDocument
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "[Term]":
			term := parseOboTerm(scanner)
			if term.ID != "" {
				doc.Terms = append(doc.Terms, term)
			}
		case strings.HasPrefix(line, "data-version: "):
			doc.Version = strings.TrimPrefix(line, "data-version: ")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, loadErr("read obo source: %v", err)
	}
	return NewIndex(doc)
}

func parseOboTerm(scanner *bufio.Scanner) domain.OntologyTerm {
	var t domain.OntologyTerm
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break // end of stanza
		}
		key, val, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		switch key {
		case "id":
			t.ID = domain.TermID(val)
		case "name":
			t.Label = val
		case "synonym":
			if syn := parseQuoted(val); syn != "" {
				t.Synonyms = append(t.Synonyms, syn)
			}
		case "alt_id":
			t.AltIDs = append(t.AltIDs, domain.TermID(val))
		case "is_a":
			id, _, _ := strings.Cut(val, " ! ")
			t.Parents = append(t.Parents, domain.TermID(strings.TrimSpace(id)))
		case "is_obsolete":
			t.Obsolete = val == "true"
		case "replaced_by":
			t.Replacement = domain.TermID(val)
		}
	}
	return t
}

// parseQuoted extracts the text between the first pair of double quotes.
func parseQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return s
	}
	start++
	end := strings.IndexByte(s[start:], '"')
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}
