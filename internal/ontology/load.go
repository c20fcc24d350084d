package ontology

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"phetools/pkg/domain"
)

// GraphDocument is the term-and-edge source handed over by the external
// ontology-loading collaborator (a decoded local file or cached release).
type GraphDocument struct {
	Version string                `json:"version"`
	Terms   []domain.OntologyTerm `json:"terms"`
}

// NewIndex builds the read-only index from a graph document. It fails with
// *domain.OntologyLoadError when the source is malformed: duplicate or empty
// identifiers, edges to unknown terms, or a cycle in the is-a graph.
func NewIndex(doc GraphDocument) (*Index, error) {
	if len(doc.Terms) == 0 {
		return nil, loadErr("graph document contains no terms")
	}

	byID := make(map[domain.TermID]int, len(doc.Terms))
	for i, t := range doc.Terms {
		if t.ID == "" {
			return nil, loadErr("term at slot %d has an empty identifier", i)
		}
		if prev, dup := byID[t.ID]; dup {
			return nil, loadErr("identifier %s declared by slots %d and %d", t.ID, prev, i)
		}
		byID[t.ID] = i
	}

	parents := make([][]int, len(doc.Terms))
	for i, t := range doc.Terms {
		for _, p := range t.Parents {
			slot, ok := byID[p]
			if !ok {
				return nil, loadErr("term %s references unknown parent %s", t.ID, p)
			}
			parents[i] = append(parents[i], slot)
		}
	}

	if err := detectCycle(parents); err != nil {
		return nil, loadErr("%v", err)
	}

	byLabel := make(map[string]domain.TermID, len(doc.Terms)*2)
	for i, t := range doc.Terms {
		if t.Obsolete {
			continue // obsolete labels must not shadow live terms
		}
		if t.Label != "" {
			byLabel[foldLabel(t.Label)] = t.ID
		}
		for _, syn := range t.Synonyms {
			key := foldLabel(syn)
			if _, taken := byLabel[key]; !taken {
				byLabel[key] = t.ID
			}
		}
		for _, alt := range t.AltIDs {
			if _, taken := byID[alt]; !taken {
				byID[alt] = i
			}
		}
	}

	return &Index{
		version:  doc.Version,
		terms:    doc.Terms,
		byID:     byID,
		byLabel:  byLabel,
		parents:  parents,
		closures: make(map[int]map[int]struct{}),
	}, nil
}

// ReadJSON decodes a graph document from its JSON encoding and builds the
// index.
func ReadJSON(r io.Reader) (*Index, error) {
	var doc GraphDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, loadErr("decode graph document: %v", err)
	}
	return NewIndex(doc)
}

func loadErr(format string, args ...any) error {
	return &domain.OntologyLoadError{Reason: fmt.Sprintf(format, args...)}
}

func foldLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
