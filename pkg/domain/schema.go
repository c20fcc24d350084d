package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ColumnSpec declares one fixed column of a template: the expected header
// duplet (templates carry a two-row header) and the parser kind bound to the
// column's cells.
type ColumnSpec struct {
	Name      string   `yaml:"name"`      // first header row, e.g. "disease_id"
	Subheader string   `yaml:"subheader"` // second header row, e.g. "CURIE"
	Kind      CellKind `yaml:"kind"`
	// Prefixes constrains identifier columns to the listed curie namespaces.
	Prefixes []string `yaml:"prefixes,omitempty"`
	// Optional columns accept empty cells.
	Optional bool `yaml:"optional,omitempty"`
}

// TemplateSchema declares the fixed leading columns of a template. Columns
// after the separator are per-cohort HPO term columns whose header duplet is
// (term label, term id); they are checked against the ontology, not the
// schema.
type TemplateSchema struct {
	Name    string       `yaml:"name"`
	Columns []ColumnSpec `yaml:"columns"`
}

// FixedColumnCount returns the number of declared leading columns, including
// the separator. HPO term columns start at this index.
func (s *TemplateSchema) FixedColumnCount() int { return len(s.Columns) }

// ColumnIndex returns the index of a named fixed column, or -1.
func (s *TemplateSchema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ParseSchema decodes a YAML template schema document.
func ParseSchema(data []byte) (*TemplateSchema, error) {
	var s TemplateSchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse template schema: %w", err)
	}
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("template schema %q declares no columns", s.Name)
	}
	for i, c := range s.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("template schema %q: column %d has no name", s.Name, i)
		}
		if c.Kind == "" {
			return nil, fmt.Errorf("template schema %q: column %q has no kind", s.Name, c.Name)
		}
	}
	return &s, nil
}

// MendelianSchema returns the built-in schema for Mendelian cohort
// templates: seventeen fixed columns followed by HPO term columns.
func MendelianSchema() *TemplateSchema {
	return &TemplateSchema{
		Name: "mendelian",
		Columns: []ColumnSpec{
			{Name: "PMID", Subheader: "CURIE", Kind: CellIdentifier, Prefixes: []string{"PMID"}},
			{Name: "title", Subheader: "str", Kind: CellLabel},
			{Name: "individual_id", Subheader: "str", Kind: CellSubjectID},
			{Name: "comment", Subheader: "optional", Kind: CellFreeText, Optional: true},
			{Name: "disease_id", Subheader: "CURIE", Kind: CellIdentifier, Prefixes: []string{"OMIM", "MONDO"}},
			{Name: "disease_label", Subheader: "str", Kind: CellLabel},
			{Name: "HGNC_id", Subheader: "CURIE", Kind: CellIdentifier, Prefixes: []string{"HGNC"}},
			{Name: "gene_symbol", Subheader: "str", Kind: CellLabel},
			{Name: "transcript", Subheader: "str", Kind: CellTranscript},
			{Name: "allele_1", Subheader: "str", Kind: CellAllele},
			{Name: "allele_2", Subheader: "str", Kind: CellAllele},
			{Name: "variant.comment", Subheader: "optional", Kind: CellFreeText, Optional: true},
			{Name: "age_of_onset", Subheader: "age", Kind: CellAge},
			{Name: "age_at_last_encounter", Subheader: "age", Kind: CellAge},
			{Name: "deceased", Subheader: "yes/no/na", Kind: CellDeceased},
			{Name: "sex", Subheader: "M:F:O:U", Kind: CellSex},
			{Name: "HPO", Subheader: "na", Kind: CellSeparator},
		},
	}
}

// Table is the typed cell grid handed to the validator by the external
// spreadsheet-decoding collaborator: two header rows followed by one row per
// subject. The engine never sees raw spreadsheet bytes.
type Table struct {
	Header1 []string   `json:"header1"` // first header row
	Header2 []string   `json:"header2"` // second header row
	Rows    [][]string `json:"rows"`    // data rows
}
