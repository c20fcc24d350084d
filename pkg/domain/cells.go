package domain

// CellKind identifies the parser family bound to a column. Kinds are
// resolved once per column from the template schema, never per cell.
type CellKind string

const (
	// CellIdentifier is a prefix-constrained curie (PMID, OMIM/MONDO, HGNC).
	CellIdentifier CellKind = "identifier"
	// CellFreeText is an unconstrained, possibly empty, text cell.
	CellFreeText CellKind = "free_text"
	// CellLabel is a required non-empty text cell (titles, labels, symbols).
	CellLabel CellKind = "label"
	// CellSubjectID is the subject identifier cell. The parser accepts an
	// empty cell; a missing identifier is a semantic defect reported by the
	// row rules, not a parse failure.
	CellSubjectID CellKind = "subject_id"
	// CellTranscript is a versioned transcript accession (NM_000123.4).
	CellTranscript CellKind = "transcript"
	// CellAllele is an HGVS or structural allele token.
	CellAllele CellKind = "allele"
	// CellAge is an onset-age cell (ISO duration, gestational, label, na).
	CellAge CellKind = "age"
	// CellDeceased is a yes/no/na vital status cell.
	CellDeceased CellKind = "deceased"
	// CellSex is an M/F/O/U sex cell.
	CellSex CellKind = "sex"
	// CellSeparator is the fixed HPO boundary column; content ignored.
	CellSeparator CellKind = "separator"
	// CellHpoStatus is a per-term phenotype status cell: observed, excluded,
	// na, empty, or an onset age (implying observed).
	CellHpoStatus CellKind = "hpo_status"
)

// TypedCell is the tagged union produced by the cell parsers. Exactly the
// fields implied by Kind are set; a TypedCell is never mutated once built.
type TypedCell struct {
	Kind  CellKind
	Raw   string
	Empty bool

	Identifier TermID
	Text       string
	Allele     *AlleleToken
	Age        *Age
	Sex        Sex
	Vital      VitalStatus

	// HPO status fields, valid when Kind is CellHpoStatus. An onset age in
	// the cell implies an observed assertion with that onset. An empty cell
	// or "na" carries no assertion at all: absence of data is not exclusion.
	Polarity     Polarity
	HasAssertion bool
}
