package domain

import (
	"fmt"
	"sort"
)

// Severity labels a validation error for reporting. Advisory (warn) errors
// still reject the import: acceptance requires a defect-free table, but the
// report distinguishes hard defects from entries a curator resolves by
// updating terminology.
type Severity string

const (
	// SeverityBlock marks a hard defect in the submitted data.
	SeverityBlock Severity = "block"
	// SeverityWarn marks an advisory that still requires curator resolution.
	SeverityWarn Severity = "warn"
)

// ErrorKind enumerates the validation error taxonomy.
type ErrorKind string

// Parse-stage kinds (malformed cell content).
const (
	KindMalformedAge             ErrorKind = "malformed_age"
	KindMalformedIdentifier      ErrorKind = "malformed_identifier"
	KindMalformedAllele          ErrorKind = "malformed_allele"
	KindMalformedCell            ErrorKind = "malformed_cell"
	KindUnresolvableHpoReference ErrorKind = "unresolvable_hpo_reference"
	KindObsoleteTermReference    ErrorKind = "obsolete_term_reference"
)

// Semantic-stage kinds (well-formed cells, contradictory content).
const (
	KindContradictoryAssertion ErrorKind = "contradictory_assertion"
	KindRedundantAssertion     ErrorKind = "redundant_assertion"
	KindOnsetAfterResolution   ErrorKind = "onset_after_resolution"
	KindNoPhenotypeAsserted    ErrorKind = "no_phenotype_asserted"
	KindMissingSubjectID       ErrorKind = "missing_subject_identifier"
)

// Table-stage kinds (cross-row invariants).
const (
	KindDuplicateSubjectID   ErrorKind = "duplicate_subject_identifier"
	KindSchemaMismatch       ErrorKind = "schema_mismatch"
	KindNoObservedPhenotypes ErrorKind = "no_observed_phenotypes"
)

// Severity returns the reporting severity of the kind. Only the obsolete-term
// advisory and the redundant-assertion advisory are warn level.
func (k ErrorKind) Severity() Severity {
	switch k {
	case KindObsoleteTermReference, KindRedundantAssertion:
		return SeverityWarn
	default:
		return SeverityBlock
	}
}

// ColumnNone marks an error that cannot be attributed to a single column.
const ColumnNone = -1

// RowNone marks an error that precedes row processing (schema mismatch).
const RowNone = -1

// ValidationError is an immutable, position-addressable defect report entry.
type ValidationError struct {
	Row      int       `json:"row"`
	Column   int       `json:"column"`
	Kind     ErrorKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Detail   string    `json:"detail"`
	// RelatedRows lists every offending row for cross-row defects such as
	// duplicated subject identifiers.
	RelatedRows []int `json:"related_rows,omitempty"`
}

// NewError builds a ValidationError with the severity implied by kind.
func NewError(row, column int, kind ErrorKind, format string, args ...any) ValidationError {
	return ValidationError{
		Row:      row,
		Column:   column,
		Kind:     kind,
		Severity: kind.Severity(),
		Detail:   fmt.Sprintf(format, args...),
	}
}

// SortErrors orders a defect list by (row, column, kind, detail) so repeated
// runs on identical input produce byte-identical reports regardless of the
// row processing order.
func SortErrors(errs []ValidationError) {
	sort.SliceStable(errs, func(i, j int) bool {
		a, b := errs[i], errs[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Detail < b.Detail
	})
}

// ImportResult is the whole-table outcome: either every row validated and
// Rows holds all subjects, or Errors holds the complete defect list and Rows
// is empty. A partial subject set is never produced.
type ImportResult struct {
	Rows   []SubjectRow      `json:"rows,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Accepted reports whether the import produced a valid subject set.
func (r ImportResult) Accepted() bool { return len(r.Errors) == 0 }

// OntologyLoadError is fatal: no validation can proceed without a loadable,
// acyclic term graph.
type OntologyLoadError struct {
	Reason string
}

func (e *OntologyLoadError) Error() string {
	return "ontology load failed: " + e.Reason
}
