// Package validate implements the row and table validation engine: cell
// parsing, per-row semantic rules, and the cross-row reduction that decides
// whole-table acceptance.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"phetools/internal/ontology"
	"phetools/pkg/domain"
)

// SubjectIdentifierRule rejects rows whose subject identifier cell is empty.
// The cell parser tolerates emptiness so that this rule, not the parser,
// owns the requirement that every subject can be addressed.
func SubjectIdentifierRule(column int) domain.RowRule {
	return subjectIdentifierRule{column: column}
}

type subjectIdentifierRule struct{ column int }

func (subjectIdentifierRule) Name() string { return "subject_identifier" }

func (r subjectIdentifierRule) Evaluate(row *domain.SubjectRow, rowIndex int) []domain.ValidationError {
	if row.SubjectID == "" {
		return []domain.ValidationError{
			domain.NewError(rowIndex, r.column, domain.KindMissingSubjectID, "row has no subject identifier"),
		}
	}
	return nil
}

// AncestorConsistencyRule checks every pair of asserted terms against the
// full transitive closure of the is-a hierarchy. An excluded ancestor with
// an observed descendant is a contradiction: excluding the general class
// denies all of its specializations. Same-polarity ancestor/descendant pairs
// are redundant and reported as advisories.
func AncestorConsistencyRule(index *ontology.Index, columnOf map[domain.TermID]int) domain.RowRule {
	return ancestorConsistencyRule{index: index, columnOf: columnOf}
}

type ancestorConsistencyRule struct {
	index    *ontology.Index
	columnOf map[domain.TermID]int
}

func (ancestorConsistencyRule) Name() string { return "ancestor_consistency" }

func (r ancestorConsistencyRule) Evaluate(row *domain.SubjectRow, rowIndex int) []domain.ValidationError {
	var errs []domain.ValidationError
	for i := range row.Assertions {
		for j := range row.Assertions {
			if i == j {
				continue
			}
			anc, desc := &row.Assertions[i], &row.Assertions[j]
			if anc.Term == desc.Term || !r.index.IsAncestor(anc.Term, desc.Term) {
				continue
			}
			col := r.column(desc.Term)
			switch {
			case anc.Polarity == domain.PolarityExcluded && desc.Polarity == domain.PolarityObserved:
				errs = append(errs, domain.NewError(rowIndex, col, domain.KindContradictoryAssertion,
					"observed %s (%s) contradicts excluded ancestor %s (%s)",
					desc.Label, desc.Term, anc.Label, anc.Term))
			case anc.Polarity == desc.Polarity:
				errs = append(errs, domain.NewError(rowIndex, col, domain.KindRedundantAssertion,
					"%s %s (%s) is redundant: ancestor %s (%s) carries the same polarity",
					desc.Polarity, desc.Label, desc.Term, anc.Label, anc.Term))
			}
		}
	}
	return errs
}

func (r ancestorConsistencyRule) column(term domain.TermID) int {
	if col, ok := r.columnOf[term]; ok {
		return col
	}
	return domain.ColumnNone
}

// OnsetOrderingRule enforces onset <= resolution wherever both ages share an
// ordered grammar: the row-level disease onset against the age at last
// encounter, and each assertion onset against its resolution.
func OnsetOrderingRule(onsetColumn, encounterColumn int, columnOf map[domain.TermID]int) domain.RowRule {
	return onsetOrderingRule{onsetColumn: onsetColumn, encounterColumn: encounterColumn, columnOf: columnOf}
}

type onsetOrderingRule struct {
	onsetColumn     int
	encounterColumn int
	columnOf        map[domain.TermID]int
}

func (onsetOrderingRule) Name() string { return "onset_ordering" }

func (r onsetOrderingRule) Evaluate(row *domain.SubjectRow, rowIndex int) []domain.ValidationError {
	var errs []domain.ValidationError
	if row.AgeOfOnset.Comparable(row.AgeAtLastEncounter) && row.AgeOfOnset.After(row.AgeAtLastEncounter) {
		errs = append(errs, domain.NewError(rowIndex, r.onsetColumn, domain.KindOnsetAfterResolution,
			"age of onset %s is later than age at last encounter %s",
			row.AgeOfOnset.Raw, row.AgeAtLastEncounter.Raw))
	}
	for i := range row.Assertions {
		a := &row.Assertions[i]
		if a.Onset.Comparable(a.Resolution) && a.Onset.After(a.Resolution) {
			col := domain.ColumnNone
			if c, ok := r.columnOf[a.Term]; ok {
				col = c
			}
			errs = append(errs, domain.NewError(rowIndex, col, domain.KindOnsetAfterResolution,
				"onset %s of %s (%s) is later than resolution %s",
				a.Onset.Raw, a.Label, a.Term, a.Resolution.Raw))
		}
	}
	return errs
}

// PhenotypePresenceRule rejects rows carrying no phenotype information at
// all: a subject without a single observed or excluded feature contributes
// nothing to a cohort.
func PhenotypePresenceRule() domain.RowRule {
	return phenotypePresenceRule{}
}

type phenotypePresenceRule struct{}

func (phenotypePresenceRule) Name() string { return "phenotype_presence" }

func (phenotypePresenceRule) Evaluate(row *domain.SubjectRow, rowIndex int) []domain.ValidationError {
	if len(row.Assertions) == 0 {
		return []domain.ValidationError{
			domain.NewError(rowIndex, domain.ColumnNone, domain.KindNoPhenotypeAsserted,
				"row asserts no phenotype; every subject needs at least one observed or excluded feature"),
		}
	}
	return nil
}

// UniqueSubjectRule reports duplicated subject identifiers across the whole
// table. One error is emitted per duplicated identifier, anchored at its
// first occurrence and attributing every offending row index.
func UniqueSubjectRule(column int) domain.TableRule {
	return uniqueSubjectRule{column: column}
}

type uniqueSubjectRule struct{ column int }

func (uniqueSubjectRule) Name() string { return "unique_subject_identifier" }

func (r uniqueSubjectRule) Evaluate(rows []domain.SubjectRow) []domain.ValidationError {
	byID := make(map[string][]int)
	order := make([]string, 0)
	for i := range rows {
		id := rows[i].SubjectID
		if len(byID[id]) == 0 {
			order = append(order, id)
		}
		byID[id] = append(byID[id], rows[i].Index)
	}
	var errs []domain.ValidationError
	for _, id := range order {
		offenders := byID[id]
		if len(offenders) < 2 {
			continue
		}
		sort.Ints(offenders)
		err := domain.NewError(offenders[0], r.column, domain.KindDuplicateSubjectID,
			"subject identifier %q is used by rows %s", id, joinInts(offenders))
		err.RelatedRows = offenders
		errs = append(errs, err)
	}
	return errs
}

// ObservedPhenotypeRule requires at least one observed assertion somewhere
// in the table: a cohort of pure exclusions is not an importable cohort, and
// neither is a table with no data rows at all.
func ObservedPhenotypeRule() domain.TableRule {
	return observedPhenotypeRule{}
}

type observedPhenotypeRule struct{}

func (observedPhenotypeRule) Name() string { return "observed_phenotype" }

func (observedPhenotypeRule) Evaluate(rows []domain.SubjectRow) []domain.ValidationError {
	for i := range rows {
		for j := range rows[i].Assertions {
			if rows[i].Assertions[j].Polarity == domain.PolarityObserved {
				return nil
			}
		}
	}
	return []domain.ValidationError{
		domain.NewError(domain.RowNone, domain.ColumnNone, domain.KindNoObservedPhenotypes,
			"table asserts no observed phenotype in any row"),
	}
}

func joinInts(xs []int) string {
	var b strings.Builder
	for i, x := range xs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", x)
	}
	return b.String()
}
