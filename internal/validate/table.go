package validate

import (
	"strings"
	"sync"

	"phetools/internal/ontology"
	"phetools/pkg/domain"
)

// TableValidator validates a whole template table: header shape, term
// column bindings, every data row, and the cross-row invariants. The result
// is atomic; a table with any blocking defect contributes no rows at all.
type TableValidator struct {
	schema *domain.TemplateSchema
	index  *ontology.Index
}

// NewTableValidator binds a template schema and an ontology index.
func NewTableValidator(schema *domain.TemplateSchema, index *ontology.Index) *TableValidator {
	return &TableValidator{schema: schema, index: index}
}

// Validate runs the full pipeline. Header mismatches against the declared
// schema short-circuit everything else: when the table is not even the
// right shape, per-cell errors would be noise. Rows are validated
// concurrently; the reduction and the error ordering are deterministic.
func (v *TableValidator) Validate(table *domain.Table) domain.ImportResult {
	if errs := v.checkHeader(table); len(errs) > 0 {
		domain.SortErrors(errs)
		return domain.ImportResult{Errors: errs}
	}

	terms, errs := v.bindTermColumns(table)
	rv := NewRowValidator(v.schema, v.index, len(table.Header1), terms)

	type rowResult struct {
		row  *domain.SubjectRow
		errs []domain.ValidationError
	}
	results := make([]rowResult, len(table.Rows))
	var wg sync.WaitGroup
	for i := range table.Rows {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			row, rowErrs := rv.Validate(i, table.Rows[i])
			results[i] = rowResult{row: row, errs: rowErrs}
		}(i)
	}
	wg.Wait()

	var rows []domain.SubjectRow
	for i := range results {
		errs = append(errs, results[i].errs...)
		if results[i].row != nil {
			rows = append(rows, *results[i].row)
		}
	}

	engine := domain.NewRulesEngine()
	engine.RegisterTable(UniqueSubjectRule(v.schema.ColumnIndex("individual_id")))
	if len(errs) == 0 {
		// A row dropped by an earlier defect may have carried the only
		// observed phenotype; the check runs only when every row parsed.
		engine.RegisterTable(ObservedPhenotypeRule())
	}
	errs = append(errs, engine.EvaluateTable(rows)...)

	domain.SortErrors(errs)
	if len(errs) > 0 {
		return domain.ImportResult{Errors: errs}
	}
	return domain.ImportResult{Rows: rows}
}

// checkHeader verifies the two-row header duplet of every fixed column. Any
// deviation from the declared schema is a schema mismatch.
func (v *TableValidator) checkHeader(table *domain.Table) []domain.ValidationError {
	var errs []domain.ValidationError
	fixed := v.schema.FixedColumnCount()
	if len(table.Header1) < fixed || len(table.Header2) < fixed {
		return []domain.ValidationError{
			domain.NewError(domain.RowNone, domain.ColumnNone, domain.KindSchemaMismatch,
				"header has %d/%d columns, template %q declares %d fixed columns",
				len(table.Header1), len(table.Header2), v.schema.Name, fixed),
		}
	}
	if len(table.Header1) != len(table.Header2) {
		errs = append(errs, domain.NewError(domain.RowNone, domain.ColumnNone, domain.KindSchemaMismatch,
			"header rows disagree on width: %d vs %d", len(table.Header1), len(table.Header2)))
	}
	for col, spec := range v.schema.Columns {
		if table.Header1[col] != spec.Name {
			errs = append(errs, domain.NewError(domain.RowNone, col, domain.KindSchemaMismatch,
				"expected header %q, found %q", spec.Name, table.Header1[col]))
		}
		if table.Header2[col] != spec.Subheader {
			errs = append(errs, domain.NewError(domain.RowNone, col, domain.KindSchemaMismatch,
				"expected subheader %q, found %q", spec.Subheader, table.Header2[col]))
		}
	}
	return errs
}

// bindTermColumns resolves each phenotype column's header duplet, which is
// (term label, term id), against the ontology. Columns that fail to bind
// are dropped from row validation; their defects alone already reject the
// table. Obsolete references bind but are reported so the curator replaces
// them.
func (v *TableValidator) bindTermColumns(table *domain.Table) ([]TermColumn, []domain.ValidationError) {
	var (
		terms []TermColumn
		errs  []domain.ValidationError
	)
	for col := v.schema.FixedColumnCount(); col < len(table.Header1); col++ {
		label := strings.TrimSpace(table.Header1[col])
		rawID := strings.TrimSpace(table.Header2[col])
		id, err := domain.ParseTermID(rawID)
		if err != nil {
			errs = append(errs, domain.NewError(domain.RowNone, col, domain.KindUnresolvableHpoReference,
				"phenotype column %q: %v", label, err))
			continue
		}
		term, ok := v.index.Resolve(id)
		if !ok {
			errs = append(errs, domain.NewError(domain.RowNone, col, domain.KindUnresolvableHpoReference,
				"phenotype column %q references %s, which is not in the loaded ontology", label, id))
			continue
		}
		if term.Obsolete {
			detail := "phenotype column %q references obsolete term %s"
			if repl := v.index.ReplacementFor(id); repl != "" {
				errs = append(errs, domain.NewError(domain.RowNone, col, domain.KindObsoleteTermReference,
					detail+"; replaced by %s", label, id, repl))
			} else {
				errs = append(errs, domain.NewError(domain.RowNone, col, domain.KindObsoleteTermReference,
					detail, label, id))
			}
		}
		if !labelMatches(label, term) {
			errs = append(errs, domain.NewError(domain.RowNone, col, domain.KindMalformedIdentifier,
				"phenotype column label %q does not match %s (%q)", label, term.ID, term.Label))
			continue
		}
		terms = append(terms, TermColumn{Column: col, Term: term.ID, Label: term.Label})
	}
	return terms, errs
}

func labelMatches(label string, term domain.OntologyTerm) bool {
	if strings.EqualFold(label, term.Label) {
		return true
	}
	for _, syn := range term.Synonyms {
		if strings.EqualFold(label, syn) {
			return true
		}
	}
	return false
}
