package validate

import (
	"phetools/internal/cells"
	"phetools/internal/ontology"
	"phetools/pkg/domain"
)

// TermColumn is one phenotype column bound to a resolved HPO term. The
// binding is established once per table from the header duplet.
type TermColumn struct {
	Column int
	Term   domain.TermID
	Label  string
}

// RowValidator parses and validates a single data row against a template
// schema and a set of bound term columns. Validators are immutable after
// construction and safe for concurrent use across rows.
type RowValidator struct {
	schema *domain.TemplateSchema
	index  *ontology.Index
	width  int
	terms  []TermColumn
	engine *domain.RulesEngine
}

// NewRowValidator binds the schema, ontology, and term columns and registers
// the semantic row rules. width is the full header span of the table; term
// columns that failed to bind still occupy a cell in every data row, so the
// expected row width cannot be derived from the bound columns alone.
func NewRowValidator(schema *domain.TemplateSchema, index *ontology.Index, width int, terms []TermColumn) *RowValidator {
	columnOf := make(map[domain.TermID]int, len(terms))
	for _, t := range terms {
		columnOf[t.Term] = t.Column
	}
	engine := domain.NewRulesEngine()
	engine.RegisterRow(SubjectIdentifierRule(schema.ColumnIndex("individual_id")))
	engine.RegisterRow(AncestorConsistencyRule(index, columnOf))
	engine.RegisterRow(OnsetOrderingRule(
		schema.ColumnIndex("age_of_onset"),
		schema.ColumnIndex("age_at_last_encounter"),
		columnOf,
	))
	engine.RegisterRow(PhenotypePresenceRule())
	return &RowValidator{schema: schema, index: index, width: width, terms: terms, engine: engine}
}

// Validate parses every cell of the row, and when all cells parse, runs the
// semantic rules. A row with parse defects reports those defects only:
// semantic checks on half-parsed rows would produce misleading cascades.
func (v *RowValidator) Validate(rowIndex int, raw []string) (*domain.SubjectRow, []domain.ValidationError) {
	if len(raw) != v.width {
		return nil, []domain.ValidationError{
			domain.NewError(rowIndex, domain.ColumnNone, domain.KindSchemaMismatch,
				"row has %d cells, header declares %d columns", len(raw), v.width),
		}
	}

	var errs []domain.ValidationError
	fixed := make([]domain.TypedCell, v.schema.FixedColumnCount())
	for col, spec := range v.schema.Columns {
		cell, cerr := cells.Parse(raw[col], spec)
		if cerr != nil {
			errs = append(errs, domain.NewError(rowIndex, col, cerr.Kind, "%s", cerr.Detail))
			continue
		}
		fixed[col] = cell
	}

	var assertions []domain.PhenotypicAssertion
	encounterCol := v.schema.ColumnIndex("age_at_last_encounter")
	for _, tc := range v.terms {
		cell, cerr := cells.Parse(raw[tc.Column], domain.ColumnSpec{Name: tc.Label, Kind: domain.CellHpoStatus})
		if cerr != nil {
			errs = append(errs, domain.NewError(rowIndex, tc.Column, cerr.Kind, "%s", cerr.Detail))
			continue
		}
		if !cell.HasAssertion {
			continue
		}
		a := domain.PhenotypicAssertion{
			Term:     tc.Term,
			Label:    tc.Label,
			Polarity: cell.Polarity,
			Onset:    cell.Age,
		}
		if cell.Polarity == domain.PolarityObserved && encounterCol >= 0 {
			a.Resolution = fixed[encounterCol].Age
		}
		assertions = append(assertions, a)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	row := v.assemble(rowIndex, fixed, assertions)
	if ruleErrs := v.engine.EvaluateRow(row, rowIndex); len(ruleErrs) > 0 {
		return nil, ruleErrs
	}
	return row, nil
}

func (v *RowValidator) assemble(rowIndex int, fixed []domain.TypedCell, assertions []domain.PhenotypicAssertion) *domain.SubjectRow {
	at := func(name string) domain.TypedCell {
		if i := v.schema.ColumnIndex(name); i >= 0 {
			return fixed[i]
		}
		return domain.TypedCell{}
	}
	return &domain.SubjectRow{
		Index:     rowIndex,
		SubjectID: at("individual_id").Text,
		Publication: domain.PublicationReference{
			PMID:  at("PMID").Identifier,
			Title: at("title").Text,
		},
		Comment: at("comment").Text,
		Disease: domain.DiseaseReference{
			ID:    at("disease_id").Identifier,
			Label: at("disease_label").Text,
		},
		Variant: domain.VariantDescriptor{
			HgncID:     at("HGNC_id").Identifier,
			GeneSymbol: at("gene_symbol").Text,
			Transcript: at("transcript").Text,
			Allele1:    alleleOf(at("allele_1")),
			Allele2:    alleleOf(at("allele_2")),
			Comment:    at("variant.comment").Text,
		},
		Sex:                at("sex").Sex,
		Vital:              at("deceased").Vital,
		AgeOfOnset:         at("age_of_onset").Age,
		AgeAtLastEncounter: at("age_at_last_encounter").Age,
		Assertions:         assertions,
	}
}

func alleleOf(cell domain.TypedCell) domain.AlleleToken {
	if cell.Allele == nil {
		return domain.AlleleToken{}
	}
	return *cell.Allele
}
