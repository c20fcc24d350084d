// Package record turns accepted subject rows into export-ready records. The
// builder is pure mapping: it never validates, because every input row has
// already passed the table validator.
package record

import (
	"time"

	"github.com/google/uuid"

	"phetools/internal/ontology"
	"phetools/pkg/domain"
)

// Builder maps accepted rows onto records. Now is swappable for tests;
// everything else is fixed at construction.
type Builder struct {
	index     *ontology.Index
	createdBy string
	now       func() time.Time
}

// NewBuilder constructs a builder stamping records with the given curator
// identity and the ontology release version from the index.
func NewBuilder(index *ontology.Index, createdBy string) *Builder {
	return &Builder{index: index, createdBy: createdBy, now: time.Now}
}

// WithClock replaces the creation timestamp source.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// BuildAll maps every accepted row under one shared import identifier.
func (b *Builder) BuildAll(importID string, rows []domain.SubjectRow) []domain.Record {
	records := make([]domain.Record, 0, len(rows))
	for i := range rows {
		records = append(records, b.Build(importID, &rows[i]))
	}
	return records
}

// Build maps one accepted row onto a record. Observed and excluded features
// are partitioned, and each partition is arranged in ontology depth-first
// order so related phenotypes sit together in the output.
func (b *Builder) Build(importID string, row *domain.SubjectRow) domain.Record {
	observed, excluded := partition(row.Assertions)
	return domain.Record{
		ID: uuid.NewString(),
		Subject: domain.Subject{
			ID:                  row.SubjectID,
			Sex:                 sexLabel(row.Sex),
			Deceased:            row.Vital == domain.VitalDeceased,
			TimeAtLastEncounter: timeElement(row.AgeAtLastEncounter),
		},
		PhenotypicFeatures: b.features(observed, false),
		ExcludedFeatures:   b.features(excluded, true),
		Interpretations:    interpretations(&row.Variant),
		Disease: domain.RecordDisease{
			Term:  domain.OntologyClass{ID: string(row.Disease.ID), Label: row.Disease.Label},
			Onset: timeElement(row.AgeOfOnset),
		},
		MetaData: domain.MetaData{
			Created:   b.now().UTC(),
			CreatedBy: b.createdBy,
			ImportID:  importID,
			Resources: []domain.Resource{
				{ID: "hp", Name: "human phenotype ontology", Version: b.index.Version()},
			},
			PMID:             string(row.Publication.PMID),
			PublicationTitle: row.Publication.Title,
		},
	}
}

func partition(assertions []domain.PhenotypicAssertion) (observed, excluded []domain.PhenotypicAssertion) {
	for _, a := range assertions {
		if a.Polarity == domain.PolarityObserved {
			observed = append(observed, a)
		} else {
			excluded = append(excluded, a)
		}
	}
	return observed, excluded
}

// features arranges one polarity partition in ontology order and maps it to
// the output shape.
func (b *Builder) features(assertions []domain.PhenotypicAssertion, excluded bool) []domain.PhenotypicFeature {
	if len(assertions) == 0 {
		return nil
	}
	byTerm := make(map[domain.TermID]*domain.PhenotypicAssertion, len(assertions))
	terms := make([]domain.TermID, 0, len(assertions))
	for i := range assertions {
		byTerm[assertions[i].Term] = &assertions[i]
		terms = append(terms, assertions[i].Term)
	}
	out := make([]domain.PhenotypicFeature, 0, len(assertions))
	for _, term := range b.index.ArrangeTerms(terms) {
		a, ok := byTerm[term]
		if !ok {
			continue
		}
		f := domain.PhenotypicFeature{
			Type:     domain.OntologyClass{ID: string(a.Term), Label: a.Label},
			Excluded: excluded,
			Onset:    timeElement(a.Onset),
		}
		if !excluded {
			f.Resolution = timeElement(a.Resolution)
		}
		out = append(out, f)
	}
	return out
}

func interpretations(v *domain.VariantDescriptor) []domain.VariantInterpretation {
	if v.Allele1.Raw == "" && v.Allele2.Raw == "" {
		return nil
	}
	gene := domain.GeneDescriptor{ValueID: string(v.HgncID), Symbol: v.GeneSymbol}
	base := domain.VariantInterpretation{
		Gene:       gene,
		Transcript: v.Transcript,
		Allele:     v.Allele1.Raw,
		Structural: v.Allele1.Structural,
	}
	if v.Allele2.NotPresent {
		return []domain.VariantInterpretation{base}
	}
	if v.Allele1.Raw == v.Allele2.Raw {
		base.Zygosity = "homozygous"
		return []domain.VariantInterpretation{base}
	}
	base.Zygosity = "heterozygous"
	second := domain.VariantInterpretation{
		Gene:       gene,
		Transcript: v.Transcript,
		Allele:     v.Allele2.Raw,
		Structural: v.Allele2.Structural,
		Zygosity:   "heterozygous",
	}
	return []domain.VariantInterpretation{base, second}
}

func timeElement(a *domain.Age) *domain.TimeElement {
	if a == nil {
		return nil
	}
	switch a.Kind {
	case domain.AgeISODuration:
		return &domain.TimeElement{Age: a.Raw}
	case domain.AgeGestational:
		return &domain.TimeElement{GestationalWeeks: a.GestationalWeeks, GestationalDays: a.GestationalDays}
	case domain.AgeOnsetLabel:
		return &domain.TimeElement{OntologyClass: &domain.OntologyClass{ID: string(a.OnsetTerm), Label: a.Raw}}
	default:
		return nil
	}
}

func sexLabel(s domain.Sex) string {
	switch s {
	case domain.SexMale:
		return "MALE"
	case domain.SexFemale:
		return "FEMALE"
	case domain.SexOther:
		return "OTHER_SEX"
	default:
		return "UNKNOWN_SEX"
	}
}
