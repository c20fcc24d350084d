// Package domain defines the core value types, error taxonomy, and rule
// evaluation primitives used by phetools.
package domain

import (
	"fmt"
	"strings"
)

// TermID is a curie-form ontology identifier such as "HP:0001250".
type TermID string

// ParseTermID validates curie syntax: one colon, non-empty prefix, all-digit
// suffix, no whitespace anywhere.
func ParseTermID(s string) (TermID, error) {
	if s == "" {
		return "", fmt.Errorf("empty curie")
	}
	for _, r := range s {
		if r == ' ' || r == '\t' {
			return "", fmt.Errorf("curie %q contains stray whitespace", s)
		}
	}
	if strings.Count(s, ":") != 1 {
		return "", fmt.Errorf("curie %q must contain exactly one colon", s)
	}
	prefix, suffix, _ := strings.Cut(s, ":")
	if prefix == "" {
		return "", fmt.Errorf("curie %q has no prefix", s)
	}
	if suffix == "" {
		return "", fmt.Errorf("curie %q has no suffix", s)
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("curie %q has non-digit characters in suffix", s)
		}
	}
	return TermID(s), nil
}

// Prefix returns the curie namespace, e.g. "HP".
func (t TermID) Prefix() string {
	p, _, _ := strings.Cut(string(t), ":")
	return p
}

func (t TermID) String() string { return string(t) }

// OntologyTerm is an immutable node of the loaded term graph. Owned by the
// ontology index; callers must not retain mutable references.
type OntologyTerm struct {
	ID          TermID
	Label       string
	Parents     []TermID
	AltIDs      []TermID
	Synonyms    []string
	Obsolete    bool
	Replacement TermID // empty when no replaced_by mapping exists
}

// Polarity states whether a phenotypic feature was observed or explicitly
// excluded in a subject.
type Polarity string

const (
	PolarityObserved Polarity = "observed"
	PolarityExcluded Polarity = "excluded"
)

// Sex enumerates the permitted entries of the sex column.
type Sex string

// Permitted sex column tokens (M:F:O:U header convention).
const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexOther   Sex = "O"
	SexUnknown Sex = "U"
)

// VitalStatus enumerates the permitted entries of the deceased column.
type VitalStatus string

const (
	VitalDeceased     VitalStatus = "yes"
	VitalAlive        VitalStatus = "no"
	VitalNotAvailable VitalStatus = "na"
)

// PhenotypicAssertion records one phenotype statement for a subject.
// Onset, when present, must not be later than Resolution.
type PhenotypicAssertion struct {
	Term       TermID
	Label      string
	Polarity   Polarity
	Onset      *Age
	Resolution *Age
}

// AlleleToken is a syntactically screened allele entry: an HGVS expression
// (c./n.), a structural-variant label (DEL:..., DUP:..., ...), or "na".
type AlleleToken struct {
	Raw        string
	Structural bool
	NotPresent bool
}

// VariantDescriptor pairs the gene/transcript context with up to two alleles.
type VariantDescriptor struct {
	HgncID     TermID
	GeneSymbol string
	Transcript string
	Allele1    AlleleToken
	Allele2    AlleleToken
	Comment    string
}

// DiseaseReference identifies the diagnosis asserted for a subject.
type DiseaseReference struct {
	ID    TermID
	Label string
}

// PublicationReference cites the source publication of a subject row.
type PublicationReference struct {
	PMID  TermID
	Title string
}

// SubjectRow is one fully validated subject: the unit handed to the record
// builder. Created only by the row validator; never mutated afterwards.
type SubjectRow struct {
	Index              int // zero-based data row index in the source table
	SubjectID          string
	Publication        PublicationReference
	Comment            string
	Disease            DiseaseReference
	Variant            VariantDescriptor
	Sex                Sex
	Vital              VitalStatus
	AgeOfOnset         *Age
	AgeAtLastEncounter *Age
	Assertions         []PhenotypicAssertion
}
