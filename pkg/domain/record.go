package domain

import "time"

// OntologyClass is a curie plus its primary label, the GA4GH-style term
// reference used throughout Record.
type OntologyClass struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// TimeElement carries an age in its source grammar: either an ISO duration,
// a gestational week/day pair, or an ontology onset class.
type TimeElement struct {
	Age              string         `json:"age,omitempty"`
	GestationalWeeks int            `json:"gestationalWeeks,omitempty"`
	GestationalDays  int            `json:"gestationalDays,omitempty"`
	OntologyClass    *OntologyClass `json:"ontologyClass,omitempty"`
}

// Subject describes the individual of a record.
type Subject struct {
	ID                  string       `json:"id"`
	Sex                 string       `json:"sex"`
	Deceased            bool         `json:"deceased,omitempty"`
	TimeAtLastEncounter *TimeElement `json:"timeAtLastEncounter,omitempty"`
}

// PhenotypicFeature is one observed or excluded phenotype with its onset.
type PhenotypicFeature struct {
	Type       OntologyClass `json:"type"`
	Excluded   bool          `json:"excluded,omitempty"`
	Onset      *TimeElement  `json:"onset,omitempty"`
	Resolution *TimeElement  `json:"resolution,omitempty"`
}

// GeneDescriptor names the gene of a variant interpretation.
type GeneDescriptor struct {
	ValueID string `json:"valueId"`
	Symbol  string `json:"symbol"`
}

// VariantInterpretation holds one syntactically screened allele in its
// transcript context. Semantic resolution of the allele happens downstream.
type VariantInterpretation struct {
	Gene       GeneDescriptor `json:"gene"`
	Transcript string         `json:"transcript,omitempty"`
	Allele     string         `json:"allele"`
	Structural bool           `json:"structural,omitempty"`
	Zygosity   string         `json:"zygosity,omitempty"`
}

// RecordDisease is the diagnosis block of a record.
type RecordDisease struct {
	Term  OntologyClass `json:"term"`
	Onset *TimeElement  `json:"onset,omitempty"`
}

// Resource identifies one ontology or nomenclature release used to build a
// record.
type Resource struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MetaData records provenance for one built record.
type MetaData struct {
	Created          time.Time  `json:"created"`
	CreatedBy        string     `json:"createdBy,omitempty"`
	ImportID         string     `json:"importId,omitempty"`
	Resources        []Resource `json:"resources,omitempty"`
	PMID             string     `json:"pmid,omitempty"`
	PublicationTitle string     `json:"publicationTitle,omitempty"`
}

// Record is the fully built in-memory subject record handed to the external
// serialization collaborator. It carries no validation state: every Record
// derives from an accepted SubjectRow.
type Record struct {
	ID                 string                  `json:"id"`
	Subject            Subject                 `json:"subject"`
	PhenotypicFeatures []PhenotypicFeature     `json:"phenotypicFeatures,omitempty"`
	ExcludedFeatures   []PhenotypicFeature     `json:"excludedFeatures,omitempty"`
	Interpretations    []VariantInterpretation `json:"interpretations,omitempty"`
	Disease            RecordDisease           `json:"disease"`
	MetaData           MetaData                `json:"metaData"`
}
