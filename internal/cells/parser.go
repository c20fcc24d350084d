// Package cells turns raw template cell strings into typed values. Every
// parser is a pure function keyed by the column kind the schema resolved up
// front; parsers hold no state and are safe to call concurrently.
package cells

import (
	"fmt"
	"strings"

	"phetools/pkg/domain"
)

// CellError reports a malformed cell. The row validator attaches the table
// position; parsers only know the content.
type CellError struct {
	Kind   domain.ErrorKind
	Detail string
}

func (e *CellError) Error() string { return e.Detail }

func cellErr(kind domain.ErrorKind, format string, args ...any) *CellError {
	return &CellError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Parse dispatches on the column kind resolved from the template schema.
// Leading or trailing whitespace is a defect, not silently trimmed: stray
// whitespace in curated templates has historically hidden real mistakes.
func Parse(raw string, spec domain.ColumnSpec) (domain.TypedCell, *CellError) {
	if raw != strings.TrimSpace(raw) {
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "stray whitespace in %q", raw)
	}
	switch spec.Kind {
	case domain.CellIdentifier:
		return parseIdentifier(raw, spec)
	case domain.CellLabel:
		return parseLabel(raw, spec)
	case domain.CellSubjectID:
		return parseSubjectID(raw, spec)
	case domain.CellFreeText:
		return domain.TypedCell{Kind: spec.Kind, Raw: raw, Text: raw, Empty: raw == ""}, nil
	case domain.CellTranscript:
		return parseTranscript(raw)
	case domain.CellAllele:
		return parseAllele(raw)
	case domain.CellAge:
		return parseAgeCell(raw)
	case domain.CellDeceased:
		return parseDeceased(raw)
	case domain.CellSex:
		return parseSex(raw)
	case domain.CellSeparator:
		return domain.TypedCell{Kind: spec.Kind, Raw: raw, Empty: true}, nil
	case domain.CellHpoStatus:
		return parseHpoStatus(raw)
	default:
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "no parser for column kind %q", spec.Kind)
	}
}

func parseIdentifier(raw string, spec domain.ColumnSpec) (domain.TypedCell, *CellError) {
	id, err := domain.ParseTermID(raw)
	if err != nil {
		return domain.TypedCell{}, cellErr(domain.KindMalformedIdentifier, "invalid %s identifier: %v", spec.Name, err)
	}
	if len(spec.Prefixes) > 0 {
		allowed := false
		for _, p := range spec.Prefixes {
			if id.Prefix() == p {
				allowed = true
				break
			}
		}
		if !allowed {
			return domain.TypedCell{}, cellErr(domain.KindMalformedIdentifier,
				"identifier %q has prefix %q, %s expects one of %s",
				raw, id.Prefix(), spec.Name, strings.Join(spec.Prefixes, "/"))
		}
	}
	return domain.TypedCell{Kind: domain.CellIdentifier, Raw: raw, Identifier: id}, nil
}

func parseLabel(raw string, spec domain.ColumnSpec) (domain.TypedCell, *CellError) {
	if raw == "" {
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "%s must not be empty", spec.Name)
	}
	for _, c := range raw {
		switch c {
		case '/', '\\', '(', ')':
			return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "forbidden character %q in %s %q", c, spec.Name, raw)
		}
	}
	return domain.TypedCell{Kind: domain.CellLabel, Raw: raw, Text: raw}, nil
}

// parseSubjectID screens the identifier characters but tolerates an empty
// cell; whether a subject may go unidentified is the row rules' call.
func parseSubjectID(raw string, spec domain.ColumnSpec) (domain.TypedCell, *CellError) {
	if raw == "" {
		return domain.TypedCell{Kind: domain.CellSubjectID, Raw: raw, Empty: true}, nil
	}
	for _, c := range raw {
		switch c {
		case '/', '\\', '(', ')':
			return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "forbidden character %q in %s %q", c, spec.Name, raw)
		}
	}
	return domain.TypedCell{Kind: domain.CellSubjectID, Raw: raw, Text: raw}, nil
}

// Transcript accessions must carry a version: unversioned transcripts make
// downstream HGVS interpretation ambiguous.
func parseTranscript(raw string) (domain.TypedCell, *CellError) {
	if raw == "" {
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "transcript must not be empty")
	}
	if !strings.HasPrefix(raw, "NM_") && !strings.HasPrefix(raw, "NR_") && !strings.HasPrefix(raw, "ENST") {
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "unrecognized transcript prefix in %q", raw)
	}
	if !strings.Contains(raw, ".") {
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "transcript %q is missing a version", raw)
	}
	return domain.TypedCell{Kind: domain.CellTranscript, Raw: raw, Text: raw}, nil
}

func parseDeceased(raw string) (domain.TypedCell, *CellError) {
	switch domain.VitalStatus(raw) {
	case domain.VitalDeceased, domain.VitalAlive, domain.VitalNotAvailable:
		return domain.TypedCell{Kind: domain.CellDeceased, Raw: raw, Vital: domain.VitalStatus(raw)}, nil
	default:
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "unrecognized entry in deceased column: %q", raw)
	}
}

func parseSex(raw string) (domain.TypedCell, *CellError) {
	switch domain.Sex(raw) {
	case domain.SexMale, domain.SexFemale, domain.SexOther, domain.SexUnknown:
		return domain.TypedCell{Kind: domain.CellSex, Raw: raw, Sex: domain.Sex(raw)}, nil
	default:
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell, "malformed entry in sex field: %q", raw)
	}
}

func parseAgeCell(raw string) (domain.TypedCell, *CellError) {
	if raw == "" {
		return domain.TypedCell{Kind: domain.CellAge, Raw: raw, Empty: true}, nil
	}
	age, err := ParseAge(raw)
	if err != nil {
		return domain.TypedCell{}, err
	}
	cell := domain.TypedCell{Kind: domain.CellAge, Raw: raw, Age: age}
	if age.Kind == domain.AgeNotAvailable {
		cell.Age = nil
		cell.Empty = true
	}
	return cell, nil
}

// parseHpoStatus handles per-term phenotype cells. "observed" and "excluded"
// assert polarity; an age string asserts an observed phenotype with that
// onset; "na" and the empty cell assert nothing at all. An empty cell is
// absence of data, never an exclusion.
func parseHpoStatus(raw string) (domain.TypedCell, *CellError) {
	switch raw {
	case "", "na":
		return domain.TypedCell{Kind: domain.CellHpoStatus, Raw: raw, Empty: true}, nil
	case "observed":
		return domain.TypedCell{Kind: domain.CellHpoStatus, Raw: raw, Polarity: domain.PolarityObserved, HasAssertion: true}, nil
	case "excluded":
		return domain.TypedCell{Kind: domain.CellHpoStatus, Raw: raw, Polarity: domain.PolarityExcluded, HasAssertion: true}, nil
	}
	age, err := ParseAge(raw)
	if err != nil {
		return domain.TypedCell{}, cellErr(domain.KindMalformedCell,
			"invalid phenotype status %q: expected observed, excluded, na, or an onset age", raw)
	}
	return domain.TypedCell{
		Kind:         domain.CellHpoStatus,
		Raw:          raw,
		Polarity:     domain.PolarityObserved,
		HasAssertion: true,
		Age:          age,
	}, nil
}
