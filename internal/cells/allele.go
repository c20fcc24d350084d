package cells

import (
	"strings"

	"phetools/pkg/domain"
)

// structuralPrefixes are the labels accepted for symbolic structural
// variants, written as "PREFIX: free text", e.g. "DEL: exon 5-7 deletion".
var structuralPrefixes = map[string]struct{}{
	"DEL":    {},
	"DUP":    {},
	"INV":    {},
	"INS":    {},
	"TRANSL": {},
}

// parseAllele screens allele tokens syntactically. HGVS expressions get a
// plausibility check only: full semantic resolution happens in an external
// validation service, so the goal here is rejecting obvious typos early.
func parseAllele(raw string) (domain.TypedCell, *CellError) {
	if raw == "" {
		return domain.TypedCell{}, cellErr(domain.KindMalformedAllele, "allele must not be empty; use na for a missing second allele")
	}
	if raw == "na" {
		return domain.TypedCell{Kind: domain.CellAllele, Raw: raw, Allele: &domain.AlleleToken{Raw: raw, NotPresent: true}}, nil
	}
	if prefix, _, ok := strings.Cut(raw, ":"); ok {
		if _, structural := structuralPrefixes[prefix]; structural {
			return domain.TypedCell{Kind: domain.CellAllele, Raw: raw, Allele: &domain.AlleleToken{Raw: raw, Structural: true}}, nil
		}
	}
	if !plausibleHgvs(raw) {
		return domain.TypedCell{}, cellErr(domain.KindMalformedAllele, "implausible HGVS expression %q", raw)
	}
	return domain.TypedCell{Kind: domain.CellAllele, Raw: raw, Allele: &domain.AlleleToken{Raw: raw}}, nil
}

// plausibleHgvs applies a rough screen to coding/non-coding HGVS strings:
//   - must start with c. or n.
//   - no whitespace, at least one digit
//   - substitutions must have bases on both sides of '>'
//   - insertions must name the inserted bases
func plausibleHgvs(hgvs string) bool {
	if !strings.HasPrefix(hgvs, "c.") && !strings.HasPrefix(hgvs, "n.") {
		return false
	}
	if strings.ContainsAny(hgvs, " \t") {
		return false
	}
	hasDigit := false
	for _, r := range hgvs {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}
	if pos := strings.IndexByte(hgvs, '>'); pos >= 0 {
		if !allBases(trailingLetters(hgvs[:pos])) || !allBases(leadingLetters(hgvs[pos+1:])) {
			return false
		}
		if trailingLetters(hgvs[:pos]) == "" || leadingLetters(hgvs[pos+1:]) == "" {
			return false
		}
	}
	if pos := strings.Index(hgvs, "ins"); pos >= 0 && !strings.Contains(hgvs, "delins") {
		after := hgvs[pos+3:]
		if after == "" || !allBases(after) {
			return false
		}
	}
	return true
}

func allBases(s string) bool {
	for _, r := range s {
		switch r {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

func trailingLetters(s string) string {
	i := len(s)
	for i > 0 {
		r := s[i-1]
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			i--
			continue
		}
		break
	}
	return s[i:]
}

func leadingLetters(s string) string {
	i := 0
	for i < len(s) {
		r := s[i]
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			i++
			continue
		}
		break
	}
	return s[:i]
}
