package cells

import (
	"regexp"
	"strconv"

	"phetools/pkg/domain"
)

var (
	iso8601Re     = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?$`)
	gestationalRe = regexp.MustCompile(`^G(\d+)w([0-6])d$`)
)

// onsetLabels maps the HPO onset subhierarchy labels accepted as curator
// shorthand to their term identifiers.
var onsetLabels = map[string]domain.TermID{
	"Late onset":                     "HP:0003584",
	"Middle age onset":               "HP:0003596",
	"Young adult onset":              "HP:0011462",
	"Late young adult onset":         "HP:0025710",
	"Intermediate young adult onset": "HP:0025709",
	"Early young adult onset":        "HP:0025708",
	"Adult onset":                    "HP:0003581",
	"Juvenile onset":                 "HP:0003621",
	"Childhood onset":                "HP:0011463",
	"Infantile onset":                "HP:0003593",
	"Neonatal onset":                 "HP:0003623",
	"Congenital onset":               "HP:0003577",
	"Antenatal onset":                "HP:0030674",
	"Embryonal onset":                "HP:0011460",
	"Fetal onset":                    "HP:0011461",
	"Late first trimester onset":     "HP:0034199",
	"Second trimester onset":         "HP:0034198",
	"Third trimester onset":          "HP:0034197",
}

// ParseAge parses the onset-age grammar: ISO-8601 durations (P3Y2M, P11D),
// gestational ages (G29w2d), HPO onset labels, or the explicit "na" token.
func ParseAge(raw string) (*domain.Age, *CellError) {
	if raw == "" {
		return nil, cellErr(domain.KindMalformedAge, "empty age string")
	}
	if raw == "na" {
		return &domain.Age{Kind: domain.AgeNotAvailable, Raw: raw}, nil
	}
	if tid, ok := onsetLabels[raw]; ok {
		return &domain.Age{Kind: domain.AgeOnsetLabel, Raw: raw, OnsetTerm: tid}, nil
	}
	if m := iso8601Re.FindStringSubmatch(raw); m != nil {
		if m[1] == "" && m[2] == "" && m[3] == "" {
			return nil, cellErr(domain.KindMalformedAge, "ISO duration %q has no components", raw)
		}
		return &domain.Age{
			Kind:   domain.AgeISODuration,
			Raw:    raw,
			Years:  atoiOrZero(m[1]),
			Months: atoiOrZero(m[2]),
			Days:   atoiOrZero(m[3]),
		}, nil
	}
	if m := gestationalRe.FindStringSubmatch(raw); m != nil {
		return &domain.Age{
			Kind:             domain.AgeGestational,
			Raw:              raw,
			GestationalWeeks: atoiOrZero(m[1]),
			GestationalDays:  atoiOrZero(m[2]),
		}, nil
	}
	return nil, cellErr(domain.KindMalformedAge, "invalid age string %q", raw)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
