package cells

import (
	"testing"

	"phetools/pkg/domain"
)

func TestParseAge(t *testing.T) {
	cases := []struct {
		in    string
		kind  domain.AgeKind
		valid bool
	}{
		{"P10Y", domain.AgeISODuration, true},
		{"P3Y2M", domain.AgeISODuration, true},
		{"P11D", domain.AgeISODuration, true},
		{"P2M15D", domain.AgeISODuration, true},
		{"G29w2d", domain.AgeGestational, true},
		{"Congenital onset", domain.AgeOnsetLabel, true},
		{"Late young adult onset", domain.AgeOnsetLabel, true},
		{"na", domain.AgeNotAvailable, true},
		{"P", "", false},
		{"10Y", "", false},
		{"P10", "", false},
		{"G29w7d", "", false},
		{"congenital onset", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		age, err := ParseAge(tc.in)
		if tc.valid {
			if err != nil {
				t.Errorf("ParseAge(%q): unexpected error %v", tc.in, err)
				continue
			}
			if age.Kind != tc.kind {
				t.Errorf("ParseAge(%q): kind %s, want %s", tc.in, age.Kind, tc.kind)
			}
		} else if err == nil {
			t.Errorf("ParseAge(%q): expected error", tc.in)
		}
	}
}

func TestParseAgeComponents(t *testing.T) {
	age, err := ParseAge("P3Y2M15D")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if age.Years != 3 || age.Months != 2 || age.Days != 15 {
		t.Fatalf("components: %+v", age)
	}
	g, err := ParseAge("G32w5d")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.GestationalWeeks != 32 || g.GestationalDays != 5 {
		t.Fatalf("gestational components: %+v", g)
	}
	onset, err := ParseAge("Congenital onset")
	if err != nil || onset.OnsetTerm != "HP:0003577" {
		t.Fatalf("onset label binding: %+v err=%v", onset, err)
	}
}

func TestParseIdentifierPrefixes(t *testing.T) {
	pmid := domain.ColumnSpec{Name: "PMID", Kind: domain.CellIdentifier, Prefixes: []string{"PMID"}}
	disease := domain.ColumnSpec{Name: "disease_id", Kind: domain.CellIdentifier, Prefixes: []string{"OMIM", "MONDO"}}

	cell, cerr := Parse("PMID:12345", pmid)
	if cerr != nil {
		t.Fatalf("valid pmid rejected: %v", cerr)
	}
	if cell.Identifier != "PMID:12345" {
		t.Fatalf("identifier: %+v", cell)
	}
	for _, bad := range []string{"PMD:12345", "PMID12345", "PMID:12a45", "PMID: 12345", ""} {
		if _, cerr := Parse(bad, pmid); cerr == nil {
			t.Errorf("Parse(%q) should fail", bad)
		} else if cerr.Kind != domain.KindMalformedIdentifier && cerr.Kind != domain.KindMalformedCell {
			t.Errorf("Parse(%q): unexpected kind %s", bad, cerr.Kind)
		}
	}
	if _, cerr := Parse("MONDO:0007947", disease); cerr != nil {
		t.Fatalf("MONDO id rejected: %v", cerr)
	}
	if _, cerr := Parse("HP:0001250", disease); cerr == nil {
		t.Fatal("HP prefix should be rejected for disease_id")
	}
}

func TestParseAllele(t *testing.T) {
	spec := domain.ColumnSpec{Name: "allele_1", Kind: domain.CellAllele}
	valid := []string{
		"c.6231dup", "c.1932T>A", "c.417_418insA", "c.112_115delinsG",
		"c.76_78del", "c.1177del", "n.76A>G", "c.-19_*21del",
	}
	for _, v := range valid {
		cell, cerr := Parse(v, spec)
		if cerr != nil {
			t.Errorf("Parse(%q): unexpected error %v", v, cerr)
			continue
		}
		if cell.Allele == nil || cell.Allele.Structural || cell.Allele.NotPresent {
			t.Errorf("Parse(%q): unexpected token %+v", v, cell.Allele)
		}
	}
	invalid := []string{"c.76_78ins", "g.123456A>T", "c.", "617G>A", ""}
	for _, v := range invalid {
		if _, cerr := Parse(v, spec); cerr == nil {
			t.Errorf("Parse(%q) should fail", v)
		}
	}

	cell, cerr := Parse("DEL: removal of exon 5", spec)
	if cerr != nil {
		t.Fatalf("structural allele rejected: %v", cerr)
	}
	if !cell.Allele.Structural {
		t.Fatalf("expected structural token, got %+v", cell.Allele)
	}

	cell, cerr = Parse("na", spec)
	if cerr != nil || !cell.Allele.NotPresent {
		t.Fatalf("na allele: cell=%+v err=%v", cell, cerr)
	}
}

func TestParseHpoStatus(t *testing.T) {
	spec := domain.ColumnSpec{Name: "Seizure", Kind: domain.CellHpoStatus}

	cell, cerr := Parse("observed", spec)
	if cerr != nil || !cell.HasAssertion || cell.Polarity != domain.PolarityObserved {
		t.Fatalf("observed: cell=%+v err=%v", cell, cerr)
	}
	cell, cerr = Parse("excluded", spec)
	if cerr != nil || !cell.HasAssertion || cell.Polarity != domain.PolarityExcluded {
		t.Fatalf("excluded: cell=%+v err=%v", cell, cerr)
	}

	// an onset age implies an observed assertion with that onset
	cell, cerr = Parse("P16Y", spec)
	if cerr != nil || !cell.HasAssertion || cell.Polarity != domain.PolarityObserved || cell.Age == nil {
		t.Fatalf("onset age: cell=%+v err=%v", cell, cerr)
	}

	// empty and na are absence of data, never an exclusion
	for _, blank := range []string{"", "na"} {
		cell, cerr = Parse(blank, spec)
		if cerr != nil {
			t.Fatalf("Parse(%q): %v", blank, cerr)
		}
		if cell.HasAssertion || !cell.Empty {
			t.Fatalf("Parse(%q) must not assert anything: %+v", blank, cell)
		}
	}

	if _, cerr = Parse("maybe", spec); cerr == nil {
		t.Fatal("unknown status token should fail")
	}
}

func TestParseSexAndDeceased(t *testing.T) {
	sexSpec := domain.ColumnSpec{Name: "sex", Kind: domain.CellSex}
	for _, v := range []string{"M", "F", "O", "U"} {
		if _, cerr := Parse(v, sexSpec); cerr != nil {
			t.Errorf("sex %q rejected: %v", v, cerr)
		}
	}
	for _, v := range []string{"male", "f", "n/a", ""} {
		if _, cerr := Parse(v, sexSpec); cerr == nil {
			t.Errorf("sex %q should fail", v)
		}
	}

	decSpec := domain.ColumnSpec{Name: "deceased", Kind: domain.CellDeceased}
	for _, v := range []string{"yes", "no", "na"} {
		if _, cerr := Parse(v, decSpec); cerr != nil {
			t.Errorf("deceased %q rejected: %v", v, cerr)
		}
	}
	if _, cerr := Parse("n", decSpec); cerr == nil {
		t.Error("deceased \"n\" should fail")
	}
}

func TestParseTranscript(t *testing.T) {
	spec := domain.ColumnSpec{Name: "transcript", Kind: domain.CellTranscript}
	if _, cerr := Parse("NM_001111067.4", spec); cerr != nil {
		t.Fatalf("versioned transcript rejected: %v", cerr)
	}
	for _, bad := range []string{"NM_001111067", "XX_0001.1", ""} {
		if _, cerr := Parse(bad, spec); cerr == nil {
			t.Errorf("transcript %q should fail", bad)
		}
	}
}

func TestStrayWhitespaceRejected(t *testing.T) {
	spec := domain.ColumnSpec{Name: "title", Kind: domain.CellLabel}
	for _, bad := range []string{" title", "title ", "\ttitle"} {
		if _, cerr := Parse(bad, spec); cerr == nil {
			t.Errorf("Parse(%q) should fail on stray whitespace", bad)
		}
	}
}

func TestParseSubjectID(t *testing.T) {
	spec := domain.ColumnSpec{Name: "individual_id", Kind: domain.CellSubjectID}

	cell, cerr := Parse("patient (II-2)", spec)
	if cerr == nil {
		t.Fatal("forbidden characters should fail")
	}
	cell, cerr = Parse("", spec)
	if cerr != nil || !cell.Empty {
		t.Fatalf("empty subject cell must parse as empty: cell=%+v err=%v", cell, cerr)
	}
	cell, cerr = Parse("patient_1", spec)
	if cerr != nil || cell.Text != "patient_1" {
		t.Fatalf("Parse(patient_1): cell=%+v err=%v", cell, cerr)
	}
}
