package domain

import "testing"

func TestParseTermID(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"HP:0001250", true},
		{"PMID:12345", true},
		{"OMIM:154700", true},
		{"", false},
		{"HP0001250", false},
		{"HP:", false},
		{":0001250", false},
		{"HP: 0001250", false},
		{"HP:0001250 ", false},
		{"HP:00a1250", false},
		{"HP:001:250", false},
	}
	for _, tc := range cases {
		id, err := ParseTermID(tc.in)
		if tc.valid && err != nil {
			t.Errorf("ParseTermID(%q): unexpected error %v", tc.in, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("ParseTermID(%q): expected error, got %q", tc.in, id)
		}
	}
}

func TestTermIDPrefix(t *testing.T) {
	if got := TermID("HGNC:3603").Prefix(); got != "HGNC" {
		t.Fatalf("prefix: got %q", got)
	}
}

func TestSortErrorsDeterministic(t *testing.T) {
	errs := []ValidationError{
		NewError(2, 5, KindMalformedAge, "b"),
		NewError(0, 9, KindMalformedIdentifier, "c"),
		NewError(2, 1, KindOnsetAfterResolution, "a"),
		NewError(0, 9, KindMalformedAge, "a"),
	}
	SortErrors(errs)
	want := []struct{ row, col int }{{0, 9}, {0, 9}, {2, 1}, {2, 5}}
	for i, w := range want {
		if errs[i].Row != w.row || errs[i].Column != w.col {
			t.Fatalf("position %d: got (%d,%d) want (%d,%d)", i, errs[i].Row, errs[i].Column, w.row, w.col)
		}
	}
	if errs[0].Kind != KindMalformedAge {
		t.Fatalf("ties must order by kind, got %s", errs[0].Kind)
	}
}

func TestErrorKindSeverity(t *testing.T) {
	if KindObsoleteTermReference.Severity() != SeverityWarn {
		t.Fatal("obsolete reference should be advisory")
	}
	if KindRedundantAssertion.Severity() != SeverityWarn {
		t.Fatal("redundant assertion should be advisory")
	}
	if KindContradictoryAssertion.Severity() != SeverityBlock {
		t.Fatal("contradiction should block")
	}
}

func TestAgeOrdering(t *testing.T) {
	ten := &Age{Kind: AgeISODuration, Years: 10}
	five := &Age{Kind: AgeISODuration, Years: 5}
	if !ten.Comparable(five) {
		t.Fatal("two ISO durations should be comparable")
	}
	if !ten.After(five) {
		t.Fatal("P10Y should be after P5Y")
	}
	if five.After(ten) {
		t.Fatal("P5Y should not be after P10Y")
	}
	congenital := &Age{Kind: AgeOnsetLabel, OnsetTerm: "HP:0003577"}
	if ten.Comparable(congenital) {
		t.Fatal("onset labels carry no ordering")
	}
	g1 := &Age{Kind: AgeGestational, GestationalWeeks: 29, GestationalDays: 2}
	g2 := &Age{Kind: AgeGestational, GestationalWeeks: 29, GestationalDays: 4}
	if !g2.After(g1) {
		t.Fatal("G29w4d should be after G29w2d")
	}
}

func TestMendelianSchemaLayout(t *testing.T) {
	s := MendelianSchema()
	if s.FixedColumnCount() != 17 {
		t.Fatalf("expected 17 fixed columns, got %d", s.FixedColumnCount())
	}
	if s.ColumnIndex("individual_id") != 2 {
		t.Fatalf("individual_id index: got %d", s.ColumnIndex("individual_id"))
	}
	if s.ColumnIndex("HPO") != 16 {
		t.Fatalf("HPO separator index: got %d", s.ColumnIndex("HPO"))
	}
	if s.ColumnIndex("nonexistent") != -1 {
		t.Fatal("unknown column should report -1")
	}
	if s.Columns[16].Kind != CellSeparator {
		t.Fatal("last fixed column should be the separator")
	}
}

func TestParseSchemaYAML(t *testing.T) {
	doc := []byte(`name: minimal
columns:
  - name: PMID
    subheader: CURIE
    kind: identifier
    prefixes: [PMID]
  - name: individual_id
    subheader: str
    kind: label
`)
	s, err := ParseSchema(doc)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	if s.Name != "minimal" || len(s.Columns) != 2 {
		t.Fatalf("unexpected schema: %+v", s)
	}
	if s.Columns[0].Prefixes[0] != "PMID" {
		t.Fatalf("prefixes not decoded: %+v", s.Columns[0])
	}

	if _, err := ParseSchema([]byte("name: empty\ncolumns: []\n")); err == nil {
		t.Fatal("schema without columns should fail")
	}
	if _, err := ParseSchema([]byte("name: bad\ncolumns:\n  - subheader: x\n    kind: label\n")); err == nil {
		t.Fatal("column without name should fail")
	}
}
