package core

import (
	"errors"
	"strings"
	"testing"
)

func TestAssembleEntry(t *testing.T) {
	raw := RawRecord{
		Header: "sp|Q6ZRR7|VWA5B_HUMAN von Willebrand factor A OS=Homo sapiens OX=9606 GN=VWA5B PE=2 SV=2",
		Lines:  []string{"MKV LLA", "\tGGT  "},
		Index:  3,
	}

	e, warnings := AssembleEntry(raw)

	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if e.Sequence != "MKVLLAGGT" {
		t.Errorf("Sequence = %q, want %q", e.Sequence, "MKVLLAGGT")
	}
	if e.RawHeader != raw.Header {
		t.Errorf("RawHeader = %q, want %q", e.RawHeader, raw.Header)
	}
	if e.EntryName != text("VWA5B_HUMAN") {
		t.Errorf("EntryName = %+v", e.EntryName)
	}
	if e.Source() != SourceSwissProt {
		t.Errorf("Source = %q, want %q", e.Source(), SourceSwissProt)
	}
	if e.ProteinID.Valid {
		t.Errorf("ProteinID should be absent, got %+v", e.ProteinID)
	}
}

func TestAssembleEntry_NoPrefix(t *testing.T) {
	e, warnings := AssembleEntry(RawRecord{Header: "justsometext", Lines: []string{"AAA"}, Index: 1})

	if e.HasPrefix() {
		t.Error("HasPrefix = true, want false")
	}
	if e.OrganismName.Valid || e.OrganismIdentifier.Valid || e.GeneName.Valid ||
		e.ProteinExistence.Valid || e.SequenceVersion.Valid {
		t.Errorf("tag fields should be absent: %+v", e)
	}
	if e.RawHeader != "justsometext" {
		t.Errorf("RawHeader = %q, want justsometext", e.RawHeader)
	}
	if e.Sequence != "AAA" {
		t.Errorf("Sequence = %q, want AAA", e.Sequence)
	}

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	w := warnings[0]
	if w.Kind != WarnStructural || w.Code != "HDR001" {
		t.Errorf("warning = %+v, want structural HDR001", w)
	}
	if w.Record != 1 || w.Header != "justsometext" {
		t.Errorf("warning context = record %d header %q", w.Record, w.Header)
	}
}

func TestAssembleEntry_EmptySequence(t *testing.T) {
	e, warnings := AssembleEntry(RawRecord{Header: "sp|P1|X_Y P", Index: 2})

	if e.Sequence != "" {
		t.Errorf("Sequence = %q, want empty", e.Sequence)
	}
	if len(warnings) != 1 || warnings[0].Kind != WarnEmptySequence {
		t.Fatalf("warnings = %v, want one empty_sequence", warnings)
	}
	if warnings[0].Code != "SEQ001" {
		t.Errorf("Code = %q, want SEQ001", warnings[0].Code)
	}
}

func TestSource(t *testing.T) {
	tests := []struct {
		db   string
		want Source
	}{
		{"sp", SourceSwissProt},
		{"tr", SourceTrEMBL},
		{"xx", SourceUnknown},
		{"", SourceUnknown},
	}
	for _, tt := range tests {
		e := Entry{DB: textValue(tt.db)}
		if got := e.Source(); got != tt.want {
			t.Errorf("Source(%q) = %q, want %q", tt.db, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Decoder Tests
// ----------------------------------------------------------------------------

const mixedFasta = `>sp|P1|A_HUMAN Alpha OS=Homo sapiens OX=9606 PE=1 SV=1
MKVLLA
>justsometext
GGG
>tr|Q2|B_MOUSE Beta OX=ten
>sp|P3|C_HUMAN Gamma
CCCC
`

func TestReadEntries(t *testing.T) {
	entries, warnings, err := ReadEntries(strings.NewReader(mixedFasta))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	wantNames := []string{"A_HUMAN", "", "B_MOUSE", "C_HUMAN"}
	for i, e := range entries {
		if e.EntryName.String != wantNames[i] {
			t.Errorf("entry %d name = %q, want %q", i, e.EntryName.String, wantNames[i])
		}
	}

	// justsometext (HDR001), OX=ten (HDR002), empty sequence (SEQ001)
	wantCodes := []string{"HDR001", "HDR002", "SEQ001"}
	if len(warnings) != len(wantCodes) {
		t.Fatalf("got %d warnings, want %d: %v", len(warnings), len(wantCodes), warnings)
	}
	for i, w := range warnings {
		if w.Code != wantCodes[i] {
			t.Errorf("warning %d code = %q, want %q", i, w.Code, wantCodes[i])
		}
	}
	if warnings[1].Record != 3 {
		t.Errorf("warning record = %d, want 3", warnings[1].Record)
	}
}

func TestReadEntries_Empty(t *testing.T) {
	entries, warnings, err := ReadEntries(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 || len(warnings) != 0 {
		t.Errorf("got %d entries and %d warnings, want none", len(entries), len(warnings))
	}
}

var errTestRead = errors.New("read failed")

func TestReadEntries_SourceError(t *testing.T) {
	r := &failingReader{data: []byte(">a\nAAA\n"), err: errTestRead}

	entries, _, err := ReadEntries(r)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsSourceError(err) {
		t.Errorf("expected SourceError, got %T", err)
	}
	if entries != nil {
		t.Errorf("expected no entries on error, got %d", len(entries))
	}
}

func TestDecoder_WarningHandler(t *testing.T) {
	var got []Warning
	dec := NewDecoder(WithWarningHandler(func(w Warning) {
		got = append(got, w)
	}))

	count := 0
	for _, err := range dec.Entries(strings.NewReader(mixedFasta)) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		count++
	}

	if count != 4 {
		t.Errorf("got %d entries, want 4", count)
	}
	if len(got) != 3 {
		t.Errorf("handler saw %d warnings, want 3", len(got))
	}
}
