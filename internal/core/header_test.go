package core

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func int8v(n int64) pgtype.Int8 {
	return pgtype.Int8{Int64: n, Valid: true}
}

func int4v(n int32) pgtype.Int4 {
	return pgtype.Int4{Int32: n, Valid: true}
}

// ----------------------------------------------------------------------------
// ExtractHeader Tests
// ----------------------------------------------------------------------------

func TestExtractHeader_FullUniProt(t *testing.T) {
	h := ExtractHeader("sp|A0A087X1C5|CP2D7_HUMAN Putative cytochrome P450 2D7 OS=Homo sapiens OX=9606 GN=CYP2D7 PE=5 SV=1")

	if !h.PrefixOK {
		t.Fatal("PrefixOK = false, want true")
	}
	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"db", h.DB, text("sp")},
		{"unique_identifier", h.UniqueIdentifier, text("A0A087X1C5")},
		{"entry_name", h.EntryName, text("CP2D7_HUMAN")},
		{"protein_name", h.ProteinName, text("Putative cytochrome P450 2D7")},
		{"organism_name", h.OrganismName, text("Homo sapiens")},
		{"organism_identifier", h.OrganismIdentifier, int8v(9606)},
		{"gene_name", h.GeneName, text("CYP2D7")},
		{"protein_existence", h.ProteinExistence, int4v(5)},
		{"sequence_version", h.SequenceVersion, int4v(1)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %+v, want %+v", c.field, c.got, c.want)
		}
	}
	if len(h.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", h.Warnings)
	}
}

func TestExtractHeader(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantPrefix  bool
		wantDB      pgtype.Text
		wantID      pgtype.Text
		wantEntry   pgtype.Text
		wantProtein pgtype.Text
		wantOS      pgtype.Text
		wantOX      pgtype.Int8
		wantGN      pgtype.Text
		wantPE      pgtype.Int4
		wantSV      pgtype.Int4
		wantWarn    int
	}{
		{
			name:        "no pipes",
			line:        "justsometext",
			wantPrefix:  false,
			wantProtein: text("justsometext"),
		},
		{
			name:        "one pipe only",
			line:        "sp|P12345 Some protein OS=Homo sapiens",
			wantPrefix:  false,
			wantProtein: text("sp|P12345 Some protein OS=Homo sapiens"),
		},
		{
			name:        "empty line",
			line:        "",
			wantPrefix:  false,
			wantProtein: pgtype.Text{},
		},
		{
			name:        "prefix only",
			line:        "tr|G3V2P1|G3V2P1_HUMAN",
			wantPrefix:  true,
			wantDB:      text("tr"),
			wantID:      text("G3V2P1"),
			wantEntry:   text("G3V2P1_HUMAN"),
			wantProtein: pgtype.Text{},
		},
		{
			name:        "empty prefix parts are absent",
			line:        "||NAME_HUMAN Thing",
			wantPrefix:  true,
			wantEntry:   text("NAME_HUMAN"),
			wantProtein: text("Thing"),
		},
		{
			name:        "tags in any order",
			line:        "sp|P1|X_Y Protein SV=2 GN=abc OS=Mus musculus PE=1 OX=10090",
			wantPrefix:  true,
			wantDB:      text("sp"),
			wantID:      text("P1"),
			wantEntry:   text("X_Y"),
			wantProtein: text("Protein"),
			wantOS:      text("Mus musculus"),
			wantOX:      int8v(10090),
			wantGN:      text("abc"),
			wantPE:      int4v(1),
			wantSV:      int4v(2),
		},
		{
			name:        "missing tags are absent",
			line:        "sp|P1|X_Y Protein OS=Homo sapiens",
			wantPrefix:  true,
			wantDB:      text("sp"),
			wantID:      text("P1"),
			wantEntry:   text("X_Y"),
			wantProtein: text("Protein"),
			wantOS:      text("Homo sapiens"),
		},
		{
			name:        "tag directly after prefix",
			line:        "tr|Q1|Q1_BOVIN PE=4 SV=1",
			wantPrefix:  true,
			wantDB:      text("tr"),
			wantID:      text("Q1"),
			wantEntry:   text("Q1_BOVIN"),
			wantProtein: pgtype.Text{},
			wantPE:      int4v(4),
			wantSV:      int4v(1),
		},
		{
			name:        "tag-like text inside a word is not a tag",
			line:        "sp|P1|X_Y Protein XOS=foo OS=Homo sapiens",
			wantPrefix:  true,
			wantDB:      text("sp"),
			wantID:      text("P1"),
			wantEntry:   text("X_Y"),
			wantProtein: text("Protein XOS=foo"),
			wantOS:      text("Homo sapiens"),
		},
		{
			name:        "extra whitespace trimmed",
			line:        "  sp|P1|X_Y   Protein Nef (Fragment)   OS=Human immunodeficiency virus 1    OX=11676  ",
			wantPrefix:  true,
			wantDB:      text("sp"),
			wantID:      text("P1"),
			wantEntry:   text("X_Y"),
			wantProtein: text("Protein Nef (Fragment)"),
			wantOS:      text("Human immunodeficiency virus 1"),
			wantOX:      int8v(11676),
		},
		{
			name:        "repeated tag keeps first value",
			line:        "sp|P1|X_Y P OS=First OS=Second",
			wantPrefix:  true,
			wantDB:      text("sp"),
			wantID:      text("P1"),
			wantEntry:   text("X_Y"),
			wantProtein: text("P"),
			wantOS:      text("First"),
		},
		{
			name:        "empty tag value is absent",
			line:        "sp|P1|X_Y P GN= PE=3",
			wantPrefix:  true,
			wantDB:      text("sp"),
			wantID:      text("P1"),
			wantEntry:   text("X_Y"),
			wantProtein: text("P"),
			wantPE:      int4v(3),
		},
		{
			name:        "non-numeric OX warns",
			line:        "sp|P1|X_Y P OX=abc PE=x SV=1",
			wantPrefix:  true,
			wantDB:      text("sp"),
			wantID:      text("P1"),
			wantEntry:   text("X_Y"),
			wantProtein: text("P"),
			wantSV:      int4v(1),
			wantWarn:    2,
		},
		{
			name:        "entry name with extra pipe",
			line:        "sp|P1|X|Y P",
			wantPrefix:  true,
			wantDB:      text("sp"),
			wantID:      text("P1"),
			wantEntry:   text("X|Y"),
			wantProtein: text("P"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ExtractHeader(tt.line)

			if h.PrefixOK != tt.wantPrefix {
				t.Errorf("PrefixOK = %v, want %v", h.PrefixOK, tt.wantPrefix)
			}
			if h.DB != tt.wantDB {
				t.Errorf("DB = %+v, want %+v", h.DB, tt.wantDB)
			}
			if h.UniqueIdentifier != tt.wantID {
				t.Errorf("UniqueIdentifier = %+v, want %+v", h.UniqueIdentifier, tt.wantID)
			}
			if h.EntryName != tt.wantEntry {
				t.Errorf("EntryName = %+v, want %+v", h.EntryName, tt.wantEntry)
			}
			if h.ProteinName != tt.wantProtein {
				t.Errorf("ProteinName = %+v, want %+v", h.ProteinName, tt.wantProtein)
			}
			if h.OrganismName != tt.wantOS {
				t.Errorf("OrganismName = %+v, want %+v", h.OrganismName, tt.wantOS)
			}
			if h.OrganismIdentifier != tt.wantOX {
				t.Errorf("OrganismIdentifier = %+v, want %+v", h.OrganismIdentifier, tt.wantOX)
			}
			if h.GeneName != tt.wantGN {
				t.Errorf("GeneName = %+v, want %+v", h.GeneName, tt.wantGN)
			}
			if h.ProteinExistence != tt.wantPE {
				t.Errorf("ProteinExistence = %+v, want %+v", h.ProteinExistence, tt.wantPE)
			}
			if h.SequenceVersion != tt.wantSV {
				t.Errorf("SequenceVersion = %+v, want %+v", h.SequenceVersion, tt.wantSV)
			}
			if len(h.Warnings) != tt.wantWarn {
				t.Errorf("got %d warnings, want %d: %v", len(h.Warnings), tt.wantWarn, h.Warnings)
			}
		})
	}
}

func TestExtractHeader_FieldParseWarning(t *testing.T) {
	h := ExtractHeader("sp|P1|X_Y P OX=96x06")

	if len(h.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(h.Warnings))
	}
	w := h.Warnings[0]
	if w.Kind != WarnFieldParse {
		t.Errorf("Kind = %q, want %q", w.Kind, WarnFieldParse)
	}
	if w.Code != "HDR002" {
		t.Errorf("Code = %q, want HDR002", w.Code)
	}
	if w.Field != ColOrganismIdentifier {
		t.Errorf("Field = %q, want %q", w.Field, ColOrganismIdentifier)
	}
	if w.Value != "96x06" {
		t.Errorf("Value = %q, want %q", w.Value, "96x06")
	}
}

func TestExtractHeader_PEOutOfInt4Range(t *testing.T) {
	h := ExtractHeader("sp|P1|X_Y P PE=99999999999")

	if h.ProteinExistence.Valid {
		t.Errorf("ProteinExistence = %+v, want absent", h.ProteinExistence)
	}
	if len(h.Warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(h.Warnings))
	}
}
