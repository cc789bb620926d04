package core

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Source identifies the UniProt section an entry comes from.
type Source string

const (
	SourceSwissProt Source = "swiss-prot"
	SourceTrEMBL    Source = "trembl"
	SourceUnknown   Source = "unknown"
)

// Entry is one parsed FASTA record.
//
// Entries are plain values: they are built once, by AssembleEntry or by
// TableToEntries, and never modified afterwards. Optional fields use pgtype
// values where Valid=false means absent.
type Entry struct {
	DB                 pgtype.Text
	UniqueIdentifier   pgtype.Text
	EntryName          pgtype.Text
	ProteinName        pgtype.Text
	OrganismName       pgtype.Text
	OrganismIdentifier pgtype.Int8
	GeneName           pgtype.Text
	ProteinExistence   pgtype.Int4
	SequenceVersion    pgtype.Int4
	Sequence           string
	RawHeader          string

	// ProteinID is a sidecar column, not part of the header grammar.
	ProteinID pgtype.Text
}

// Source maps the db token to a known UniProt section.
func (e Entry) Source() Source {
	if !e.DB.Valid {
		return SourceUnknown
	}
	switch e.DB.String {
	case "sp":
		return SourceSwissProt
	case "tr":
		return SourceTrEMBL
	default:
		return SourceUnknown
	}
}

// HasPrefix reports whether any of db, unique_identifier or entry_name is present.
func (e Entry) HasPrefix() bool {
	return e.DB.Valid || e.UniqueIdentifier.Valid || e.EntryName.Valid
}

// RawRecord is one record as split from the input: the header line without
// its leading '>' and the lines that followed it.
type RawRecord struct {
	Header string
	Lines  []string

	// Index is the 1-based position of the record in its stream.
	Index int
}

// FieldType represents the value type stored in a column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
	FieldSequence
)

// String returns the type name used in column listings.
func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "integer"
	case FieldSequence:
		return "sequence"
	default:
		return "text"
	}
}

// Column describes one named field of the table layout.
type Column struct {
	Name string
	Type FieldType
}

// Column names.
const (
	ColDB                 = "db"
	ColUniqueIdentifier   = "unique_identifier"
	ColEntryName          = "entry_name"
	ColProteinName        = "protein_name"
	ColOrganismName       = "organism_name"
	ColOrganismIdentifier = "organism_identifier"
	ColGeneName           = "gene_name"
	ColProteinExistence   = "protein_existence"
	ColSequenceVersion    = "sequence_version"
	ColSequence           = "sequence"
	ColRawHeader          = "raw_header"
	ColProteinID          = "protein_id"
)

// Columns is the canonical, ordered column set. It is fixed so that a
// table written by this package always reads back with the same layout.
var Columns = []Column{
	{Name: ColDB, Type: FieldText},
	{Name: ColUniqueIdentifier, Type: FieldText},
	{Name: ColEntryName, Type: FieldText},
	{Name: ColProteinName, Type: FieldText},
	{Name: ColOrganismName, Type: FieldText},
	{Name: ColOrganismIdentifier, Type: FieldInt},
	{Name: ColGeneName, Type: FieldText},
	{Name: ColProteinExistence, Type: FieldInt},
	{Name: ColSequenceVersion, Type: FieldInt},
	{Name: ColSequence, Type: FieldSequence},
	{Name: ColRawHeader, Type: FieldText},
}

// ExtraColumns are recognized but optional columns that pass through
// alongside the canonical set.
var ExtraColumns = []Column{
	{Name: ColProteinID, Type: FieldText},
}
