package core

import (
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
)

// Row maps column names to cell values. A missing key and a nil value both
// mean absent.
type Row map[string]any

// Table is a list of rows over named columns.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds a row.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// columnNames returns the declared columns, or the sorted union of row
// keys when none were declared.
func (t *Table) columnNames() []string {
	if len(t.Columns) > 0 {
		return t.Columns
	}
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	names := lo.Keys(seen)
	slices.Sort(names)
	return names
}

// EntriesToTable builds a table with one row per entry, in order, using
// the canonical columns. protein_id is appended only when some entry
// carries one. Zero entries give a table with the columns and no rows.
func EntriesToTable(entries []Entry) *Table {
	withID := lo.ContainsBy(entries, func(e Entry) bool {
		return e.ProteinID.Valid
	})

	columns := ColumnNames()
	if withID {
		columns = append(columns, ColProteinID)
	}

	t := &Table{Columns: columns, Rows: make([]Row, 0, len(entries))}
	for _, e := range entries {
		t.Append(entryRow(e, withID))
	}
	return t
}

func entryRow(e Entry, withID bool) Row {
	row := Row{
		ColDB:                 textCell(e.DB),
		ColUniqueIdentifier:   textCell(e.UniqueIdentifier),
		ColEntryName:          textCell(e.EntryName),
		ColProteinName:        textCell(e.ProteinName),
		ColOrganismName:       textCell(e.OrganismName),
		ColOrganismIdentifier: int8Cell(e.OrganismIdentifier),
		ColGeneName:           textCell(e.GeneName),
		ColProteinExistence:   int4Cell(e.ProteinExistence),
		ColSequenceVersion:    int4Cell(e.SequenceVersion),
		ColSequence:           e.Sequence,
		ColRawHeader:          e.RawHeader,
	}
	if withID {
		row[ColProteinID] = textCell(e.ProteinID)
	}
	return row
}

// TableToEntries rebuilds entries from a table, one per row, in order.
//
// Columns outside the recognized set are ignored. A recognized column that
// is missing, and every null-like cell, becomes absent. Prefix tokens
// that would break the db|id|name prefix are absent too, so each row
// writes back as exactly one record.
func TableToEntries(t *Table) []Entry {
	if t == nil {
		return nil
	}

	columns := FilterColumns(t.columnNames())
	entries := make([]Entry, 0, len(t.Rows))
	for _, row := range t.Rows {
		entries = append(entries, entryFromRow(lo.PickByKeys(row, columns)))
	}
	return entries
}

func entryFromRow(row Row) Entry {
	return Entry{
		DB:                 prefixCell(row[ColDB], false),
		UniqueIdentifier:   prefixCell(row[ColUniqueIdentifier], false),
		EntryName:          prefixCell(row[ColEntryName], true),
		ProteinName:        lineCell(row[ColProteinName]),
		OrganismName:       lineCell(row[ColOrganismName]),
		OrganismIdentifier: ToPgInt8(row[ColOrganismIdentifier]),
		GeneName:           lineCell(row[ColGeneName]),
		ProteinExistence:   ToPgInt4(row[ColProteinExistence]),
		SequenceVersion:    ToPgInt4(row[ColSequenceVersion]),
		Sequence:           sequenceCell(row[ColSequence]),
		RawHeader:          rawHeaderCell(row[ColRawHeader]),
		ProteinID:          lineCell(row[ColProteinID]),
	}
}

// DeriveProteinID joins the present prefix parts with '|', e.g.
// "sp|Q6ZRR7|VWA5B_HUMAN". Absent when the entry has no prefix.
func DeriveProteinID(e Entry) pgtype.Text {
	parts := lo.FilterMap([]pgtype.Text{e.DB, e.UniqueIdentifier, e.EntryName}, func(p pgtype.Text, _ int) (string, bool) {
		return p.String, p.Valid
	})
	if len(parts) == 0 {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: strings.Join(parts, "|"), Valid: true}
}

// WithProteinIDs returns a copy of entries with ProteinID set from the
// header prefix wherever it is not already present.
func WithProteinIDs(entries []Entry) []Entry {
	return lo.Map(entries, func(e Entry, _ int) Entry {
		if !e.ProteinID.Valid {
			e.ProteinID = DeriveProteinID(e)
		}
		return e
	})
}
