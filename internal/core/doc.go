// Package core provides the FASTA <-> table conversion logic.
//
// This package is the heart of fastaframes, containing all parsing and
// serialization logic independent of any UI or transport layer. It can be
// used by web handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The read path is a chain of small stages:
//
//  1. [SplitRecords] turns a text stream into raw (header, sequence lines) records
//  2. [ExtractHeader] parses a UniProt header line into typed fields
//  3. [AssembleEntry] combines both into one immutable [Entry]
//  4. [EntriesToTable] lays entries out as rows over the canonical [Columns]
//
// The write path runs in reverse: [TableToEntries] filters a table down to
// the canonical columns before building entries, and [Writer] renders each
// entry as a header line plus wrapped sequence lines.
//
// # Columns
//
// The canonical column set is a single ordered list, [Columns], shared by
// the table converter, the serializer, the table encoders and the store:
//
//	db, unique_identifier, entry_name, protein_name, organism_name,
//	organism_identifier, gene_name, protein_existence, sequence_version,
//	sequence, raw_header
//
// protein_id is an optional pass-through column listed in [ExtraColumns].
//
// # Absent Values
//
// Optional fields are pgtype values. Valid=false is the "absent" state; it
// is never encoded as zero, an empty string, or the text "None".
//
// # Error Handling
//
// Per-record problems are reported as [Warning] values and never abort a
// stream:
//
//   - HDR001: header does not start with a db|id|name prefix
//   - HDR002: a numeric tag (OX, PE, SV) is not an integer
//   - SEQ001: record has an empty sequence
//
// Only I/O failures at the boundary are fatal; they are returned as
// [*SourceError]. [MapError] turns any error into a [UserMessage] for the
// HTTP layer.
package core
