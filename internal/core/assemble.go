package core

import (
	"io"
	"iter"
	"log/slog"
	"strings"
	"unicode"
)

// AssembleEntry builds one Entry from a raw record.
//
// Sequence lines are joined with all whitespace removed. A header without
// a db|id|name prefix still yields an Entry, with the structured fields
// absent, the raw header kept, and an HDR001 warning. An empty sequence
// yields an Entry with Sequence "" and a SEQ001 warning.
func AssembleEntry(raw RawRecord) (Entry, []Warning) {
	h := ExtractHeader(raw.Header)

	e := Entry{
		DB:                 h.DB,
		UniqueIdentifier:   h.UniqueIdentifier,
		EntryName:          h.EntryName,
		ProteinName:        h.ProteinName,
		OrganismName:       h.OrganismName,
		OrganismIdentifier: h.OrganismIdentifier,
		GeneName:           h.GeneName,
		ProteinExistence:   h.ProteinExistence,
		SequenceVersion:    h.SequenceVersion,
		Sequence:           joinSequence(raw.Lines),
		RawHeader:          raw.Header,
	}

	var warnings []Warning
	if !h.PrefixOK {
		warnings = append(warnings, newWarning(WarnStructural, "", "", "header has no db|id|name prefix"))
	}
	warnings = append(warnings, h.Warnings...)
	if e.Sequence == "" {
		warnings = append(warnings, newWarning(WarnEmptySequence, ColSequence, "", "record has an empty sequence"))
	}

	for i := range warnings {
		warnings[i].Record = raw.Index
		warnings[i].Header = raw.Header
	}
	return e, warnings
}

func joinSequence(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		for _, r := range line {
			if !unicode.IsSpace(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// WarningHandler receives per-record warnings as they are produced.
type WarningHandler func(Warning)

// LogWarnings returns a WarningHandler that logs each warning at Warn level.
func LogWarnings(logger *slog.Logger) WarningHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w Warning) {
		logger.Warn("fasta record warning",
			"code", w.Code,
			"kind", string(w.Kind),
			"record", w.Record,
			"field", w.Field,
			"message", w.Message,
		)
	}
}

// Decoder turns FASTA text into entries, routing warnings to a handler.
type Decoder struct {
	onWarning WarningHandler
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithWarningHandler sets the handler that receives warnings.
func WithWarningHandler(h WarningHandler) DecoderOption {
	return func(d *Decoder) {
		d.onWarning = h
	}
}

// NewDecoder creates a Decoder. Without options warnings are logged with
// the default slog logger.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.onWarning == nil {
		d.onWarning = LogWarnings(nil)
	}
	return d
}

// Entries yields the entries of r in input order. Like SplitRecords it is
// forward-only, and the only error it yields is a *SourceError.
func (d *Decoder) Entries(r io.Reader) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for raw, err := range SplitRecords(r) {
			if err != nil {
				yield(Entry{}, err)
				return
			}
			e, warnings := AssembleEntry(raw)
			for _, w := range warnings {
				d.onWarning(w)
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// ReadEntries parses all of r, collecting warnings instead of logging them.
// On a source error no entries are returned.
func ReadEntries(r io.Reader) ([]Entry, []Warning, error) {
	var warnings []Warning
	dec := NewDecoder(WithWarningHandler(func(w Warning) {
		warnings = append(warnings, w)
	}))

	var entries []Entry
	for e, err := range dec.Entries(r) {
		if err != nil {
			return nil, warnings, err
		}
		entries = append(entries, e)
	}
	return entries, warnings, nil
}
