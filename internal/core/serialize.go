package core

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultWrapWidth is the number of residues per sequence line.
const DefaultWrapWidth = 60

// FormatHeader renders the header line of e without the leading '>'.
//
// With a prefix the line is db|unique_identifier|entry_name (absent parts
// empty), then the protein name, then each present tag in OS, OX, GN, PE,
// SV order. Without any prefix part the stored raw header is used verbatim
// when there is one. The result is always a single line.
func FormatHeader(e Entry) string {
	return singleLine(formatHeader(e))
}

func formatHeader(e Entry) string {
	var b strings.Builder

	if e.HasPrefix() {
		b.WriteString(e.DB.String)
		b.WriteByte('|')
		b.WriteString(e.UniqueIdentifier.String)
		b.WriteByte('|')
		b.WriteString(e.EntryName.String)
	} else if e.RawHeader != "" {
		return e.RawHeader
	}

	word := func(s string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}

	if e.ProteinName.Valid {
		word(e.ProteinName.String)
	}
	if e.OrganismName.Valid {
		word(string(TagOrganismName) + "=" + e.OrganismName.String)
	}
	if e.OrganismIdentifier.Valid {
		word(string(TagOrganismIdentifier) + "=" + strconv.FormatInt(e.OrganismIdentifier.Int64, 10))
	}
	if e.GeneName.Valid {
		word(string(TagGeneName) + "=" + e.GeneName.String)
	}
	if e.ProteinExistence.Valid {
		word(string(TagProteinExistence) + "=" + strconv.FormatInt(int64(e.ProteinExistence.Int32), 10))
	}
	if e.SequenceVersion.Valid {
		word(string(TagSequenceVersion) + "=" + strconv.FormatInt(int64(e.SequenceVersion.Int32), 10))
	}

	return b.String()
}

// Writer writes entries as FASTA records.
type Writer struct {
	w     *bufio.Writer
	width int
	count int
}

// NewWriter returns a Writer that wraps sequences at width residues per
// line. A width of zero or less writes each sequence on a single line.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{w: bufio.NewWriter(w), width: width}
}

// Write writes one record: the header line, then the wrapped sequence.
// Every line ends with exactly one '\n'. An empty sequence writes the
// header line only.
func (w *Writer) Write(e Entry) error {
	if err := w.w.WriteByte('>'); err != nil {
		return err
	}
	if _, err := w.w.WriteString(FormatHeader(e)); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}

	// A '>' that lands at the start of a wrapped line would open a record.
	seq := strings.ReplaceAll(e.Sequence, ">", "")
	for len(seq) > 0 {
		n := len(seq)
		if w.width > 0 {
			n = runePrefix(seq, w.width)
		}
		if _, err := w.w.WriteString(seq[:n]); err != nil {
			return err
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
		seq = seq[n:]
	}

	w.count++
	return nil
}

// runePrefix returns the byte length of the first n runes of s.
func runePrefix(s string, n int) int {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// Count returns the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// WriteEntries writes all entries to w and flushes.
func WriteEntries(w io.Writer, entries []Entry, width int) error {
	fw := NewWriter(w, width)
	for _, e := range entries {
		if err := fw.Write(e); err != nil {
			return err
		}
	}
	return fw.Flush()
}

// FormatEntries renders entries as FASTA text.
func FormatEntries(entries []Entry, width int) string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = WriteEntries(&b, entries, width)
	return b.String()
}
