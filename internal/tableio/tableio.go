// Package tableio reads and writes core tables as CSV, TSV and JSON.
//
// CSV and TSV files carry a header row of column names; every cell is read
// back as a string and left for core to normalize. JSON tables use the
// shape
//
//	{"columns": ["db", ...], "rows": [{"db": "sp", ...}, ...]}
//
// A bare array of row objects is also accepted on read, which is what
// dataframe libraries emit for a "records" export.
package tableio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/fastaframes/internal/core"
)

// Format identifies a table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// ParseFormat converts a user-supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "tsv", "tab":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown table format %q (want csv, tsv or json)", s)
	}
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, true
	case ".tsv", ".tab":
		return FormatTSV, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type used when serving f over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FormatFromContentType picks a format from an HTTP Content-Type header.
func FormatFromContentType(contentType string) (Format, bool) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON, true
	case strings.Contains(ct, "tab-separated"):
		return FormatTSV, true
	case strings.Contains(ct, "csv"):
		return FormatCSV, true
	default:
		return "", false
	}
}

// Read decodes a table from r.
func Read(r io.Reader, f Format) (*core.Table, error) {
	switch f {
	case FormatCSV:
		return ReadCSV(r, ',')
	case FormatTSV:
		return ReadCSV(r, '\t')
	case FormatJSON:
		return ReadJSON(r)
	default:
		return nil, fmt.Errorf("decode table: unsupported format %q", f)
	}
}

// Write encodes t to w.
func Write(w io.Writer, t *core.Table, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t, ',')
	case FormatTSV:
		return WriteCSV(w, t, '\t')
	case FormatJSON:
		return WriteJSON(w, t)
	default:
		return fmt.Errorf("encode table: unsupported format %q", f)
	}
}

// ReadFile decodes the table at path, choosing the format from its
// extension. Unknown extensions are read as CSV.
func ReadFile(path string) (*core.Table, error) {
	f, ok := FormatFromPath(path)
	if !ok {
		f = FormatCSV
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &core.SourceError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	return Read(file, f)
}

// WriteFile encodes t to path in format f.
func WriteFile(path string, t *core.Table, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return &core.SourceError{Op: "create", Path: path, Err: err}
	}
	if err := Write(file, t, f); err != nil {
		file.Close()
		return &core.SourceError{Op: "write", Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &core.SourceError{Op: "write", Path: path, Err: err}
	}
	return nil
}
