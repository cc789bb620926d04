package core

// convert.go provides the cell conversions between table values and Entry
// fields.
//
// Tables come from CSV files, JSON payloads and dataframe exports, so a
// cell may be any of:
//   - nil, or a missing key
//   - string, []byte, json.Number, fmt.Stringer
//   - int, int32, int64, float32, float64
//   - pgtype.Text, pgtype.Int4, pgtype.Int8
//
// normalizeCell is the single place where the many spellings of "no
// value" collapse to absent: empty or whitespace-only text and the null
// tokens written by common tools (None, none, null, NULL, NaN, <NA>). The
// lower-case "nan" is a real gene symbol and stays literal in text
// columns; numeric columns reject it anyway.
//
// All ToPg* functions return pgtype values with Valid=false for absent
// or unparseable input.
//
// Cells headed for a header line are reduced to what the header grammar
// can carry: prefix tokens (db, unique_identifier, entry_name) that would
// split the prefix are absent, and line breaks in free text fold to a
// single space.

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
)

var nullTokens = map[string]bool{
	"None": true,
	"none": true,
	"null": true,
	"NULL": true,
	"NaN":  true,
	"<NA>": true,
}

// normalizeCell renders a cell as trimmed text. ok is false when the cell
// is absent.
func normalizeCell(v any) (s string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s = x
	case *string:
		if x == nil {
			return "", false
		}
		s = *x
	case []byte:
		s = string(x)
	case json.Number:
		s = x.String()
	case pgtype.Text:
		if !x.Valid {
			return "", false
		}
		s = x.String
	case pgtype.Int8:
		if !x.Valid {
			return "", false
		}
		return strconv.FormatInt(x.Int64, 10), true
	case pgtype.Int4:
		if !x.Valid {
			return "", false
		}
		return strconv.FormatInt(int64(x.Int32), 10), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float32:
		if math.IsNaN(float64(x)) {
			return "", false
		}
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}

	s = CleanCell(s)
	if s == "" || nullTokens[s] {
		return "", false
	}
	return s, true
}

// CleanCell removes common spreadsheet artifacts from a cell value:
//   - Trims whitespace
//   - Removes Excel formula prefix (="...")
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// ToPgText converts a cell to pgtype.Text.
func ToPgText(v any) pgtype.Text {
	s, ok := normalizeCell(v)
	if !ok {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgInt8 converts a cell to pgtype.Int8. Integral floats such as
// "9606.0", as written by dataframe exports, are accepted.
func ToPgInt8(v any) pgtype.Int8 {
	n, ok := intCell(v, 64)
	if !ok {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: n, Valid: true}
}

// ToPgInt4 converts a cell to pgtype.Int4, with the same rules as ToPgInt8.
func ToPgInt4(v any) pgtype.Int4 {
	n, ok := intCell(v, 32)
	if !ok {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

func intCell(v any, bitSize int) (int64, bool) {
	s, ok := normalizeCell(v)
	if !ok {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, bitSize); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	limit := math.Ldexp(1, bitSize-1)
	if f < -limit || f >= limit {
		return 0, false
	}
	return int64(f), true
}

// prefixCell converts a cell to a db|id|name token. A value that would
// split the prefix is absent: whitespace anywhere, or '|' outside the last
// token, which keeps everything after the second '|'.
func prefixCell(v any, last bool) pgtype.Text {
	t := ToPgText(v)
	if !t.Valid {
		return t
	}
	if strings.ContainsFunc(t.String, unicode.IsSpace) || (!last && strings.Contains(t.String, "|")) {
		return pgtype.Text{Valid: false}
	}
	return t
}

// lineCell converts a cell to header text on a single line.
func lineCell(v any) pgtype.Text {
	t := ToPgText(v)
	if t.Valid {
		t.String = singleLine(t.String)
	}
	return t
}

// singleLine folds each run of line breaks in s into one space.
func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\r' || r == '\n'
	}), " ")
}

// sequenceCell converts a cell to a sequence with whitespace removed.
// Absent cells give "".
func sequenceCell(v any) string {
	s, ok := normalizeCell(v)
	if !ok {
		return ""
	}
	return joinSequence([]string{s})
}

// rawHeaderCell converts a cell to a raw header. Absent cells give "".
func rawHeaderCell(v any) string {
	s, _ := normalizeCell(v)
	return singleLine(s)
}

// textCell renders a pgtype.Text as a table cell: nil when absent.
func textCell(t pgtype.Text) any {
	if !t.Valid {
		return nil
	}
	return t.String
}

func int8Cell(n pgtype.Int8) any {
	if !n.Valid {
		return nil
	}
	return n.Int64
}

func int4Cell(n pgtype.Int4) any {
	if !n.Valid {
		return nil
	}
	return int64(n.Int32)
}
