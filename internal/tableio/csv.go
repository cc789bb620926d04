package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/fastaframes/internal/core"
)

// ReadCSV decodes a delimited table. The first record is the header row;
// an empty input is an empty table. Short rows are allowed and their
// missing cells are treated as absent.
func ReadCSV(r io.Reader, comma rune) (*core.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.NewTable(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.TrimSpace(h)
	}

	t := core.NewTable(columns)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode table: %w", err)
		}

		row := make(core.Row, len(columns))
		for i, name := range columns {
			if i >= len(record) || name == "" {
				continue
			}
			row[name] = record[i]
		}
		t.Append(row)
	}

	return t, nil
}

// WriteCSV encodes t as a delimited table with a header row. Absent cells
// are written as empty fields.
func WriteCSV(w io.Writer, t *core.Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(t.Columns); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, name := range t.Columns {
			record[i] = formatCell(row[name])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case pgtype.Text:
		return x.String
	default:
		return fmt.Sprint(x)
	}
}
