package tableio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"

	"github.com/JonMunkholm/fastaframes/internal/core"
)

type jsonTable struct {
	Columns []string   `json:"columns"`
	Rows    []core.Row `json:"rows"`
}

// ReadJSON decodes a JSON table. Numbers are kept as json.Number so large
// taxonomy identifiers survive without float rounding.
func ReadJSON(r io.Reader) (*core.Table, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	var jt jsonTable
	if first == '[' {
		err = dec.Decode(&jt.Rows)
	} else {
		err = dec.Decode(&jt)
	}
	if err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	if len(jt.Columns) == 0 {
		jt.Columns = rowKeys(jt.Rows)
	}
	return &core.Table{Columns: jt.Columns, Rows: jt.Rows}, nil
}

// WriteJSON encodes t as a JSON table. Absent cells are written as null.
func WriteJSON(w io.Writer, t *core.Table) error {
	jt := jsonTable{Columns: t.Columns, Rows: t.Rows}
	if jt.Columns == nil {
		jt.Columns = []string{}
	}
	if jt.Rows == nil {
		jt.Rows = []core.Row{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(jt)
}

// peekNonSpace returns the first byte that is not whitespace or part of a
// UTF-8 BOM, leaving it unread.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return 0, errors.New("empty payload")
		}
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF:
			continue
		}
		return b, br.UnreadByte()
	}
}

// rowKeys returns the union of keys across rows, canonical columns first.
func rowKeys(rows []core.Row) []string {
	var keys []string
	for _, row := range rows {
		for k := range row {
			keys = append(keys, k)
		}
	}
	keys = lo.Uniq(keys)

	known := core.FilterColumns(keys)
	rest := lo.Filter(keys, func(k string, _ int) bool {
		return !lo.Contains(known, k)
	})
	slices.Sort(rest)
	return append(known, rest...)
}
