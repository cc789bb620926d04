package core

import (
	"github.com/samber/lo"
)

var columnIndex = lo.KeyBy(append(append([]Column{}, Columns...), ExtraColumns...), func(c Column) string {
	return c.Name
})

// LookupColumn returns a recognized column by name.
// Returns false if the name is neither canonical nor an extra column.
func LookupColumn(name string) (Column, bool) {
	c, ok := columnIndex[name]
	return c, ok
}

// ColumnNames returns the canonical column names in order.
func ColumnNames() []string {
	return lo.Map(Columns, func(c Column, _ int) string {
		return c.Name
	})
}

// AllColumns returns the canonical columns followed by the extra columns.
func AllColumns() []Column {
	return append(append([]Column{}, Columns...), ExtraColumns...)
}

// FilterColumns reduces names to the recognized columns, in canonical
// order, with extras after the canonical set. Unknown and duplicate names
// are dropped.
func FilterColumns(names []string) []string {
	return lo.FilterMap(AllColumns(), func(c Column, _ int) (string, bool) {
		return c.Name, lo.Contains(names, c.Name)
	})
}
