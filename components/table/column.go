package table

import (
	"github.com/ettle/strcase"

	"github.com/goliatone/go-dataview/components/dataset"
)

// SelectColumnID identifies the synthetic row-selection column.
const SelectColumnID = "select"

// Column is static configuration describing one table column.
type Column struct {
	ID              string             `json:"id" yaml:"id"`
	Accessor        string             `json:"accessor,omitempty" yaml:"accessor,omitempty"`
	Header          string             `json:"header,omitempty" yaml:"header,omitempty"`
	HeaderLocalized map[string]string  `json:"header_localized,omitempty" yaml:"header_localized,omitempty"`
	Width           int                `json:"width,omitempty" yaml:"width,omitempty"`
	Sortable        bool               `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Hideable        bool               `json:"hideable,omitempty" yaml:"hideable,omitempty"`
	Compare         string             `json:"compare,omitempty" yaml:"compare,omitempty"`
	Filter          FilterFunc         `json:"-" yaml:"-"`
	Comparator      dataset.Comparator `json:"-" yaml:"-"`
}

// Path returns the accessor path used to read the column value.
func (c Column) Path() string {
	if c.Accessor != "" {
		return c.Accessor
	}
	return c.ID
}

// Value reads the column value from a record.
func (c Column) Value(rec dataset.Record) any {
	return rec.Value(c.Path())
}

// Label returns the header label, deriving one from the ID when unset.
func (c Column) Label() string {
	if c.Header != "" {
		return c.Header
	}
	return HeaderLabel(c.ID)
}

// IsSelect reports whether the column is the synthetic selection column.
func (c Column) IsSelect() bool {
	return c.ID == SelectColumnID
}

func (c Column) comparator() dataset.Comparator {
	if c.Comparator != nil {
		return c.Comparator
	}
	if cmp, ok := dataset.ComparatorByName(c.Compare); ok {
		return cmp
	}
	return dataset.Auto
}

// HeaderLabel turns a field key (`created_at`, `ownerEmail`) into a title.
func HeaderLabel(key string) string {
	return strcase.ToCase(key, strcase.TitleCase, ' ')
}

func selectColumn() Column {
	return Column{
		ID:       SelectColumnID,
		Header:   "",
		Width:    40,
		Sortable: false,
		Hideable: false,
	}
}

func materializeColumns(columns []Column, withSelection bool) []Column {
	out := make([]Column, 0, len(columns)+1)
	if withSelection {
		out = append(out, selectColumn())
	}
	for _, col := range columns {
		if col.IsSelect() {
			continue
		}
		out = append(out, col)
	}
	return out
}
