package restbq

import (
	"errors"
	"strings"

	"github.com/valyala/fastjson"
	"golang.org/x/xerrors"
)

// Mode selects how a JSON payload is normalized into a frame.
type Mode int

const (
	// ModeFlat maps every top-level key of a row to a column.
	// Nested arrays and objects are kept as complex values.
	ModeFlat Mode = iota

	// ModeFlatten expands nested objects into one column per key path,
	// joined with pathSeparator.
	ModeFlatten
)

func (m Mode) String() string {
	if m == ModeFlatten {
		return "flatten"
	}
	return "flat"
}

const pathSeparator = "_"

var (
	// ErrNotObject is returned when a row of the payload is not a JSON object.
	ErrNotObject = errors.New("row is not a JSON object")

	// ErrNoColumns is returned when a payload yields rows without any column.
	ErrNoColumns = errors.New("no columns found")
)

// ColumnType is a destination column type.
type ColumnType string

// Column types supported by the loader.
const (
	TypeString  ColumnType = "STRING"
	TypeInteger ColumnType = "INTEGER"
	TypeFloat   ColumnType = "FLOAT"
	TypeBoolean ColumnType = "BOOLEAN"
)

// Column is a column of a Frame.
type Column struct {
	// Name is the column name. It equals the joined Path until the frame is sanitized.
	Name string

	// Path is the key path in the source document.
	Path []string

	// Type is set by Coerce.
	Type ColumnType

	Values []Value
}

// Frame is a column-oriented table built from a JSON payload.
type Frame struct {
	Columns []*Column
	rows    int
	index   map[string]int
}

func newFrame() *Frame {
	return &Frame{index: map[string]int{}}
}

// Rows returns the number of rows.
func (f *Frame) Rows() int {
	return f.rows
}

// Column returns the column named name.
func (f *Frame) Column(name string) (*Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// set stores v at the current row, creating the column on first appearance.
// Columns are keyed by path, so distinct paths never overwrite each other here.
func (f *Frame) set(path []string, v Value) {
	key := strings.Join(path, "\x00")

	i, ok := f.index[key]
	if !ok {
		p := make([]string, len(path))
		copy(p, path)
		c := &Column{
			Name:   strings.Join(p, pathSeparator),
			Path:   p,
			Values: make([]Value, f.rows, f.rows+1),
		}
		i = len(f.Columns)
		f.Columns = append(f.Columns, c)
		f.index[key] = i
	}

	c := f.Columns[i]
	if len(c.Values) > f.rows {
		c.Values[f.rows] = v
		return
	}
	c.Values = append(c.Values, v)
}

// endRow pads columns missing in the current row with nulls.
func (f *Frame) endRow() {
	f.rows++
	for _, c := range f.Columns {
		for len(c.Values) < f.rows {
			c.Values = append(c.Values, Null)
		}
	}
}

// IsEmptyPayload reports whether v carries no data: null, [] or {}.
func IsEmptyPayload(v *fastjson.Value) bool {
	if v == nil {
		return true
	}

	switch v.Type() {
	case fastjson.TypeNull:
		return true
	case fastjson.TypeArray:
		a, _ := v.Array()
		return len(a) == 0
	case fastjson.TypeObject:
		o, _ := v.Object()
		return o.Len() == 0
	}

	return false
}

// Normalize converts a parsed payload into a frame.
// An array yields one row per element and an object yields a single row.
func Normalize(v *fastjson.Value, mode Mode) (*Frame, error) {
	var rows []*fastjson.Value
	if v.Type() == fastjson.TypeArray {
		rows, _ = v.Array()
	} else {
		rows = []*fastjson.Value{v}
	}

	f := newFrame()

	for i, r := range rows {
		o, err := r.Object()
		if err != nil {
			return nil, xerrors.Errorf("row %d (%s): %w", i, r.Type(), ErrNotObject)
		}

		switch mode {
		case ModeFlatten:
			f.flatten(nil, o)
		default:
			o.Visit(func(key []byte, v *fastjson.Value) {
				f.set([]string{string(key)}, valueOf(v))
			})
		}

		f.endRow()
	}

	if len(f.Columns) == 0 {
		return nil, ErrNoColumns
	}

	return f, nil
}

func (f *Frame) flatten(prefix []string, o *fastjson.Object) {
	o.Visit(func(key []byte, v *fastjson.Value) {
		path := append(prefix[:len(prefix):len(prefix)], string(key))

		if v.Type() == fastjson.TypeObject {
			child, _ := v.Object()
			f.flatten(path, child)
			return
		}

		f.set(path, valueOf(v))
	})
}
