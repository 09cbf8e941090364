package restbq

import (
	"fmt"
	"regexp"
	"strings"
)

var invalidColumnChars = regexp.MustCompile(`[^0-9a-zA-Z_]`)

// SanitizeColumnName replaces every character BigQuery does not accept in a
// column name with an underscore and lowercases the result. An empty name
// becomes "_".
func SanitizeColumnName(name string) string {
	if name == "" {
		return "_"
	}
	return strings.ToLower(invalidColumnChars.ReplaceAllString(name, "_"))
}

// ColumnCollisionError is returned when distinct source keys sanitize to the same column name.
type ColumnCollisionError struct {
	Name     string
	Original []string
}

func (e *ColumnCollisionError) Error() string {
	return fmt.Sprintf("columns %q collide as %q after sanitizing", e.Original, e.Name)
}

// Sanitize renames every column of f with SanitizeColumnName.
func Sanitize(f *Frame) error {
	seen := make(map[string]*Column, len(f.Columns))

	for _, c := range f.Columns {
		name := SanitizeColumnName(c.Name)
		if prev, ok := seen[name]; ok {
			return &ColumnCollisionError{
				Name:     name,
				Original: []string{strings.Join(prev.Path, "."), strings.Join(c.Path, ".")},
			}
		}
		seen[name] = c
	}

	for _, c := range f.Columns {
		c.Name = SanitizeColumnName(c.Name)
	}

	return nil
}
