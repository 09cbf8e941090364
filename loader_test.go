package restbq

import (
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaOf(t *testing.T) {
	f := transformString(t, `[{"id":1,"title":"x","price":109.95,"active":true,"rating":{"rate":3.9}}]`, ModeFlat)

	s := schemaOf(f)
	require.Len(t, s, 5)

	expected := []struct {
		name string
		typ  bigquery.FieldType
	}{
		{"id", bigquery.IntegerFieldType},
		{"title", bigquery.StringFieldType},
		{"price", bigquery.FloatFieldType},
		{"active", bigquery.BooleanFieldType},
		{"rating", bigquery.StringFieldType},
	}

	for i, e := range expected {
		assert.Equal(t, e.name, s[i].Name)
		assert.Equal(t, e.typ, s[i].Type, e.name)
		assert.False(t, s[i].Required, e.name)
	}
}

func TestEncodeNDJSON(t *testing.T) {
	f := transformString(t, `[{"id":1,"tags":["a","b"],"ok":true,"p":1.5},{"id":2,"tags":[]}]`, ModeFlat)

	data, err := encodeNDJSON(f)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.JSONEq(t, `{"id":1,"tags":"[\"a\",\"b\"]","ok":true,"p":1.5}`, lines[0])
	assert.JSONEq(t, `{"id":2,"tags":"[]","ok":null,"p":null}`, lines[1])
}

func TestEncodeNDJSON_TypeMismatch(t *testing.T) {
	f := transformString(t, `[{"id":1}]`, ModeFlat)
	f.Columns[0].Type = TypeBoolean

	_, err := encodeNDJSON(f)
	assert.Error(t, err)
}

func TestWriteDisposition(t *testing.T) {
	assert.Equal(t, bigquery.WriteTruncate, Replace.bigquery())
	assert.Equal(t, bigquery.WriteEmpty, FailIfExists.bigquery())
}
