package restbq

import (
	"bytes"
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fastjson"
	"golang.org/x/xerrors"
)

// WriteDisposition tells the loader what to do with an existing table.
type WriteDisposition int

const (
	// Replace discards the schema and rows of an existing table.
	Replace WriteDisposition = iota

	// FailIfExists fails the load when the table already has rows.
	FailIfExists
)

func (d WriteDisposition) bigquery() bigquery.TableWriteDisposition {
	if d == FailIfExists {
		return bigquery.WriteEmpty
	}
	return bigquery.WriteTruncate
}

// loader loads a frame into a destination such as BigQuery.
type loader interface {
	load(ctx context.Context, table string, f *Frame, d WriteDisposition) error
}

// bigQueryLoader builds its client on the first load, so a client error fails
// each source at the load stage instead of the whole run.
type bigQueryLoader struct {
	project   string
	dataset   string
	newClient func(ctx context.Context, project string) (*bigquery.Client, error)

	client *bigquery.Client
}

func newBigQueryLoader(project, dataset string) *bigQueryLoader {
	return &bigQueryLoader{
		project: project,
		dataset: dataset,
		newClient: func(ctx context.Context, project string) (*bigquery.Client, error) {
			return bigquery.NewClient(ctx, project)
		},
	}
}

func (l *bigQueryLoader) bigqueryClient(ctx context.Context) (*bigquery.Client, error) {
	if l.client != nil {
		return l.client, nil
	}

	bq, err := l.newClient(ctx, l.project)
	if err != nil {
		return nil, xerrors.Errorf("failed to build bigquery client for %s: %w", l.project, err)
	}
	l.client = bq

	return bq, nil
}

func (l *bigQueryLoader) load(ctx context.Context, table string, f *Frame, d WriteDisposition) error {
	lg := log.Ctx(ctx)

	bq, err := l.bigqueryClient(ctx)
	if err != nil {
		return err
	}

	data, err := encodeNDJSON(f)
	if err != nil {
		return xerrors.Errorf("failed to encode rows: %w", err)
	}

	rs := bigquery.NewReaderSource(bytes.NewReader(data))
	rs.SourceFormat = bigquery.JSON
	rs.Schema = schemaOf(f)

	ld := bq.Dataset(l.dataset).Table(table).LoaderFrom(rs)
	ld.CreateDisposition = bigquery.CreateIfNeeded
	ld.WriteDisposition = d.bigquery()

	job, err := ld.Run(ctx)
	if err != nil {
		return xerrors.Errorf("failed to run bigquery load job into %s.%s: %w", l.dataset, table, err)
	}
	lg.Debug().Str("job", job.ID()).Msg("load job started")

	status, err := job.Wait(ctx)
	if err != nil {
		return xerrors.Errorf("failed to wait load job %s: %w", job.ID(), err)
	}

	if err := status.Err(); err != nil {
		for _, e := range status.Errors {
			lg.Debug().Str("job", job.ID()).Msg(e.Error())
		}
		return xerrors.Errorf("load job %s failed: %w", job.ID(), err)
	}

	return nil
}

func (l *bigQueryLoader) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}

func schemaOf(f *Frame) bigquery.Schema {
	s := make(bigquery.Schema, len(f.Columns))
	for i, c := range f.Columns {
		s[i] = &bigquery.FieldSchema{Name: c.Name, Type: fieldType(c.Type)}
	}
	return s
}

func fieldType(t ColumnType) bigquery.FieldType {
	switch t {
	case TypeInteger:
		return bigquery.IntegerFieldType
	case TypeFloat:
		return bigquery.FloatFieldType
	case TypeBoolean:
		return bigquery.BooleanFieldType
	}
	return bigquery.StringFieldType
}

// encodeNDJSON encodes rows of a coerced frame as newline-delimited JSON.
func encodeNDJSON(f *Frame) ([]byte, error) {
	var (
		a   fastjson.Arena
		buf []byte
	)

	for r := 0; r < f.Rows(); r++ {
		a.Reset()
		o := a.NewObject()

		for _, c := range f.Columns {
			v, err := cellJSON(&a, c, c.Values[r])
			if err != nil {
				return nil, xerrors.Errorf("row %d: %w", r, err)
			}
			o.Set(c.Name, v)
		}

		buf = o.MarshalTo(buf)
		buf = append(buf, '\n')
	}

	return buf, nil
}

func cellJSON(a *fastjson.Arena, c *Column, v Value) (*fastjson.Value, error) {
	if v.IsNull() {
		return a.NewNull(), nil
	}

	switch c.Type {
	case TypeInteger, TypeFloat:
		if v.Kind != KindNumber {
			return nil, xerrors.Errorf("column %s: %s value in %s column", c.Name, v.Kind, c.Type)
		}
		return a.NewNumberString(v.Text), nil
	case TypeBoolean:
		if v.Kind != KindBool {
			return nil, xerrors.Errorf("column %s: %s value in %s column", c.Name, v.Kind, c.Type)
		}
		if v.Text == "true" {
			return a.NewTrue(), nil
		}
		return a.NewFalse(), nil
	}

	return a.NewString(v.Text), nil
}
