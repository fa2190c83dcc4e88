package io

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/validation"
)

// Read runs the query with a background context
func (r *SQLReader) Read() (*dataframe.DataFrame, error) {
	return r.ReadContext(context.Background())
}

// ReadContext runs the query and materializes every returned row. Column
// types follow the scanned Go values: integers become int64, any mix of
// integers and floats becomes float64, booleans stay bool, and everything
// else is rendered as text. SQL NULL becomes a null cell.
func (r *SQLReader) ReadContext(ctx context.Context) (*dataframe.DataFrame, error) {
	rows, err := r.db.QueryContext(ctx, r.query, r.args...)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading column types: %w", err)
	}

	names := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		names[i] = ct.Name()
	}
	if err := validation.ValidateUnique("ReadSQL", "column", names...); err != nil {
		return nil, err
	}

	cells := make([][]any, len(columnTypes))
	dest := make([]any, len(columnTypes))
	for row := 0; rows.Next(); row++ {
		for i := range dest {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", row, err)
		}
		for i, d := range dest {
			cells[i] = append(cells[i], *(d.(*any)))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	columns := make([]dataframe.ISeries, 0, len(columnTypes))
	for i, ct := range columnTypes {
		s, err := r.columnFromValues(names[i], ct.DatabaseTypeName(), cells[i])
		if err != nil {
			for _, c := range columns {
				c.Release()
			}
			return nil, fmt.Errorf("converting column %s: %w", names[i], err)
		}
		columns = append(columns, s)
	}

	return dataframe.NewWithAllocator(r.mem, columns...), nil
}

func (r *SQLReader) columnFromValues(name, dbType string, values []any) (dataframe.ISeries, error) {
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = v != nil
	}

	switch sqlColumnKind(dbType, values) {
	case kindInt:
		ints := make([]int64, len(values))
		for i, v := range values {
			if valid[i] {
				ints[i] = v.(int64)
			}
		}
		return series.NewNullable(name, ints, valid, r.mem)
	case kindFloat:
		floats := make([]float64, len(values))
		for i, v := range values {
			switch n := v.(type) {
			case int64:
				floats[i] = float64(n)
			case float64:
				floats[i] = n
			}
		}
		return series.NewNullable(name, floats, valid, r.mem)
	case kindBool:
		bools := make([]bool, len(values))
		for i, v := range values {
			if valid[i] {
				bools[i] = v.(bool)
			}
		}
		return series.NewNullable(name, bools, valid, r.mem)
	default:
		texts := make([]string, len(values))
		for i, v := range values {
			texts[i] = sqlText(v)
		}
		return series.NewNullable(name, texts, valid, r.mem)
	}
}

// sqlColumnKind picks a column type from the scanned values, falling back to
// the declared database type when every value is NULL.
func sqlColumnKind(dbType string, values []any) columnKind {
	var ints, floats, bools, others int
	for _, v := range values {
		switch v.(type) {
		case nil:
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		default:
			others++
		}
	}

	switch {
	case others > 0:
		return kindString
	case bools > 0 && ints+floats > 0:
		return kindString
	case bools > 0:
		return kindBool
	case floats > 0:
		return kindFloat
	case ints > 0:
		return kindInt
	}

	switch strings.ToUpper(dbType) {
	case "INTEGER", "INT", "BIGINT", "SMALLINT":
		return kindInt
	case "REAL", "FLOAT", "DOUBLE", "NUMERIC", "DECIMAL":
		return kindFloat
	case "BOOLEAN", "BOOL":
		return kindBool
	default:
		return kindString
	}
}

func sqlText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}
