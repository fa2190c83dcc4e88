package io

import (
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/validation"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

// inferred column kinds, most specific first
type columnKind int

const (
	kindString columnKind = iota
	kindBool
	kindInt
	kindFloat
)

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	// Create CSV reader
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace

	// Read all records
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	// Handle empty CSV
	if len(records) == 0 {
		return dataframe.NewWithAllocator(r.mem), nil
	}

	var headers []string
	var dataRows [][]string

	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		// Generate default column names
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	if err := validation.ValidateUnique("ReadCSV", "column", headers...); err != nil {
		return nil, err
	}

	columns := make([]dataframe.ISeries, 0, len(headers))
	for i, header := range headers {
		cells := make([]string, len(dataRows))
		for j, row := range dataRows {
			cells[j] = row[i]
		}

		s, err := r.createSeriesFromStrings(header, cells)
		if err != nil {
			for _, c := range columns {
				c.Release()
			}
			return nil, fmt.Errorf("creating series for column %s: %w", header, err)
		}
		columns = append(columns, s)
	}

	return dataframe.NewWithAllocator(r.mem, columns...), nil
}

// createSeriesFromStrings creates a series from string data, inferring the
// appropriate type. Cells matching a null value become nulls.
func (r *CSVReader) createSeriesFromStrings(name string, data []string) (dataframe.ISeries, error) {
	valid := make([]bool, len(data))
	for i, value := range data {
		valid[i] = !r.isNull(value)
	}

	switch inferDataType(data, valid) {
	case kindBool:
		return parseColumn(name, data, valid, r, func(s string) (bool, error) {
			return strings.EqualFold(s, trueStr), nil
		})
	case kindInt:
		return parseColumn(name, data, valid, r, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		})
	case kindFloat:
		return parseColumn(name, data, valid, r, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
	default:
		return parseColumn(name, data, valid, r, func(s string) (string, error) {
			return s, nil
		})
	}
}

func (r *CSVReader) isNull(value string) bool {
	return slices.Contains(r.options.NullValues, value)
}

func parseColumn[T any](name string, data []string, valid []bool, r *CSVReader, parse func(string) (T, error)) (dataframe.ISeries, error) {
	values := make([]T, len(data))
	for i, cell := range data {
		if !valid[i] {
			continue
		}
		v, err := parse(cell)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return series.NewNullable(name, values, valid, r.mem)
}

// inferDataType determines the most appropriate data type for the non-null cells
func inferDataType(data []string, valid []bool) columnKind {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasValue := false

	for i, value := range data {
		if !valid[i] {
			continue // Skip nulls for type inference
		}
		hasValue = true

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}

		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}

		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	// If all values are null, default to string
	switch {
	case !hasValue:
		return kindString
	case canBeBool:
		return kindBool
	case canBeInt:
		return kindInt
	case canBeFloat:
		return kindFloat
	default:
		return kindString
	}
}

// Write writes the DataFrame to CSV format
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	// Write headers if required
	if w.options.Header {
		if err := csvWriter.Write(df.Columns()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	nullText := ""
	if len(w.options.NullValues) > 0 {
		nullText = w.options.NullValues[0]
	}

	arrs := make([]arrow.Array, 0, df.Width())
	defer func() {
		for _, arr := range arrs {
			arr.Release()
		}
	}()
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		arrs = append(arrs, col.Array())
	}

	row := make([]string, len(arrs))
	for i := range df.Len() {
		for j, arr := range arrs {
			if arr.IsNull(i) {
				row[j] = nullText
			} else {
				row[j] = series.FormatValue(arr, i)
			}
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
