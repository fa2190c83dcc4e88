package tidyframe

import (
	"context"
	"fmt"
	stdio "io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/io"
)

// CSVOptions configures CSV reading and writing
type CSVOptions = io.CSVOptions

// CSVOption adjusts CSVOptions
type CSVOption func(*CSVOptions)

// WithDelimiter sets the field delimiter
func WithDelimiter(delimiter rune) CSVOption {
	return func(o *CSVOptions) { o.Delimiter = delimiter }
}

// WithComment skips lines starting with comment
func WithComment(comment rune) CSVOption {
	return func(o *CSVOptions) { o.Comment = comment }
}

// WithoutHeader reads the first line as data; columns are named column_0, column_1, ...
func WithoutHeader() CSVOption {
	return func(o *CSVOptions) { o.Header = false }
}

// WithNullValues sets the cell texts read as null. Written nulls use the first one.
func WithNullValues(values ...string) CSVOption {
	return func(o *CSVOptions) { o.NullValues = values }
}

// WithSkipInitialSpace ignores leading white space in fields
func WithSkipInitialSpace() CSVOption {
	return func(o *CSVOptions) { o.SkipInitialSpace = true }
}

func csvOptions(opts []CSVOption) CSVOptions {
	options := io.DefaultCSVOptions()
	options.Delimiter = config.GetGlobalConfig().Delimiter()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// ReadCSV reads delimited text into a DataFrame, inferring bool, int64,
// float64 or string per column. The delimiter defaults to the configured CSVDelimiter.
func ReadCSV(r stdio.Reader, opts ...CSVOption) (*DataFrame, error) {
	df, err := io.NewCSVReader(r, csvOptions(opts), memory.DefaultAllocator).Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return wrap(df), nil
}

// WriteCSV writes df as delimited text with a header line
func WriteCSV(w stdio.Writer, df *DataFrame, opts ...CSVOption) error {
	if err := io.NewCSVWriter(w, csvOptions(opts)).Write(df.df); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

// ParquetOptions configures Parquet writing
type ParquetOptions = io.ParquetOptions

// DefaultParquetOptions returns snappy compression and the default row group size
func DefaultParquetOptions() ParquetOptions {
	return io.DefaultParquetOptions()
}

// ReadParquet reads a Parquet file into a DataFrame
func ReadParquet(r stdio.Reader) (*DataFrame, error) {
	df, err := io.NewParquetReader(r, memory.DefaultAllocator).Read()
	if err != nil {
		return nil, fmt.Errorf("reading Parquet: %w", err)
	}
	return wrap(df), nil
}

// WriteParquet writes df as a Parquet file; with no options DefaultParquetOptions apply
func WriteParquet(w stdio.Writer, df *DataFrame, opts ...ParquetOptions) error {
	options := io.DefaultParquetOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if err := io.NewParquetWriter(w, options).Write(df.df); err != nil {
		return fmt.Errorf("writing Parquet: %w", err)
	}
	return nil
}

// Querier runs SQL queries; *sql.DB, *sql.Conn and *sql.Tx satisfy it
type Querier = io.Querier

// ReadSQL runs query against db and returns its result set as a DataFrame.
// NULL values become nulls; column types follow the returned values.
func ReadSQL(ctx context.Context, db Querier, query string, args ...any) (*DataFrame, error) {
	df, err := io.NewSQLReader(db, query, args, memory.DefaultAllocator).ReadContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading SQL: %w", err)
	}
	return wrap(df), nil
}
