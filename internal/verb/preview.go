package verb

import (
	"fmt"
	"io"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/render"
)

// Preview draws the head of the table and passes the table through unchanged
type Preview struct {
	w       io.Writer
	rows    int
	op      string
	options render.Options
}

// NewPreview draws the first n rows to w; n <= 0 uses the configured PreviewRows
func NewPreview(w io.Writer, n int) *Preview {
	return newPreview("preview", w, n, render.Options{})
}

// NewCheck draws like Preview and adds column types and a shape caption
func NewCheck(w io.Writer, n int) *Preview {
	return newPreview("check", w, n, render.Options{ShowTypes: true, Caption: true})
}

func newPreview(op string, w io.Writer, n int, options render.Options) *Preview {
	if n <= 0 {
		n = config.GetGlobalConfig().PreviewRows
	}
	options.Rows = n
	return &Preview{w: w, rows: n, op: op, options: options}
}

// Apply renders df and returns a copy of it
func (p *Preview) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := render.Table(p.w, df, p.options); err != nil {
		return nil, fmt.Errorf("rendering preview: %w", err)
	}
	return df.Drop(), nil
}

func (p *Preview) String() string {
	return fmt.Sprintf("%s(%d)", p.op, p.rows)
}
