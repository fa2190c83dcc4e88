// Package render draws the head of a DataFrame as a text table.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/paveg/tidyframe/internal/dataframe"
)

// NullText is how null cells are drawn
const NullText = "null"

// Options controls table rendering
type Options struct {
	// Rows is the number of leading rows to draw; values <= 0 draw nothing but the header
	Rows int
	// ShowTypes appends the Arrow type to each header cell
	ShowTypes bool
	// Caption adds a "rows x columns" summary under the table
	Caption bool
}

// Table writes the first opts.Rows rows of df to w
func Table(w io.Writer, df *dataframe.DataFrame, opts Options) error {
	if df.Width() == 0 {
		_, err := fmt.Fprintln(w, "(empty table)")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	names := df.Columns()
	header := make([]string, len(names))
	columns := make([]dataframe.ISeries, len(names))
	for i, name := range names {
		col, _ := df.Column(name)
		columns[i] = col
		header[i] = name
		if opts.ShowTypes {
			header[i] = fmt.Sprintf("%s <%s>", name, col.DataType())
		}
	}
	table.SetHeader(header)

	shown := min(max(opts.Rows, 0), df.Len())
	for row := range shown {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if col.IsNull(row) {
				cells[i] = NullText
			} else {
				cells[i] = col.GetAsString(row)
			}
		}
		table.Append(cells)
	}

	if opts.Caption {
		table.SetCaption(true, caption(df, shown))
	}

	table.Render()
	return nil
}

// String renders like Table into a string
func String(df *dataframe.DataFrame, opts Options) string {
	var sb strings.Builder
	_ = Table(&sb, df, opts)
	return sb.String()
}

func caption(df *dataframe.DataFrame, shown int) string {
	text := fmt.Sprintf("%d rows x %d columns", df.Len(), df.Width())
	if shown < df.Len() {
		text = fmt.Sprintf("showing %d of %s", shown, text)
	}
	if df.IsGrouped() {
		text += "; groups: " + strings.Join(df.Groups(), ", ")
	}
	return text
}
