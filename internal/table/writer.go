package table

import (
	"bufio"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Cell is a rendered CSV field.
type Cell struct {
	Text string
	// Quoted forces the field to be quoted, it is set for every non-numeric value.
	Quoted bool
}

var emptyCell = Cell{Text: "", Quoted: true}

func cellOf(value gjson.Result) Cell {
	switch value.Type {
	case gjson.Number:
		return Cell{Text: value.Raw}
	case gjson.True:
		return Cell{Text: "True"}
	case gjson.False:
		return Cell{Text: "False"}
	case gjson.String:
		return Cell{Text: value.Str, Quoted: true}
	case gjson.JSON:
		return Cell{Text: string(pretty.Ugly([]byte(value.Raw))), Quoted: true}
	}
	return emptyCell
}

// Writer writes CSV with every non-numeric field quoted.
type Writer struct {
	w *bufio.Writer
	// Terminator ends every row.
	Terminator string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:          bufio.NewWriter(w),
		Terminator: "\r\n",
	}
}

// WriteHeader writes the column names, they are only quoted when they have to be.
func (w *Writer) WriteHeader(columns []string) error {
	cells := make([]Cell, len(columns))
	for i, c := range columns {
		cells[i] = Cell{Text: c, Quoted: needsQuotes(c)}
	}
	return w.WriteRow(cells)
}

func (w *Writer) WriteRow(cells []Cell) error {
	for i, cell := range cells {
		if i > 0 {
			if err := w.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := w.writeField(cell); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString(w.Terminator)
	return err
}

func (w *Writer) writeField(cell Cell) error {
	if !cell.Quoted && !needsQuotes(cell.Text) {
		_, err := w.w.WriteString(cell.Text)
		return err
	}
	if err := w.w.WriteByte('"'); err != nil {
		return err
	}
	if _, err := w.w.WriteString(strings.ReplaceAll(cell.Text, `"`, `""`)); err != nil {
		return err
	}
	return w.w.WriteByte('"')
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

func needsQuotes(field string) bool {
	return strings.ContainsAny(field, ",\"\r\n")
}
