// Package excelize provides the spreadsheet source and sink. A workbook
// is both at once: URIs are read from the first sheet of the source
// file, and the metadata lands in new columns of a copy of it, so the
// original spreadsheet is never touched.
package excelize

import (
	"context"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/fs"
)

// Heading cell appearance for the metadata columns.
const (
	columnTitleMarker = "[sm] "
	headingFont       = "Calibri"
	headingFillColor  = "BADDAD"
	columnWidth       = 42
)

// Compile-time interface verification.
var (
	_ sacamantecas.Source = (*Workbook)(nil)
	_ sacamantecas.Sink   = (*Workbook)(nil)
)

// Workbook reads items from a spreadsheet and writes their metadata
// into a copy of it. Metadata goes to new columns, one per key, marked
// with a prefix as added by the application. Only the first sheet is
// processed, because it is the one where the item URIs are. Allegedly.
type Workbook struct {
	sinkPath string
	source   *excelize.File
	sink     *excelize.File
	sheet    string

	columns      map[string]int
	maxColumn    int
	headingStyle int
}

// Open copies the spreadsheet at sourcePath to its _out sibling and
// prepares both for processing. The copy gets a heading row inserted at
// the top, so metadata rows are displaced by one.
func Open(sourcePath string) (*Workbook, error) {
	sinkPath := fs.SinkPath(sourcePath)

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "cannot read source %q: %v", sourcePath, err)
	}
	if err := os.WriteFile(sinkPath, data, 0644); err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "cannot create sink %q: %v", sinkPath, err)
	}

	source, err := excelize.OpenFile(sourcePath)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "source spreadsheet %q is invalid: %v", sourcePath, err)
	}

	sink, err := excelize.OpenFile(sinkPath)
	if err != nil {
		source.Close()
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "sink spreadsheet %q is invalid: %v", sinkPath, err)
	}

	w := &Workbook{
		sinkPath: sinkPath,
		source:   source,
		sink:     sink,
		sheet:    source.GetSheetName(0),
		columns:  make(map[string]int),
	}
	if w.sheet == "" {
		w.discard()
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "source spreadsheet %q has no sheets", sourcePath)
	}

	rows, err := source.GetRows(w.sheet)
	if err != nil {
		w.discard()
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "cannot read sheet %q: %v", w.sheet, err)
	}
	for _, row := range rows {
		if len(row) > w.maxColumn {
			w.maxColumn = len(row)
		}
	}

	if err := sink.InsertRows(w.sheet, 1, 1); err != nil {
		w.discard()
		return nil, sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot insert heading row: %v", err)
	}

	return w, nil
}

// SinkPath returns the file the metadata is written to.
func (w *Workbook) SinkPath() string {
	return w.sinkPath
}

// Items returns one item per row holding an accepted URI. Only the
// first URI of each row counts; Row is the 1-based source row number.
func (w *Workbook) Items(_ context.Context) ([]sacamantecas.Item, error) {
	rows, err := w.source.GetRows(w.sheet)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "cannot read sheet %q: %v", w.sheet, err)
	}

	var items []sacamantecas.Item
	for i, row := range rows {
		for _, cell := range row {
			if sacamantecas.IsAcceptedURI(cell) {
				items = append(items, sacamantecas.Item{URI: cell, Row: i + 1})
				break
			}
		}
	}
	return items, nil
}

// Write stores one item's metadata in the row it came from. New keys
// open new columns; keys seen in earlier items reuse theirs.
func (w *Workbook) Write(item sacamantecas.Item, rec *sacamantecas.Record) error {
	if rec == nil || rec.Len() == 0 {
		return nil
	}

	for _, pair := range rec.Pairs() {
		column, err := w.column(columnTitleMarker + pair.Key)
		if err != nil {
			return err
		}

		// The inserted heading row displaced every row by one.
		cell, err := excelize.CoordinatesToCellName(column, item.Row+1)
		if err != nil {
			return sacamantecas.Errorf(sacamantecas.EINTERNAL, "row %d: %v", item.Row, err)
		}
		if err := w.sink.SetCellValue(w.sheet, cell, pair.Value); err != nil {
			return sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot write cell %s: %v", cell, err)
		}
	}
	return nil
}

// column returns the column for title, creating and styling it when the
// title is new.
func (w *Workbook) column(title string) (int, error) {
	if column, ok := w.columns[title]; ok {
		return column, nil
	}

	column := w.maxColumn + 1

	cell, err := excelize.CoordinatesToCellName(column, 1)
	if err != nil {
		return 0, sacamantecas.Errorf(sacamantecas.EINTERNAL, "column %d: %v", column, err)
	}
	if err := w.sink.SetCellValue(w.sheet, cell, title); err != nil {
		return 0, sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot write heading %s: %v", cell, err)
	}

	style, err := w.style()
	if err != nil {
		return 0, err
	}
	if err := w.sink.SetCellStyle(w.sheet, cell, cell, style); err != nil {
		return 0, sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot style heading %s: %v", cell, err)
	}

	name, err := excelize.ColumnNumberToName(column)
	if err != nil {
		return 0, sacamantecas.Errorf(sacamantecas.EINTERNAL, "column %d: %v", column, err)
	}
	if err := w.sink.SetColWidth(w.sheet, name, name, columnWidth); err != nil {
		return 0, sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot size column %s: %v", name, err)
	}

	w.columns[title] = column
	w.maxColumn = column
	return column, nil
}

// style lazily creates the heading cell style shared by all metadata
// columns.
func (w *Workbook) style() (int, error) {
	if w.headingStyle != 0 {
		return w.headingStyle, nil
	}
	style, err := w.sink.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: headingFont},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headingFillColor}},
	})
	if err != nil {
		return 0, sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot create heading style: %v", err)
	}
	w.headingStyle = style
	return style, nil
}

// Close saves the sink workbook and releases both files.
func (w *Workbook) Close() error {
	saveErr := w.sink.Save()
	w.discard()
	if saveErr != nil {
		return sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot save sink %q: %v", w.sinkPath, saveErr)
	}
	return nil
}

func (w *Workbook) discard() {
	w.sink.Close()
	w.source.Close()
}
