package sheet

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Workbook is a parsed spreadsheet file. The file is read once; sheets are
// materialized to string grids on demand.
type Workbook struct {
	path string
	file *xlsx.File
}

// RawSheet is the cell grid of one worksheet. Rows may be ragged: trailing
// empty cells are not padded, so consumers must bounds-check column access.
type RawSheet struct {
	File string // base name of the workbook file
	Name string // worksheet name
	Rows [][]string
}

// Identifier returns the ledger identifier for this sheet, scoping the
// workbook filename by worksheet name.
func (s *RawSheet) Identifier() string {
	return s.File + "::" + s.Name
}

// Open parses the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	return &Workbook{path: path, file: f}, nil
}

// Path returns the path the workbook was opened from.
func (w *Workbook) Path() string { return w.path }

// SheetNames returns worksheet names in file order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.file.Sheets))
	for i, s := range w.file.Sheets {
		names[i] = s.Name
	}
	return names
}

// Has reports whether the workbook contains a worksheet with the given name.
func (w *Workbook) Has(name string) bool {
	_, ok := w.file.Sheet[name]
	return ok
}

// Sheet returns the named worksheet as a string grid.
func (w *Workbook) Sheet(name string) (*RawSheet, error) {
	sh, ok := w.file.Sheet[name]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found", name)
	}
	return w.materialize(sh), nil
}

// SheetAt returns the worksheet at the given index as a string grid.
func (w *Workbook) SheetAt(i int) (*RawSheet, error) {
	if i < 0 || i >= len(w.file.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", i, len(w.file.Sheets))
	}
	return w.materialize(w.file.Sheets[i]), nil
}

func (w *Workbook) materialize(sh *xlsx.Sheet) *RawSheet {
	rows := make([][]string, 0, len(sh.Rows))
	for _, row := range sh.Rows {
		rows = append(rows, rowToStrings(row))
	}
	return &RawSheet{
		File: filepath.Base(w.path),
		Name: sh.Name,
		Rows: rows,
	}
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
