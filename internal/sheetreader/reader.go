// =============================================================================
// Spreadsheet to JSON Converter - Sheet Reader Module
// =============================================================================
//
// This module supplies the ordered row sequence the converter consumes. Two
// sources are implemented behind one streaming surface:
//   - CSV via encoding/csv
//   - XLSX/XLSM via excelize (first sheet)
//
// Every cell carries a text/non-text flag: CSV cells are always text, XLSX
// cells keep the workbook's cell type. The converter's buyer-identity gate
// depends on that distinction.
//
// USAGE:
//   src, err := sheetreader.Open(file, sheetreader.DetectType(name))
//   if err != nil { ... }
//   defer src.Close()
//
//   for src.Next() {
//       row := src.Row()
//       // Process the row...
//   }
//   if err := src.Err(); err != nil { ... }
//
// =============================================================================

package sheetreader

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/types"
)

// =============================================================================
// SOURCE INTERFACE
// =============================================================================

// Source is an ordered sequence of spreadsheet rows.
type Source interface {
	// Next advances to the next row. It returns false when the sequence is
	// exhausted or a read error occurred.
	Next() bool

	// Row returns the current row.
	Row() types.Row

	// Err returns the first read error, if any.
	Err() error

	// Close releases the underlying resources.
	Close() error
}

// =============================================================================
// FILE TYPE DISPATCH
// =============================================================================

// DetectType derives the input file type from a file name: the extension,
// lowercased, without the leading dot.
func DetectType(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Open builds a row source for the given file type.
func Open(r io.Reader, fileType string) (Source, error) {
	switch fileType {
	case "csv":
		return NewCSV(r), nil
	case "xlsx", "xlsm":
		return NewXLSX(r)
	case "xls":
		return nil, fmt.Errorf("legacy xls workbooks are not supported; convert to xlsx or csv")
	case "":
		return nil, fmt.Errorf("no input file type given")
	default:
		return nil, fmt.Errorf("unsupported input file type %q", fileType)
	}
}

// =============================================================================
// CSV SOURCE
// =============================================================================

type csvSource struct {
	reader *csv.Reader
	row    types.Row
	err    error
}

// NewCSV creates a row source reading CSV from r. Rows may have a variable
// number of fields; the converter enforces the minimum width itself.
func NewCSV(r io.Reader) Source {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return &csvSource{reader: reader}
}

func (s *csvSource) Next() bool {
	if s.err != nil {
		return false
	}

	record, err := s.reader.Read()
	if err == io.EOF {
		return false
	}
	if err != nil {
		s.err = fmt.Errorf("failed to read CSV row: %w", err)
		return false
	}

	row := make(types.Row, len(record))
	for i, v := range record {
		row[i] = types.TextCell(v)
	}
	s.row = row

	return true
}

func (s *csvSource) Row() types.Row { return s.row }

func (s *csvSource) Err() error { return s.err }

func (s *csvSource) Close() error { return nil }

// =============================================================================
// XLSX SOURCE
// =============================================================================

type xlsxSource struct {
	file     *excelize.File
	rows     *excelize.Rows
	sheet    string
	rowIndex int
	row      types.Row
	err      error
}

// NewXLSX creates a row source reading the first sheet of an OOXML workbook.
func NewXLSX(r io.Reader) (Source, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return &xlsxSource{file: f, rows: rows, sheet: sheet}, nil
}

func (s *xlsxSource) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.rows.Next() {
		s.err = s.rows.Error()
		return false
	}

	s.rowIndex++

	cols, err := s.rows.Columns()
	if err != nil {
		s.err = fmt.Errorf("failed to read row %d: %w", s.rowIndex, err)
		return false
	}

	row := make(types.Row, len(cols))
	for i, v := range cols {
		row[i] = types.Cell{Value: v, Text: s.cellIsText(i)}
	}
	s.row = row

	return true
}

// cellIsText reports whether the cell at the given 0-indexed column of the
// current row is string-typed. Empty cells count as text: they carry no
// value either way, and the sentinel check treats them like empty strings.
func (s *xlsxSource) cellIsText(col int) bool {
	axis, err := excelize.CoordinatesToCellName(col+1, s.rowIndex)
	if err != nil {
		return true
	}

	cellType, err := s.file.GetCellType(s.sheet, axis)
	if err != nil {
		return true
	}

	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeBool, excelize.CellTypeDate:
		return false
	default:
		return true
	}
}

func (s *xlsxSource) Row() types.Row { return s.row }

func (s *xlsxSource) Err() error { return s.err }

func (s *xlsxSource) Close() error {
	if err := s.rows.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
