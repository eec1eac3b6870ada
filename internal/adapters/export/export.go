// Package export writes filtered records as downloadable files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet that holds the rows in an XLSX export.
const SheetName = "filtered_salaries"

// ParseFormat maps a name such as "csv" or "XLSX" to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name for the format.
func (f Format) Filename() string {
	return "filtered_salaries." + string(f)
}

// Write encodes ds in format f and returns the number of data rows written.
func Write(w io.Writer, f Format, ds *dataset.Dataset) (int, error) {
	switch f {
	case FormatCSV:
		return WriteCSV(w, ds)
	case FormatXLSX:
		return WriteXLSX(w, ds)
	}
	return 0, fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}

// WriteCSV writes the raw columns with a header, one row per record in
// dataset order.
func WriteCSV(w io.Writer, ds *dataset.Dataset) (int, error) {
	cw := csv.NewWriter(w)
	header := make([]string, len(model.RawColumns))
	for i, c := range model.RawColumns {
		header[i] = string(c)
	}
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(model.RawColumns))
	n := 0
	for _, r := range ds.All() {
		for i, c := range model.RawColumns {
			row[i], _ = r.Value(c)
		}
		if err := cw.Write(row); err != nil {
			return n, fmt.Errorf("write csv row %d: %w", n+1, err)
		}
		n++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flush csv: %w", err)
	}
	return n, nil
}

// WriteXLSX writes the same table as WriteCSV into a single-sheet workbook.
// Numeric columns are stored as numbers.
func WriteXLSX(w io.Writer, ds *dataset.Dataset) (n int, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return 0, fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]any, len(model.RawColumns))
	for i, c := range model.RawColumns {
		header[i] = string(c)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, fmt.Errorf("write xlsx header: %w", err)
	}

	for _, r := range ds.All() {
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return n, err
		}
		if err := sw.SetRow(cell, xlsxRow(&r)); err != nil {
			return n, fmt.Errorf("write xlsx row %d: %w", n+1, err)
		}
		n++
	}
	if err := sw.Flush(); err != nil {
		return n, fmt.Errorf("flush xlsx: %w", err)
	}
	if err := f.Write(w); err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}

func xlsxRow(r *model.Record) []any {
	row := make([]any, len(model.RawColumns))
	for i, c := range model.RawColumns {
		if c == model.ColSalaryInUSD {
			row[i] = r.SalaryInUSD
			continue
		}
		if v, ok := r.Number(c); ok {
			row[i] = int(v)
			continue
		}
		row[i], _ = r.Value(c)
	}
	return row
}
