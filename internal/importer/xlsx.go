package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads the first sheet of an Excel workbook.
type XLSXParser struct{}

// Format returns the handled extension.
func (p *XLSXParser) Format() string { return ".xlsx" }

// Parse reads the first sheet. Blank rows are skipped and rows shorter than
// the header, which excelize returns without trailing empty cells, are
// padded.
func (p *XLSXParser) Parse(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	var t *Table
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if t == nil {
			t = &Table{Header: row}
			continue
		}
		for len(row) < len(t.Header) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	if t == nil {
		return nil, ErrEmptyFile
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
