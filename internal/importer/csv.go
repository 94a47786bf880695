package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads comma-separated bank exports. Input that is not valid
// UTF-8 is decoded as Windows-1252. Header cells keep their whitespace since
// mappings identify accounts by exact header text.
type CSVParser struct{}

// Format returns the handled extension.
func (p *CSVParser) Format() string { return ".csv" }

// Parse reads the whole export. Rows may differ in length from the header;
// the translator reports that per row.
func (p *CSVParser) Parse(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}
