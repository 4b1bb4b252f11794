package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"csvrag/internal/domain"
)

// CSVLoader reads a delimited table with a header row. One column holds
// primary text; all other columns become per-record metadata.
type CSVLoader struct {
	textColumn string
	comma      rune
}

func NewCSVLoader(textColumn string, comma rune) *CSVLoader {
	if textColumn == "" {
		textColumn = "text"
	}
	if comma == 0 {
		comma = ','
	}
	return &CSVLoader{textColumn: textColumn, comma: comma}
}

// Load reads all rows eagerly. Record identity is the zero-based data
// row position. A header without the text column fails with a SchemaError.
func (l *CSVLoader) Load(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = l.comma

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	textIdx := -1
	for i, name := range header {
		if name == l.textColumn {
			textIdx = i
			break
		}
	}
	if textIdx < 0 {
		return nil, &domain.SchemaError{Column: l.textColumn, Path: path}
	}

	var records []domain.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		meta := make(domain.Metadata, len(header)-1)
		for i, name := range header {
			if i == textIdx {
				continue
			}
			meta[name] = row[i]
		}
		records = append(records, domain.Record{
			Index: len(records),
			Text:  row[textIdx],
			Meta:  meta,
		})
	}
	return records, nil
}
