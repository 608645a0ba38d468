package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CSVParser handles CSV files. The first row becomes the table header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]*html.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headRow := element(atom.Tr)
	for _, h := range records[0] {
		headRow.AppendChild(element(atom.Th, text(h)))
	}

	body := element(atom.Tbody)
	for _, row := range records[1:] {
		tr := element(atom.Tr)
		for _, cell := range row {
			tr.AppendChild(element(atom.Td, text(cell)))
		}
		body.AppendChild(tr)
	}

	return []*html.Node{element(atom.Table, element(atom.Thead, headRow), body)}, nil
}
