package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is one data row of a CSV file addressed by header name.
type Record struct {
	Line   int
	fields []string
	index  map[string]int
}

func (r Record) Get(column string) string {
	i, ok := r.index[normalizeHeader(column)]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

func (r Record) Float(column string) (float64, error) {
	raw := strings.TrimSpace(r.Get(column))
	if raw == "" {
		return 0, fmt.Errorf("line %d: %s is empty", r.Line, column)
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s=%q: %w", r.Line, column, raw, err)
	}
	return v, nil
}

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// Read parses a headered CSV stream. Header names are matched
// case-insensitively with surrounding whitespace and a UTF-8 BOM ignored;
// column order is free and unknown columns are kept but unused. Field values
// are returned verbatim.
func Read(r io.Reader, required []string) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	for _, col := range required {
		if _, ok := index[normalizeHeader(col)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var out []Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(fields) {
			continue
		}
		line, _ := cr.FieldPos(0)
		out = append(out, Record{Line: line, fields: fields, index: index})
	}
	return out, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
