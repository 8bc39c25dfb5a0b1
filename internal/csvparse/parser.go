package csvparse

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Result holds a parsed view of a CSV file. Rows is bounded by the caller's
// max; TotalRows always reflects the full data row count.
type Result struct {
	Headers   []string
	Rows      []map[string]string
	TotalRows int
}

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// Parse reads the CSV stream, detecting the delimiter from the first line, and
// returns the header row plus at most maxRows data rows.
func Parse(r io.Reader, maxRows int) (*Result, error) {
	if maxRows <= 0 {
		maxRows = 100
	}

	br := bufio.NewReader(r)
	delim, err := sniffDelimiter(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &Result{Headers: []string{}, Rows: []map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	result := &Result{
		Headers: header,
		Rows:    make([]map[string]string, 0, maxRows),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}

		result.TotalRows++
		if len(result.Rows) >= maxRows {
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// sniffDelimiter peeks at the first line and picks the candidate delimiter
// that occurs most often, defaulting to a comma.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	sample, err := br.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, fmt.Errorf("read csv sample: %w", err)
	}

	line := string(sample)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	best := ','
	bestCount := 0
	for _, d := range candidateDelimiters {
		if count := strings.Count(line, string(d)); count > bestCount {
			best = d
			bestCount = count
		}
	}
	return best, nil
}
