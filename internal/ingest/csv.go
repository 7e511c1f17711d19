package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// parseCSV reads a header-row CSV into one map per data row, keyed by the
// lowercased header names. It handles quoted fields, doubled quotes inside
// quoted fields, and newlines inside quotes. Malformed lines are parsed
// best-effort: short rows leave missing columns empty, long rows drop the
// extra fields.
func parseCSV(r io.Reader) ([]map[string]string, error) {
	br := bufio.NewReader(r)

	var (
		records [][]string
		fields  []string
		field   strings.Builder
		inQuote bool
		started bool
	)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	endRecord := func() {
		if !started {
			return
		}
		endField()
		records = append(records, fields)
		fields = nil
		started = false
	}

	for {
		r, _, err := br.ReadRune()
		if err == io.EOF {
			endRecord()
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		if inQuote {
			if r == '"' {
				next, _, err := br.ReadRune()
				if err == nil && next == '"' {
					// Doubled quote: literal "
					field.WriteRune('"')
					continue
				}
				if err == nil {
					_ = br.UnreadRune()
				}
				inQuote = false
				continue
			}
			field.WriteRune(r)
			continue
		}

		switch r {
		case '"':
			inQuote = true
			started = true
		case ',':
			started = true
			endField()
		case '\n':
			endRecord()
		case '\r':
			// swallowed; \r\n ends the record at \n
		default:
			started = true
			field.WriteRune(r)
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv input has no header row")
	}

	header := records[0]
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
