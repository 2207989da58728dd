// Package importer loads financial facts and stock snapshots from CSV or
// XLSX exports. The importer is the canonicalisation boundary: metric and
// marketplace values are validated here, and input that does not resolve
// to a known metric or a usable marketplace is quarantined with a reason
// instead of entering the fact store.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// record is one raw row plus its 1-based line number in the source file.
type record struct {
	line   int
	fields []string
}

// readGrid reads every row of a semicolon-delimited CSV or of the first
// sheet of an XLSX file, headers included.
func readGrid(path string) ([]record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	var out []record
	line := 0
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		line++
		out = append(out, record{line: line, fields: fields})
	}
	return out, nil
}

func readXLSX(path string) ([]record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	out := make([]record, 0, len(rows))
	for i, fields := range rows {
		out = append(out, record{line: i + 1, fields: fields})
	}
	return out, nil
}

func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// blankValue reports the placeholder spellings exports use for "no data".
func blankValue(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "-"
}

// parseMoney handles "$ 1,234.50" style cells: currency sign and thousands
// separators stripped.
func parseMoney(s string) (float64, error) {
	cleaned := strings.NewReplacer(" ", "", "$", "", ",", "").Replace(s)
	return strconv.ParseFloat(cleaned, 64)
}

// parseDecimal handles locale exports with a comma decimal separator.
func parseDecimal(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	return strconv.ParseFloat(cleaned, 64)
}

// parseBandMonth parses the month band spelling ("Jan-24").
func parseBandMonth(s string) (time.Time, error) {
	t, err := time.Parse("Jan-06", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable month %q", s)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}
