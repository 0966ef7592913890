package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"dynamicfieldadmin/valuelist"
)

// ErrUnsupportedFile is returned for uploads that are neither CSV nor xlsx.
var ErrUnsupportedFile = errors.New("only .csv and .xlsx files are supported")

// ImportError is a problem on one row of an uploaded values file.
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult holds the usable values of an upload and the rows that were
// skipped.
type ImportResult struct {
	Values []valuelist.Value
	Errors []ImportError
}

// ParsePossibleValuesFile reads possible values from a CSV or xlsx upload.
// The first row must name a Key column and a Value (or Label) column; other
// columns are ignored. Rows without a key are reported and skipped, an empty
// value falls back to the key.
func ParsePossibleValuesFile(filename string, file io.Reader) (ImportResult, error) {
	var (
		headers []string
		rows    [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		headers, rows, err = parseCSV(file)
	case ".xlsx":
		headers, rows, err = parseExcel(file)
	default:
		return ImportResult{}, ErrUnsupportedFile
	}
	if err != nil {
		return ImportResult{}, err
	}

	keyCol, valueCol := mapValueHeaders(headers)
	if keyCol < 0 {
		return ImportResult{}, fmt.Errorf("missing Key column")
	}

	var result ImportResult
	seen := make(map[string]bool)
	for i, row := range rows {
		rowNum := i + 2 // 1-based, after the header
		key := strings.TrimSpace(unsanitizeExcelCell(cell(row, keyCol)))
		label := strings.TrimSpace(unsanitizeExcelCell(cell(row, valueCol)))
		if key == "" && label == "" {
			continue
		}
		if key == "" {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Message: "Key is required"})
			continue
		}
		if seen[key] {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Message: fmt.Sprintf("Duplicate key %q", key)})
			continue
		}
		seen[key] = true
		if label == "" {
			label = key
		}
		result.Values = append(result.Values, valuelist.Value{Key: key, Label: label})
	}
	return result, nil
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapValueHeaders finds the key and value columns, case-insensitively.
// Either index is -1 when the column is missing.
func mapValueHeaders(headers []string) (keyCol, valueCol int) {
	keyCol, valueCol = -1, -1
	for i, h := range headers {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "key":
			if keyCol < 0 {
				keyCol = i
			}
		case "value", "label":
			if valueCol < 0 {
				valueCol = i
			}
		}
	}
	return keyCol, valueCol
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
