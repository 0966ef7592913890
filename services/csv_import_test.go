package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"dynamicfieldadmin/valuelist"
)

func TestParseCSV_Valid(t *testing.T) {
	input := "Key,Value\neu,Europe\nus,United States\n"
	headers, rows, err := parseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(headers) != 2 {
		t.Errorf("expected 2 headers, got %d", len(headers))
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(rows))
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, _, err := parseCSV(strings.NewReader("Key,Value\n"))
	if err == nil {
		t.Fatal("expected error for header-only file")
	}
	if !strings.Contains(err.Error(), "at least one data row") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseCSV_Empty(t *testing.T) {
	if _, _, err := parseCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestMapValueHeaders(t *testing.T) {
	tests := []struct {
		name      string
		headers   []string
		wantKey   int
		wantValue int
	}{
		{"exact", []string{"Key", "Value"}, 0, 1},
		{"label alias", []string{"Label", "Key"}, 1, 0},
		{"case and spaces", []string{" key ", "VALUE"}, 0, 1},
		{"byte order mark", []string{"\ufeffKey", "Value"}, 0, 1},
		{"extra columns", []string{"Comment", "Key", "Notes", "Value"}, 1, 3},
		{"missing value", []string{"Key"}, 0, -1},
		{"missing key", []string{"Value"}, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, v := mapValueHeaders(tt.headers)
			if k != tt.wantKey || v != tt.wantValue {
				t.Errorf("mapValueHeaders(%v) = (%d, %d), want (%d, %d)", tt.headers, k, v, tt.wantKey, tt.wantValue)
			}
		})
	}
}

func TestParsePossibleValuesFile_CSV(t *testing.T) {
	input := "Key,Value\neu,Europe\n,orphan\nus,\neu,again\n,\n"
	got, err := ParsePossibleValuesFile("values.CSV", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePossibleValuesFile() error = %v", err)
	}

	want := []valuelist.Value{{Key: "eu", Label: "Europe"}, {Key: "us", Label: "us"}}
	if len(got.Values) != len(want) {
		t.Fatalf("expected %d values, got %+v", len(want), got.Values)
	}
	for i := range want {
		if got.Values[i] != want[i] {
			t.Errorf("value %d = %+v, want %+v", i, got.Values[i], want[i])
		}
	}

	if len(got.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %+v", got.Errors)
	}
	if got.Errors[0].Row != 3 || got.Errors[0].Message != "Key is required" {
		t.Errorf("unexpected first error: %+v", got.Errors[0])
	}
	if got.Errors[1].Row != 5 || !strings.Contains(got.Errors[1].Message, "Duplicate") {
		t.Errorf("unexpected second error: %+v", got.Errors[1])
	}
}

func TestParsePossibleValuesFile_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "Key")
	f.SetCellValue(sheet, "B1", "Label")
	f.SetCellValue(sheet, "A2", "1")
	f.SetCellValue(sheet, "B2", "One")
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	f.Close()

	got, err := ParsePossibleValuesFile("values.xlsx", &buf)
	if err != nil {
		t.Fatalf("ParsePossibleValuesFile() error = %v", err)
	}
	if len(got.Values) != 1 || got.Values[0] != (valuelist.Value{Key: "1", Label: "One"}) {
		t.Errorf("unexpected values: %+v", got.Values)
	}
}

func TestParsePossibleValuesFile_Unsupported(t *testing.T) {
	_, err := ParsePossibleValuesFile("values.txt", strings.NewReader("Key,Value\na,b\n"))
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestParsePossibleValuesFile_MissingKeyColumn(t *testing.T) {
	_, err := ParsePossibleValuesFile("values.csv", strings.NewReader("Name,Value\na,b\n"))
	if err == nil || !strings.Contains(err.Error(), "Key column") {
		t.Errorf("expected missing Key column error, got %v", err)
	}
}
