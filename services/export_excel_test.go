package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"dynamicfieldadmin/valuelist"
)

// openWorkbook opens generated xlsx bytes and closes the file after the test.
func openWorkbook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestGeneratePossibleValuesExcel_Basic(t *testing.T) {
	data := ValuesExport{
		FieldName:    "CustomerRegion",
		Label:        "Customer region",
		DefaultValue: "eu",
		Values: []valuelist.Value{
			{Key: "eu", Label: "Europe"},
			{Key: "us", Label: "United States"},
		},
	}

	result, err := GeneratePossibleValuesExcel(data)
	if err != nil {
		t.Fatalf("GeneratePossibleValuesExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePossibleValuesExcel() returned empty bytes")
	}

	f := openWorkbook(t, result)

	sheets := f.GetSheetList()
	if len(sheets) == 0 || sheets[0] != "CustomerRegion" {
		t.Fatalf("expected sheet name 'CustomerRegion', got %v", sheets)
	}

	for cell, want := range map[string]string{
		"A1": "Key",
		"B1": "Value",
		"A2": "eu",
		"B2": "Europe",
		"A3": "us",
		"B3": "United States",
	} {
		got, _ := f.GetCellValue(sheets[0], cell)
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestGeneratePossibleValuesExcel_LongName(t *testing.T) {
	result, err := GeneratePossibleValuesExcel(ValuesExport{
		FieldName: "ThisDynamicFieldNameIsLongerThanThirtyOneCharacters",
	})
	if err != nil {
		t.Fatalf("GeneratePossibleValuesExcel() error = %v", err)
	}

	f := openWorkbook(t, result)

	if name := f.GetSheetList()[0]; len(name) > 31 {
		t.Errorf("sheet name %q exceeds 31 characters", name)
	}
}

func TestGeneratePossibleValuesExcel_EmptyName(t *testing.T) {
	result, err := GeneratePossibleValuesExcel(ValuesExport{})
	if err != nil {
		t.Fatalf("GeneratePossibleValuesExcel() error = %v", err)
	}

	f := openWorkbook(t, result)

	if name := f.GetSheetList()[0]; name != "Values" {
		t.Errorf("expected sheet name 'Values', got %q", name)
	}
}

func TestGeneratePossibleValuesExcel_RoundTrip(t *testing.T) {
	values := []valuelist.Value{
		{Key: "=SUM(A1)", Label: "formula"},
		{Key: "plain", Label: "-negative"},
	}
	result, err := GeneratePossibleValuesExcel(ValuesExport{FieldName: "RoundTrip", Values: values})
	if err != nil {
		t.Fatalf("GeneratePossibleValuesExcel() error = %v", err)
	}

	got, err := ParsePossibleValuesFile("values.xlsx", bytes.NewReader(result))
	if err != nil {
		t.Fatalf("ParsePossibleValuesFile() error = %v", err)
	}
	if len(got.Values) != len(values) {
		t.Fatalf("expected %d values, got %d", len(values), len(got.Values))
	}
	for i := range values {
		if got.Values[i] != values[i] {
			t.Errorf("value %d = %+v, want %+v", i, got.Values[i], values[i])
		}
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"normal", "normal"},
		{"=cmd", "'=cmd"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@sum", "'@sum"},
		{"\tx", "'\tx"},
		{"|pipe", "'|pipe"},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.input); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if got := unsanitizeExcelCell(sanitizeExcelCell(tt.input)); got != tt.input {
			t.Errorf("unsanitizeExcelCell(sanitizeExcelCell(%q)) = %q", tt.input, got)
		}
	}
}

func TestThinBorders(t *testing.T) {
	borders := thinBorders()
	if len(borders) != 4 {
		t.Fatalf("expected 4 borders, got %d", len(borders))
	}
	for _, b := range borders {
		if b.Style != 1 {
			t.Errorf("border %s style = %d, want 1", b.Type, b.Style)
		}
	}
}
