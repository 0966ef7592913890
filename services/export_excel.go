package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"dynamicfieldadmin/valuelist"
)

// ValuesExport is the content of a possible-values workbook.
type ValuesExport struct {
	FieldName    string
	Label        string
	DefaultValue string
	Values       []valuelist.Value
}

// GeneratePossibleValuesExcel writes the possible values of a dynamic field
// to an xlsx workbook. Row 1 holds the Key/Value header so the file can be
// imported again unchanged.
func GeneratePossibleValuesExcel(data ValuesExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet names are limited to 31 characters.
	sheetName := data.FieldName
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Values"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	if err := f.SetColWidth(sheetName, "A", "A", 30); err != nil {
		return nil, fmt.Errorf("set col width A: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "B", 50); err != nil {
		return nil, fmt.Errorf("set col width B: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	rowStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create row style: %w", err)
	}

	// The default value is highlighted.
	defaultStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create default style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "Key")
	f.SetCellValue(sheetName, "B1", "Value")
	f.SetCellStyle(sheetName, "A1", "B1", headerStyle)

	row := 2
	for _, v := range data.Values {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(v.Key))
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(v.Label))

		style := rowStyle
		if data.DefaultValue != "" && v.Key == data.DefaultValue {
			style = defaultStyle
		}
		f.SetCellStyle(sheetName, "A"+rowStr, "B"+rowStr, style)
		row++
	}

	if data.Label != "" {
		f.SetDocProps(&excelize.DocProperties{Title: data.Label})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// unsanitizeExcelCell reverses sanitizeExcelCell on import.
func unsanitizeExcelCell(s string) string {
	if len(s) < 2 || s[0] != '\'' {
		return s
	}
	switch s[1] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return s[1:]
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
