package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/services"
)

// sanitizeFilename replaces characters that are unsafe in download names.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// HandleValuesExportExcel downloads the possible values of a field as xlsx.
// Route: GET /admin/dynamicfields/{id}/values/export
func HandleValuesExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing dynamic field ID")
		}

		record, err := app.FindRecordById(collections.DynamicFields, id)
		if err != nil {
			log.Printf("values_export: dynamic field not found %s: %v", id, err)
			return e.String(http.StatusNotFound, "Dynamic field not found")
		}

		name := record.GetString("name")
		xlsxBytes, err := services.GeneratePossibleValuesExcel(services.ValuesExport{
			FieldName:    name,
			Label:        record.GetString("label"),
			DefaultValue: record.GetString("default_value"),
			Values:       possibleValues(record),
		})
		if err != nil {
			log.Printf("values_export: generate failed: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("%s_PossibleValues.xlsx", sanitizeFilename(name))
		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
