package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/collections"
)

// HandleDynamicFieldDelete removes a field. HTMX requests get an empty body
// so the table row is swapped out.
// Route: DELETE /admin/dynamicfields/{id}
func HandleDynamicFieldDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing dynamic field ID")
		}

		record, err := app.FindRecordById(collections.DynamicFields, id)
		if err != nil {
			log.Printf("dynamic_field_delete: could not find dynamic field %s: %v", id, err)
			return ErrorToast(e, http.StatusNotFound, "Dynamic field not found")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("dynamic_field_delete: failed to delete dynamic field %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		log.Printf("dynamic_field_delete: deleted dynamic field %s\n", id)

		SetToast(e, "success", "Dynamic field deleted successfully")

		if isHTMX(e.Request) {
			return e.String(http.StatusOK, "")
		}
		return e.Redirect(http.StatusFound, listPath)
	}
}
