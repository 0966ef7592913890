package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/services"
)

// HandleDynamicFieldEdit renders the form of a stored field.
// Route: GET /admin/dynamicfields/{id}/edit
func HandleDynamicFieldEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		record, err := app.FindRecordById(collections.DynamicFields, id)
		if err != nil {
			log.Printf("dynamic_field_edit: could not find dynamic field %s: %v", id, err)
			return ErrorToast(e, http.StatusNotFound, "Dynamic field not found")
		}
		return renderDynamicFieldForm(e, recordToFormData(record))
	}
}

// HandleDynamicFieldUpdate validates and stores changes to a field.
// Route: POST /admin/dynamicfields/{id}/save
func HandleDynamicFieldUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		record, err := app.FindRecordById(collections.DynamicFields, id)
		if err != nil {
			log.Printf("dynamic_field_update: could not find dynamic field %s: %v", id, err)
			return ErrorToast(e, http.StatusNotFound, "Dynamic field not found")
		}

		form, err := parseRequestForm(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		in, errs := services.ParseDynamicFieldForm(form)
		checkName(app, in.Name, id, errs)

		if len(errs) > 0 {
			SetToast(e, "warning", "Please fix the errors below")
			return renderDynamicFieldForm(e, inputToFormData(id, in, form, errs))
		}

		applyInput(record, in)
		if err := app.Save(record); err != nil {
			log.Printf("dynamic_field_update: could not save dynamic field %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "Dynamic field updated successfully")
		return redirectToList(e)
	}
}
