package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dynamicfieldadmin/collections"
	"dynamicfieldadmin/testhelpers"
	"dynamicfieldadmin/valuelist"
)

func TestHandleDynamicFieldList_ShowsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestDynamicField(t, app, "Region", []valuelist.Value{{Key: "a", Label: "A"}})
	testhelpers.CreateTestDynamicField(t, app, "Country", nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/dynamicfields", nil)
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"<!doctype html>", "Region", "Country", `class="Navigation"`, "/values/export")
}

func TestHandleDynamicFieldList_HTMXPartial(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dynamicfields", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "No dynamic fields defined.")
	testhelpers.AssertHTMLNotContains(t, body, "<!doctype html>")
}

func TestHandleDynamicFieldCreate_RendersForm(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dynamicfields/create", nil)
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldCreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`id="AddValue"`,
		`id="ValueCounter"`,
		`value="0"`,
		`class="ValueTemplate Hidden"`,
		`data-modules="Agent.Admin.DynamicFieldRemoteDB"`,
	)
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "validationInit") {
		t.Errorf("expected validationInit trigger, got %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestHandleDynamicFieldSave_ValidData(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newFormRequest("/admin/dynamicfields", validFieldForm("Region"))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldSave(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/admin/dynamicfields")

	records, err := app.FindRecordsByFilter(collections.DynamicFields, "name = {:name}", "", 1, 0,
		map[string]any{"name": "Region"})
	if err != nil || len(records) != 1 {
		t.Fatalf("expected dynamic field to be created, err=%v", err)
	}
	values := possibleValues(records[0])
	if len(values) != 2 || values[0] != (valuelist.Value{Key: "eu", Label: "Europe"}) {
		t.Errorf("unexpected possible values: %+v", values)
	}
	if records[0].GetString("default_value") != "eu" {
		t.Errorf("default_value = %q", records[0].GetString("default_value"))
	}
}

func TestHandleDynamicFieldSave_SkipsTombstones(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := validFieldForm("Region")
	form.Set("ValueCounter", "3")
	form.Set("Key_2", "")
	form.Del("Value_2")
	form.Set("Key_3", "apac")
	form.Set("Value_3", "Asia Pacific")

	req := newFormRequest("/admin/dynamicfields", form)
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldSave(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}

	records, _ := app.FindRecordsByFilter(collections.DynamicFields, "name = {:name}", "", 1, 0,
		map[string]any{"name": "Region"})
	values := possibleValues(records[0])
	if len(values) != 2 || values[1].Key != "apac" {
		t.Errorf("unexpected possible values: %+v", values)
	}
}

func TestHandleDynamicFieldSave_DuplicateName(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestDynamicField(t, app, "Region", nil)

	req := newFormRequest("/admin/dynamicfields", validFieldForm("Region"))
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldSave(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected form re-render with status 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "A dynamic field with this name already exists.")

	count, _ := app.CountRecords(collections.DynamicFields)
	if count != 1 {
		t.Errorf("expected 1 record, got %d", count)
	}
}

func TestHandleDynamicFieldSave_KeepsRowIndexesOnError(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := validFieldForm("Region")
	form.Set("ValueCounter", "4")
	form.Set("Key_3", "")
	form.Set("Key_4", "eu")
	form.Set("Value_4", "Duplicate")

	req := newFormRequest("/admin/dynamicfields", form)
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldSave(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"This key is already used.",
		`id="Key_4"`,
		`id="Key_3" name="Key_3" value=""`,
		`id="ValueCounter" name="ValueCounter" value="4"`,
	)
}

func TestHandleDynamicFieldEdit_RendersStoredValues(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	field := testhelpers.CreateTestDynamicField(t, app, "Region", []valuelist.Value{
		{Key: "eu", Label: "Europe"},
		{Key: "us", Label: "United States"},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/dynamicfields/"+field.Id+"/edit", nil)
	req.SetPathValue("id", field.Id)
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldEdit(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`id="Key_1" name="Key_1" value="eu"`,
		`id="Value_2" name="Value_2" value="United States"`,
		`id="ValueCounter" name="ValueCounter" value="2"`,
		`<option value="us">United States</option>`,
		"/admin/dynamicfields/"+field.Id+"/save",
	)
}

func TestHandleDynamicFieldEdit_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dynamicfields/missing/edit", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	_ = HandleDynamicFieldEdit(app)(newTestRequestEvent(app, req, rec))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestHandleDynamicFieldUpdate_KeepsOwnName(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	field := testhelpers.CreateTestDynamicField(t, app, "Region", nil)

	form := validFieldForm("Region")
	form.Set("Label", "Sales region")
	req := newFormRequest("/admin/dynamicfields/"+field.Id+"/save", form)
	req.SetPathValue("id", field.Id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/admin/dynamicfields")

	updated, err := app.FindRecordById(collections.DynamicFields, field.Id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.GetString("label") != "Sales region" {
		t.Errorf("label = %q", updated.GetString("label"))
	}
	if len(possibleValues(updated)) != 2 {
		t.Errorf("expected 2 possible values after update")
	}
}

func TestHandleDynamicFieldUpdate_NameOfOtherField(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestDynamicField(t, app, "Country", nil)
	field := testhelpers.CreateTestDynamicField(t, app, "Region", nil)

	req := newFormRequest("/admin/dynamicfields/"+field.Id+"/save", validFieldForm("Country"))
	req.SetPathValue("id", field.Id)
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	testhelpers.AssertHTMLContains(t, rec.Body.String(), "A dynamic field with this name already exists.")
}

func TestHandleDynamicFieldDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	field := testhelpers.CreateTestDynamicField(t, app, "Region", nil)

	req := httptest.NewRequest(http.MethodDelete, "/admin/dynamicfields/"+field.Id, nil)
	req.SetPathValue("id", field.Id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleDynamicFieldDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("expected empty 200, got %d %q", rec.Code, rec.Body.String())
	}
	if _, err := app.FindRecordById(collections.DynamicFields, field.Id); err == nil {
		t.Error("expected dynamic field to be deleted")
	}
}

func TestHandleDynamicFieldDelete_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodDelete, "/admin/dynamicfields/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	_ = HandleDynamicFieldDelete(app)(newTestRequestEvent(app, req, rec))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("expected HX-Reswap none on error")
	}
}
