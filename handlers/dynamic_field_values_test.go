package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"dynamicfieldadmin/testhelpers"
	"dynamicfieldadmin/valuelist"
)

func decodeTrigger(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := rec.Header().Get("HX-Trigger")
	if raw == "" {
		return nil
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	return parsed
}

func TestHandleValueAdd_ReturnsNextRow(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newFormRequest("/admin/dynamicfields/values/add", url.Values{"ValueCounter": {"2"}})
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleValueAdd(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`class="ValueRow"`,
		`id="Key_3"`,
		`name="Key_3"`,
		`id="Value_3"`,
		`name="Value_3"`,
		`id="RemoveValue_3"`,
		`ValueRemove`,
		`Validate_Required`,
		`id="Key_3Error"`,
		`id="Value_3ServerError"`,
		`for="Key_3"`,
		`id="ValueCounter" name="ValueCounter" value="3" hx-swap-oob="true"`,
	)
	testhelpers.AssertHTMLNotContains(t, body, "ValueTemplate", `id="Key"`, `id="Key_1"`)

	if _, ok := decodeTrigger(t, rec)["validationInit"]; !ok {
		t.Error("expected validationInit trigger")
	}
}

func TestHandleValueAdd_EmptyCounter(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newFormRequest("/admin/dynamicfields/values/add", url.Values{})
	rec := httptest.NewRecorder()
	if err := HandleValueAdd(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `id="Key_1"`, `value="1" hx-swap-oob="true"`)
}

func TestHandleValueAdd_InvalidCounter(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newFormRequest("/admin/dynamicfields/values/add", url.Values{"ValueCounter": {"-3"}})
	rec := httptest.NewRecorder()
	_ = HandleValueAdd(app)(newTestRequestEvent(app, req, rec))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func removeForm() url.Values {
	return url.Values{
		"ValueCounter": {"3"},
		"Key_1":        {"eu"},
		"Value_1":      {"Europe"},
		"Key_2":        {""},
		"Value_2":      {""},
		"Key_3":        {"us"},
		"Value_3":      {"United States"},
		"DefaultValue": {"eu"},
	}
}

func TestHandleValueRemove_KeyedRow(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newFormRequest("/admin/dynamicfields/values/remove", removeForm())
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Trigger", "RemoveValue_1")
	rec := httptest.NewRecorder()
	if err := HandleValueRemove(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`hx-swap-oob="beforeend:#PossibleValues"`,
		`id="Key_1" name="Key_1"`,
		`hx-swap-oob="delete:#DefaultValue option[value=&#34;eu&#34;]"`,
	)
	testhelpers.AssertHTMLNotContains(t, body, "<select", "<option", "DeletedValue")

	trigger := decodeTrigger(t, rec)
	var redraw struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(trigger["redraw.InputField"], &redraw); err != nil {
		t.Fatalf("redraw.InputField payload: %v", err)
	}
	if len(redraw.IDs) != 1 || redraw.IDs[0] != valuelist.DefaultID {
		t.Errorf("unexpected redraw ids: %v", redraw.IDs)
	}
}

func TestHandleValueRemove_NeverOffersTypedKeys(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	// beta was typed into a row added after the page loaded, so the page's
	// dropdown only knows alpha.
	form := url.Values{
		"ValueCounter": {"2"},
		"Key_1":        {"alpha"},
		"Value_1":      {"Alpha"},
		"Key_2":        {"beta"},
		"Value_2":      {"Beta"},
		"DefaultValue": {""},
	}
	req := newFormRequest("/admin/dynamicfields/values/remove", form)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Trigger", "RemoveValue_1")
	rec := httptest.NewRecorder()
	if err := HandleValueRemove(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `delete:#DefaultValue option[value=&#34;alpha&#34;]`)
	testhelpers.AssertHTMLNotContains(t, body, "beta", `id="DefaultValue"`)
}

func TestDeleteOptionsOOB_EscapesKey(t *testing.T) {
	got := deleteOptionsOOB("DefaultValue", `a"b\c`)
	want := `<div hx-swap-oob="delete:#DefaultValue option[value=&#34;a\&#34;b\\c&#34;]"></div>`
	if got != want {
		t.Errorf("deleteOptionsOOB() = %s, want %s", got, want)
	}
}

func TestHandleValueAdd_CounterExhausted(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newFormRequest("/admin/dynamicfields/values/add",
		url.Values{"ValueCounter": {strconv.Itoa(valuelist.MaxCounter)}})
	rec := httptest.NewRecorder()
	_ = HandleValueAdd(app)(newTestRequestEvent(app, req, rec))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	testhelpers.AssertHTMLNotContains(t, rec.Body.String(), "Key_")
}

func TestHandleValueRemove_EmptyKeyLeavesDefault(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := removeForm()
	form.Set("control", "RemoveValue_2")
	req := newFormRequest("/admin/dynamicfields/values/remove", form)
	rec := httptest.NewRecorder()
	if err := HandleValueRemove(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `id="Key_2" name="Key_2"`)
	testhelpers.AssertHTMLNotContains(t, body, `id="DefaultValue"`)
	if _, ok := decodeTrigger(t, rec)["redraw.InputField"]; ok {
		t.Error("no redraw expected for an empty key")
	}
}

func TestHandleValueRemove_Ignored(t *testing.T) {
	tests := []struct {
		name    string
		control string
	}{
		{"malformed id", "RemoveValue"},
		{"no index", "RemoveValue_x"},
		{"unknown row", "RemoveValue_9"},
		{"missing control", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			req := newFormRequest("/admin/dynamicfields/values/remove", removeForm())
			if tt.control != "" {
				req.Header.Set("HX-Trigger", tt.control)
			}
			rec := httptest.NewRecorder()
			if err := HandleValueRemove(app)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusNoContent {
				t.Errorf("expected status 204, got %d", rec.Code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap none")
			}
		})
	}
}

func newUploadRequest(t *testing.T, form url.Values, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			mw.WriteField(k, v)
		}
	}
	fw, err := mw.CreateFormFile("ValuesFile", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/dynamicfields/values/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleValueImport_AppendsRows(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{
		"ValueCounter": {"2"},
		"Key_1":        {"eu"},
		"Value_1":      {"Europe"},
		"Key_2":        {""},
		"DefaultValue": {"eu"},
	}
	csv := "Key,Value\neu,Europe again\napac,Asia Pacific\nlatam,\n"
	req := newUploadRequest(t, form, "values.csv", []byte(csv))
	rec := httptest.NewRecorder()
	if err := HandleValueImport(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`id="PossibleValues"`,
		`id="Key_1" name="Key_1" value="eu"`,
		`id="Key_2" name="Key_2" value=""`,
		`id="Key_3" name="Key_3" value="apac"`,
		`id="Value_4" name="Value_4" value="latam"`,
		`id="ValueCounter" name="ValueCounter" value="4"`,
		`hx-swap-oob="true"`,
		`<option value="apac">Asia Pacific</option>`,
	)
	testhelpers.AssertHTMLNotContains(t, body, "Europe again")

	var toast map[string]string
	json.Unmarshal(decodeTrigger(t, rec)["showToast"], &toast)
	if toast["message"] != "Imported 2 value(s), skipped 1" {
		t.Errorf("unexpected toast: %v", toast)
	}
}

func TestHandleValueImport_Unsupported(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := newUploadRequest(t, url.Values{"ValueCounter": {"0"}}, "values.txt", []byte("Key,Value\na,b\n"))
	rec := httptest.NewRecorder()
	_ = HandleValueImport(app)(newTestRequestEvent(app, req, rec))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleValuesExportExcel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	field := testhelpers.CreateTestDynamicField(t, app, "Region", []valuelist.Value{
		{Key: "eu", Label: "Europe"},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/dynamicfields/"+field.Id+"/values/export", nil)
	req.SetPathValue("id", field.Id)
	rec := httptest.NewRecorder()
	if err := HandleValuesExportExcel(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if !strings.Contains(rec.Header().Get("Content-Disposition"), "Region_PossibleValues.xlsx") {
		t.Errorf("unexpected Content-Disposition: %q", rec.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not valid Excel: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Region", "A2"); v != "eu" {
		t.Errorf("A2 = %q, want %q", v, "eu")
	}
}

func TestHandleValuesExportExcel_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dynamicfields/missing/values/export", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	_ = HandleValuesExportExcel(app)(newTestRequestEvent(app, req, rec))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename(`a b/c\d:e"f`); got != "a-b-c-d-ef" {
		t.Errorf("sanitizeFilename() = %q", got)
	}
}
