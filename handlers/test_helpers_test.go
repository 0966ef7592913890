package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newFormRequest builds an urlencoded POST request.
func newFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// validFieldForm is a complete, valid dynamic field submission.
func validFieldForm(name string) url.Values {
	return url.Values{
		"Name":               {name},
		"Label":              {"Region"},
		"FieldOrder":         {"2"},
		"ValidID":            {"1"},
		"ObjectType":         {"Ticket"},
		"ValueCounter":       {"2"},
		"Key_1":              {"eu"},
		"Value_1":            {"Europe"},
		"Key_2":              {"us"},
		"Value_2":            {"United States"},
		"DefaultValue":       {"eu"},
		"DBMS":               {"mysql"},
		"DSN":                {"DBI:mysql:database=crm"},
		"DBTable":            {"regions"},
		"DatabaseFieldKey":   {"code"},
		"DatabaseFieldValue": {"name"},
		"CacheTTL":           {"60"},
		"MaxQueryResult":     {"100"},
	}
}
