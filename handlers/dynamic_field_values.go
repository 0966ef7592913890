package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"dynamicfieldadmin/services"
	"dynamicfieldadmin/templates"
	"dynamicfieldadmin/valuelist"
	"dynamicfieldadmin/widget"
)

// HandleValueAdd appends a value row. Only the counter is needed: the editor
// is rebuilt with it, the add control is clicked and the new row is returned
// together with the advanced counter as an out-of-band swap.
// Route: POST /admin/dynamicfields/values/add
func HandleValueAdd(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := parseRequestForm(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		counter, err := valuelist.ParseCounter(form)
		if err != nil {
			log.Printf("values_add: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "The value list is out of date, please reload the page.")
		}
		if counter >= valuelist.MaxCounter {
			return ErrorToast(e, http.StatusBadRequest, "No more values can be added.")
		}

		w, _, err := newValueEditor(e, templates.DynamicFieldFormData{Values: valuelist.New(counter)})
		if err != nil {
			log.Printf("values_add: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		doc := w.Document()

		if _, found := doc.Click(widget.AddID); !found {
			log.Printf("values_add: add control missing from the value editor")
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		insert := doc.ByID(templates.InsertID)
		var row *html.Node
		if insert != nil {
			row = lastElement(insert)
		}
		if row == nil {
			log.Printf("values_add: no row appended")
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		// The new row is live and removable like a server-rendered one.
		if rm := widget.First(row, widget.HasClassFunc(widget.RemoveButtonClass)); rm != nil {
			widget.AddClass(rm, widget.RemoveControlClass)
		}

		counterNode := doc.ByID(valuelist.CounterID)
		widget.SetAttr(counterNode, "hx-swap-oob", "true")

		var b strings.Builder
		b.WriteString(widget.OuterHTML(row))
		b.WriteString(widget.OuterHTML(counterNode))
		return e.HTML(http.StatusOK, b.String())
	}
}

// HandleValueRemove removes a value row. The whole form is posted so the
// editor can be rebuilt as the page shows it; the remove control is taken
// from the HX-Trigger header, or the "control" field for plain posts. The
// response body replaces the row with nothing, the tombstone is appended to
// the fieldset out of band, and the options carrying the removed key are
// deleted from the default-value dropdown out of band. The dropdown is never
// replaced, so keys typed into rows since the page loaded are not offered.
// Route: POST /admin/dynamicfields/values/remove
func HandleValueRemove(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form, err := parseRequestForm(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		control := e.Request.Header.Get("HX-Trigger")
		if control == "" {
			control = form.Get("control")
		}
		index, ok := valuelist.ParseRowIndex(control)
		if !ok {
			e.Response.Header().Set("HX-Reswap", "none")
			return e.NoContent(http.StatusNoContent)
		}

		list, err := valuelist.FromForm(form)
		if err != nil {
			log.Printf("values_remove: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "The value list is out of date, please reload the page.")
		}
		data := templates.DynamicFieldFormData{
			Values:  list,
			Default: valuelist.DefaultOptions(list, form.Get(valuelist.DefaultID), nil),
		}

		w, host, err := newValueEditor(e, data)
		if err != nil {
			log.Printf("values_remove: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		doc := w.Document()

		var key string
		if row := list.Row(index); row != nil {
			key = row.Key
		}

		if _, found := doc.Click(control); !found {
			e.Response.Header().Set("HX-Reswap", "none")
			return e.NoContent(http.StatusNoContent)
		}

		var b strings.Builder
		if tombstone := doc.ByID(valuelist.FieldID(valuelist.KeyBase, index)); tombstone != nil {
			fmt.Fprintf(&b, `<div hx-swap-oob="beforeend:#%s">%s</div>`,
				templates.PossibleValuesID, widget.OuterHTML(tombstone))
		}
		if key != "" && host.Redrawn(valuelist.DefaultID) {
			b.WriteString(deleteOptionsOOB(valuelist.DefaultID, key))
		}
		return e.HTML(http.StatusOK, b.String())
	}
}

var cssStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)

// deleteOptionsOOB returns an out-of-band swap that deletes every option of
// the select with the given id whose value equals key.
func deleteOptionsOOB(selectID, key string) string {
	selector := fmt.Sprintf(`#%s option[value="%s"]`, selectID, cssStringEscaper.Replace(key))
	return fmt.Sprintf(`<div hx-swap-oob="delete:%s"></div>`, html.EscapeString(selector))
}

// HandleValueImport appends the values of an uploaded CSV or xlsx file to the
// posted value list and returns the rebuilt fieldset. Keys already in the
// list are skipped.
// Route: POST /admin/dynamicfields/values/import
func HandleValueImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(maxUploadSize); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("ValuesFile")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParsePossibleValuesFile(header.Filename, file)
		if err != nil {
			log.Printf("values_import: %v", err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		form := e.Request.Form
		list, err := valuelist.FromForm(form)
		if err != nil {
			log.Printf("values_import: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "The value list is out of date, please reload the page.")
		}

		existing := make(map[string]bool)
		for _, k := range list.Keys() {
			existing[k] = true
		}
		added, skipped := 0, len(result.Errors)
		for _, v := range result.Values {
			if existing[v.Key] {
				skipped++
				continue
			}
			row := list.Add()
			if row == nil {
				skipped++
				continue
			}
			list.SetKey(row.Index, v.Key)
			list.SetLabel(row.Index, v.Label)
			existing[v.Key] = true
			added++
		}

		data := templates.DynamicFieldFormData{
			Values:  list,
			Default: valuelist.DefaultOptions(list, form.Get(valuelist.DefaultID), nil),
		}

		msg := fmt.Sprintf("Imported %d value(s)", added)
		if skipped > 0 {
			msg += fmt.Sprintf(", skipped %d", skipped)
			SetToast(e, "warning", msg)
		} else {
			SetToast(e, "success", msg)
		}

		ctx := e.Request.Context()
		if err := templates.PossibleValuesFieldset(data).Render(ctx, e.Response); err != nil {
			return err
		}
		return templates.DefaultValueSelect(data.Default, true).Render(ctx, e.Response)
	}
}

func lastElement(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Div {
			return c
		}
	}
	return nil
}
