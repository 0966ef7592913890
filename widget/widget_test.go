package widget

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"dynamicfieldadmin/valuelist"
)

type mockHost struct {
	namespaces  []string
	validations []string
	redraws     []string
}

func (h *mockHost) RegisterNamespace(namespace, category string) {
	h.namespaces = append(h.namespaces, category+":"+namespace)
}

func (h *mockHost) ValidationInit(screen string) {
	h.validations = append(h.validations, screen)
}

func (h *mockHost) Redraw(id string) {
	h.redraws = append(h.redraws, id)
}

type option struct{ Value, Text string }

const templateRow = `
<div class="ValueTemplate Hidden">
  <label for="Key">Key:</label>
  <input type="text" id="Key" value="" class="W20pc"/>
  <div id="KeyError" class="TooltipErrorMessage"><p>This field is required.</p></div>
  <div id="KeyServerError" class="TooltipErrorMessage"><p>This field is required.</p></div>
  <label for="Value">Value:</label>
  <input type="text" id="Value" value="" class="W20pc"/>
  <div id="ValueError" class="TooltipErrorMessage"><p>This field is required.</p></div>
  <div id="ValueServerError" class="TooltipErrorMessage"><p>This field is required.</p></div>
  <a href="#" id="RemoveValue" class="RemoveButton">Remove</a>
</div>`

func serverRow(i int, key, label string) string {
	return fmt.Sprintf(`
<div class="ValueRow">
  <label for="Key_%[1]d">Key:</label>
  <input type="text" id="Key_%[1]d" name="Key_%[1]d" value="%[2]s" class="W20pc Validate_Required"/>
  <label for="Value_%[1]d">Value:</label>
  <input type="text" id="Value_%[1]d" name="Value_%[1]d" value="%[3]s" class="W20pc Validate_Required"/>
  <a href="#" id="RemoveValue_%[1]d" class="RemoveButton ValueRemove">Remove</a>
</div>`, i, key, label)
}

func page(counter int, rows []string, options []option) string {
	var sb strings.Builder
	sb.WriteString(`<form id="EditDynamicField"><fieldset class="TableLike" id="PossibleValues"><div class="ValueInsert">`)
	for _, r := range rows {
		sb.WriteString(r)
	}
	sb.WriteString(`</div>`)
	fmt.Fprintf(&sb, `<input type="hidden" id="ValueCounter" name="ValueCounter" value="%d"/>`, counter)
	sb.WriteString(`<a href="#" id="AddValue" class="AddButton">Add value</a>`)
	sb.WriteString(`<input type="hidden" class="DeletedValue" value=""/>`)
	sb.WriteString(templateRow)
	sb.WriteString(`</fieldset><fieldset class="TableLike"><select id="DefaultValue" name="DefaultValue" class="Modernize">`)
	for _, o := range options {
		fmt.Fprintf(&sb, `<option value="%s">%s</option>`, o.Value, o.Text)
	}
	sb.WriteString(`</select></fieldset></form>`)
	return sb.String()
}

func newWidget(t *testing.T, markup string) (*Widget, *mockHost) {
	t.Helper()
	doc, err := ParseFragment(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	host := &mockHost{}
	w := New(doc, host)
	w.Init()
	return w, host
}

func click(t *testing.T, w *Widget, id string) {
	t.Helper()
	proceed, found := w.Document().Click(id)
	if !found {
		t.Fatalf("no element with id %q", id)
	}
	if proceed {
		t.Errorf("expected click on %q to suppress the default action", id)
	}
}

func fill(t *testing.T, w *Widget, id, value string) {
	t.Helper()
	n := w.Document().ByID(id)
	if n == nil {
		t.Fatalf("no control with id %q", id)
	}
	SetValue(n, value)
}

func defaultOptions(w *Widget) []option {
	var out []option
	for _, o := range FindAll(w.Document().ByID("DefaultValue"), IsTag(atom.Option)) {
		out = append(out, option{Value(o), Text(o)})
	}
	return out
}

func render(t *testing.T, w *Widget) string {
	t.Helper()
	var sb strings.Builder
	if err := w.Document().Render(&sb); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return sb.String()
}

func TestInit_RegistersAndValidates(t *testing.T) {
	w, host := newWidget(t, page(1, []string{serverRow(1, "alpha", "Alpha")}, nil))

	if diff := cmp.Diff([]string{Category + ":" + Namespace}, host.namespaces); diff != "" {
		t.Errorf("namespaces mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{ValidationScreen}, host.validations); diff != "" {
		t.Errorf("validation init mismatch (-want +got):\n%s", diff)
	}
	doc := w.Document()
	if got := doc.Listeners(doc.ByID(AddID), "click"); got != 1 {
		t.Errorf("expected 1 add handler, got %d", got)
	}
	if got := doc.Listeners(doc.ByID("RemoveValue_1"), "click"); got != 1 {
		t.Errorf("expected 1 remove handler, got %d", got)
	}
	if got := doc.Listeners(doc.ByID("RemoveValue"), "click"); got != 0 {
		t.Errorf("template remove control must not be bound, got %d", got)
	}
}

func TestInit_MissingControlsBindNothing(t *testing.T) {
	doc, err := ParseFragment(strings.NewReader(`<form><fieldset></fieldset></form>`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	host := &mockHost{}
	New(doc, host).Init()

	if len(doc.listeners) != 0 {
		t.Errorf("expected no listeners, got %d", len(doc.listeners))
	}
	if len(host.validations) != 1 {
		t.Errorf("expected validation init to run once, got %d", len(host.validations))
	}
}

// S1
func TestAddValue_ThenSubmit(t *testing.T) {
	w, _ := newWidget(t, page(0, nil, []option{{"", "-"}}))

	click(t, w, AddID)
	fill(t, w, "Key_1", "alpha")
	fill(t, w, "Value_1", "Alpha")

	form := w.Document().FormValues()
	if got := form.Get("ValueCounter"); got != "1" {
		t.Errorf("expected ValueCounter 1, got %q", got)
	}
	if got := form.Get("Key_1"); got != "alpha" {
		t.Errorf("expected Key_1 alpha, got %q", got)
	}
	if got := form.Get("Value_1"); got != "Alpha" {
		t.Errorf("expected Value_1 Alpha, got %q", got)
	}
	if _, ok := form["Key"]; ok {
		t.Error("template control must not be submitted")
	}
}

func TestAddValue_RewritesRow(t *testing.T) {
	w, _ := newWidget(t, page(0, nil, nil))
	click(t, w, AddID)
	doc := w.Document()

	rows := doc.ByClass(RowClass)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if HasClass(row, HiddenClass) || HasClass(row, TemplateClass) {
		t.Errorf("row still carries template classes: %v", Classes(row))
	}
	if !HasClass(row.Parent, InsertClass) {
		t.Error("expected row to be appended to the insert container")
	}

	for _, id := range []string{"Key_1", "Value_1", "RemoveValue_1"} {
		n := doc.ByID(id)
		if n == nil {
			t.Errorf("missing control %s", id)
			continue
		}
		if name, _ := Attr(n, "name"); name != id {
			t.Errorf("expected name %q, got %q", id, name)
		}
		if !HasClass(n, RequiredClass) {
			t.Errorf("expected %s to be marked required", id)
		}
	}
	for _, id := range []string{"Key_1Error", "Key_1ServerError", "Value_1Error", "Value_1ServerError"} {
		n := doc.ByID(id)
		if n == nil {
			t.Errorf("missing placeholder %s", id)
			continue
		}
		if name, _ := Attr(n, "name"); name != id {
			t.Errorf("expected placeholder name %q, got %q", id, name)
		}
	}

	var fors []string
	for _, l := range FindAll(row, IsTag(atom.Label)) {
		v, _ := Attr(l, "for")
		fors = append(fors, v)
	}
	if diff := cmp.Diff([]string{"Key_1", "Value_1"}, fors); diff != "" {
		t.Errorf("label targets mismatch (-want +got):\n%s", diff)
	}

	tmpl := doc.FirstByClass(TemplateClass)
	if tmpl == nil || !HasClass(tmpl, HiddenClass) {
		t.Fatal("template must stay hidden and in place")
	}
	if First(tmpl, func(n *html.Node) bool { v, _ := Attr(n, "id"); return v == "Key" }) == nil {
		t.Error("template controls must keep their base ids")
	}
}

func TestAddValue_ConsecutiveIndexes(t *testing.T) {
	w, _ := newWidget(t, page(0, nil, nil))
	click(t, w, AddID)
	click(t, w, AddID)

	doc := w.Document()
	if doc.ByID("Key_1") == nil || doc.ByID("Key_2") == nil {
		t.Error("expected rows with indexes 1 and 2")
	}
	if got := Value(doc.ByID("ValueCounter")); got != "2" {
		t.Errorf("expected counter 2, got %q", got)
	}
}

func TestAddValue_MissingTemplateIsNoop(t *testing.T) {
	markup := strings.Replace(page(0, nil, nil), "ValueTemplate Hidden", "Gone Hidden", 1)
	w, _ := newWidget(t, markup)
	before := render(t, w)

	click(t, w, AddID)

	if after := render(t, w); after != before {
		t.Errorf("expected no DOM change\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestAddValue_MissingCounterIsNoop(t *testing.T) {
	markup := strings.Replace(page(0, nil, nil), `id="ValueCounter"`, `id="Other"`, 1)
	w, _ := newWidget(t, markup)
	before := render(t, w)

	click(t, w, AddID)

	if after := render(t, w); after != before {
		t.Error("expected no DOM change without a counter")
	}
}

// S2
func TestRemoveValue_FirstOfTwo(t *testing.T) {
	w, _ := newWidget(t, page(0, nil, []option{{"", "-"}}))
	click(t, w, AddID)
	fill(t, w, "Key_1", "alpha")
	fill(t, w, "Value_1", "Alpha")
	click(t, w, AddID)
	fill(t, w, "Key_2", "beta")
	fill(t, w, "Value_2", "Beta")

	click(t, w, "RemoveValue_1")

	form := w.Document().FormValues()
	if got := form.Get("ValueCounter"); got != "2" {
		t.Errorf("expected ValueCounter 2, got %q", got)
	}
	if got, ok := form["Key_1"]; !ok || len(got) != 1 || got[0] != "" {
		t.Errorf("expected a single empty Key_1 tombstone, got %v", got)
	}
	if _, ok := form["Value_1"]; ok {
		t.Error("removed row must not submit its label")
	}
	if form.Get("Key_2") != "beta" || form.Get("Value_2") != "Beta" {
		t.Errorf("expected beta row to survive, got %v", form)
	}

	sub, err := valuelist.Parse(form)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if diff := cmp.Diff([]int{1}, sub.Deleted); diff != "" {
		t.Errorf("deleted mismatch (-want +got):\n%s", diff)
	}
	if len(sub.Entries) != 1 || sub.Entries[0].Index != 2 {
		t.Errorf("expected only entry 2, got %+v", sub.Entries)
	}
}

// S3
func TestRemoveValue_SynchronisesDefault(t *testing.T) {
	w, host := newWidget(t, page(1,
		[]string{serverRow(1, "alpha", "Alpha")},
		[]option{{"", "-"}, {"alpha", "Alpha"}}))

	click(t, w, "RemoveValue_1")

	if diff := cmp.Diff([]option{{"", "-"}}, defaultOptions(w)); diff != "" {
		t.Errorf("default options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"DefaultValue"}, host.redraws); diff != "" {
		t.Errorf("redraw mismatch (-want +got):\n%s", diff)
	}
	form := w.Document().FormValues()
	if got, ok := form["Key_1"]; !ok || got[0] != "" {
		t.Errorf("expected empty Key_1, got %v", got)
	}
}

// S4
func TestRemoveValue_EmptyKeyLeavesDefault(t *testing.T) {
	w, host := newWidget(t, page(3,
		[]string{serverRow(3, "", "")},
		[]option{{"", "-"}, {"x", "X"}}))

	click(t, w, "RemoveValue_3")

	if diff := cmp.Diff([]option{{"", "-"}, {"x", "X"}}, defaultOptions(w)); diff != "" {
		t.Errorf("default options mismatch (-want +got):\n%s", diff)
	}
	if len(host.redraws) != 0 {
		t.Errorf("expected no redraw, got %v", host.redraws)
	}
	if got, ok := w.Document().FormValues()["Key_3"]; !ok || got[0] != "" {
		t.Errorf("expected empty Key_3, got %v", got)
	}
}

// S5
func TestRemoveValue_IndexesNotReused(t *testing.T) {
	w, _ := newWidget(t, page(0, nil, nil))
	click(t, w, AddID)
	click(t, w, "RemoveValue_1")
	click(t, w, AddID)

	doc := w.Document()
	if doc.ByID("Value_2") == nil {
		t.Error("expected second add to receive index 2")
	}
	if doc.ByID("Value_1") != nil {
		t.Error("index 1 must not be reused")
	}
	if got := Value(doc.ByID("ValueCounter")); got != "2" {
		t.Errorf("expected counter 2, got %q", got)
	}
	if got := len(doc.ByClass(RowClass)); got != 1 {
		t.Errorf("expected 1 live row, got %d", got)
	}
}

// S6
func TestRemoveValue_MalformedIDIsNoop(t *testing.T) {
	w, host := newWidget(t, page(1,
		[]string{serverRow(1, "alpha", "Alpha")},
		[]option{{"", "-"}, {"alpha", "Alpha"}}))
	before := render(t, w)

	for _, id := range []string{"RemoveValue", "RemoveValue_", "RemoveValue_x", ""} {
		if w.RemoveValue(id) {
			t.Errorf("RemoveValue(%q) must suppress the default action", id)
		}
	}

	if after := render(t, w); after != before {
		t.Errorf("expected no DOM change\nbefore: %s\nafter:  %s", before, after)
	}
	if len(host.redraws) != 0 {
		t.Errorf("expected no redraw, got %v", host.redraws)
	}
}

func TestRemoveValue_TombstoneAppendedToGroup(t *testing.T) {
	w, _ := newWidget(t, page(2,
		[]string{serverRow(1, "a", "A"), serverRow(2, "b", "B")}, nil))

	click(t, w, "RemoveValue_1")

	doc := w.Document()
	tomb := doc.ByID("Key_1")
	if tomb == nil {
		t.Fatal("expected a Key_1 tombstone")
	}
	if typ, _ := Attr(tomb, "type"); typ != "hidden" {
		t.Errorf("expected hidden tombstone, got type %q", typ)
	}
	if HasClass(tomb, TombstoneClass) {
		t.Error("tombstone must not keep the template class")
	}
	if tomb.Parent != doc.ByID("PossibleValues") {
		t.Error("expected tombstone to be appended to the enclosing fieldset")
	}
	if tomb.Parent.LastChild != tomb {
		t.Error("expected tombstone at the tail of the group")
	}
	if doc.FirstByClass(TombstoneClass) == nil {
		t.Error("tombstone template must stay available")
	}
}

func TestRemoveValue_DuplicateOptionsAllRemoved(t *testing.T) {
	w, host := newWidget(t, page(1,
		[]string{serverRow(1, "dup", "Dup")},
		[]option{{"", "-"}, {"dup", "One"}, {"dup", "Two"}}))

	click(t, w, "RemoveValue_1")

	if diff := cmp.Diff([]option{{"", "-"}}, defaultOptions(w)); diff != "" {
		t.Errorf("default options mismatch (-want +got):\n%s", diff)
	}
	if len(host.redraws) != 1 {
		t.Errorf("expected a single redraw, got %v", host.redraws)
	}
}

// Counter, row and tombstone counts hold for any interleaving of adds and
// removes starting from k server rows.
func TestAddRemove_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 25; round++ {
		k := rng.Intn(4)
		var rows []string
		options := []option{{"", "-"}}
		for i := 1; i <= k; i++ {
			key := fmt.Sprintf("k%d", i)
			rows = append(rows, serverRow(i, key, strings.ToUpper(key)))
			options = append(options, option{key, strings.ToUpper(key)})
		}
		w, _ := newWidget(t, page(k, rows, options))
		doc := w.Document()

		live := make([]int, 0)
		for i := 1; i <= k; i++ {
			live = append(live, i)
		}
		adds, removes := 0, 0

		for step := 0; step < 12; step++ {
			if len(live) == 0 || rng.Intn(2) == 0 {
				click(t, w, AddID)
				adds++
				n := k + adds
				fill(t, w, valuelist.FieldID("Key", n), fmt.Sprintf("k%d", n))
				fill(t, w, valuelist.FieldID("Value", n), fmt.Sprintf("K%d", n))
				live = append(live, n)
				continue
			}
			pick := rng.Intn(len(live))
			click(t, w, valuelist.FieldID("RemoveValue", live[pick]))
			live = append(live[:pick], live[pick+1:]...)
			removes++
		}

		form := doc.FormValues()
		if got, want := form.Get("ValueCounter"), fmt.Sprint(k+adds); got != want {
			t.Errorf("round %d: counter %s, want %s", round, got, want)
		}
		if got, want := len(doc.ByClass(RowClass)), k+adds-removes; got != want {
			t.Errorf("round %d: %d live rows, want %d", round, got, want)
		}

		keyControls, empty := 0, 0
		for name, vs := range form {
			if i, ok := valuelist.ParseRowIndex(name); ok && strings.HasPrefix(name, "Key_") {
				if i < 1 || i > k+adds {
					t.Errorf("round %d: index %d outside 1..%d", round, i, k+adds)
				}
				if len(vs) != 1 {
					t.Errorf("round %d: %s submitted %d times", round, name, len(vs))
				}
				keyControls++
				if vs[0] == "" {
					empty++
				}
			}
		}
		if keyControls != k+adds {
			t.Errorf("round %d: %d Key_i controls, want %d", round, keyControls, k+adds)
		}
		if empty != removes {
			t.Errorf("round %d: %d tombstones, want %d", round, empty, removes)
		}

		liveKeys := map[string]bool{}
		for _, i := range live {
			liveKeys[form.Get(valuelist.FieldID("Key", i))] = true
		}
		for _, o := range defaultOptions(w) {
			if o.Value != "" && !liveKeys[o.Value] {
				t.Errorf("round %d: default option %q has no live row", round, o.Value)
			}
		}
	}
}

func TestInit_BindsEveryRemoveControl(t *testing.T) {
	w, _ := newWidget(t, page(2, []string{serverRow(1, "a", "A"), serverRow(2, "b", "B")}, nil))
	doc := w.Document()

	controls := doc.ByClass(RemoveControlClass)
	if len(controls) != 2 {
		t.Fatalf("expected 2 %s controls, got %d", RemoveControlClass, len(controls))
	}
	for _, c := range controls {
		if got := doc.Listeners(c, "click"); got != 1 {
			id, _ := Attr(c, "id")
			t.Errorf("%s: expected 1 click handler, got %d", id, got)
		}
	}
}

func TestAddValue_CounterExhaustedIsNoop(t *testing.T) {
	w, _ := newWidget(t, page(valuelist.MaxCounter, nil, nil))
	before := render(t, w)

	click(t, w, AddID)

	if after := render(t, w); after != before {
		t.Error("expected no DOM change once the counter is exhausted")
	}
}
