package valuelist

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/cast"
)

// ErrInvalidCounter is returned when the submitted ValueCounter is not a
// whole number between zero and MaxCounter.
var ErrInvalidCounter = errors.New("invalid value counter")

// Entry is one submitted possible value with the row index it was posted under.
type Entry struct {
	Index int
	Key   string
	Label string
}

// Submission is the possible-values part of a submitted form.
type Submission struct {
	Counter int
	Entries []Entry
	// Deleted holds the indexes that were posted as tombstones.
	Deleted []int
}

// Values returns the submitted entries as stored key/label pairs.
func (s Submission) Values() []Value {
	out := make([]Value, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, Value{Key: e.Key, Label: e.Label})
	}
	return out
}

// ParseCounter reads the ValueCounter control from a form. A missing counter
// reads as zero.
func ParseCounter(form url.Values) (int, error) {
	raw := strings.TrimSpace(form.Get(CounterID))
	if raw == "" {
		return 0, nil
	}
	if err := validation.Validate(raw, is.Digit); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCounter, raw)
	}
	// cast parses with base 0, so leading zeros would read as octal.
	digits := strings.TrimLeft(raw, "0")
	if digits == "" {
		return 0, nil
	}
	n, err := cast.ToIntE(digits)
	if err != nil || n < 0 || n > MaxCounter {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCounter, raw)
	}
	return n, nil
}

// Parse reads the possible values from a submitted form. For every index up
// to the counter, Key_i together with Value_i is an entry, Key_i alone is a
// tombstone, and no Key_i means the index was never used on the page. Only
// the submitted Key_i names are visited, so the work is bounded by the form
// size rather than the counter. Keys and labels are trimmed.
func Parse(form url.Values) (Submission, error) {
	counter, err := ParseCounter(form)
	if err != nil {
		return Submission{}, err
	}

	var indexes []int
	for name := range form {
		i, ok := ParseRowIndex(name)
		if !ok || i < 1 || i > counter || name != FieldID(KeyBase, i) {
			continue
		}
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	sub := Submission{Counter: counter}
	for _, i := range indexes {
		labels, hasLabel := form[FieldID(LabelBase, i)]
		if !hasLabel {
			sub.Deleted = append(sub.Deleted, i)
			continue
		}
		sub.Entries = append(sub.Entries, Entry{
			Index: i,
			Key:   strings.TrimSpace(first(form[FieldID(KeyBase, i)])),
			Label: strings.TrimSpace(first(labels)),
		})
	}
	return sub, nil
}

// FromForm rebuilds the list a page was showing from its submitted form.
func FromForm(form url.Values) (*List, error) {
	sub, err := Parse(form)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(sub.Entries)+len(sub.Deleted))
	for _, e := range sub.Entries {
		rows = append(rows, Row{Index: e.Index, Key: e.Key, Label: e.Label, Alive: true})
	}
	for _, i := range sub.Deleted {
		rows = append(rows, Row{Index: i})
	}
	slices.SortFunc(rows, func(a, b Row) int { return cmp.Compare(a.Index, b.Index) })

	l := New(sub.Counter)
	for _, r := range rows {
		l.Restore(r)
	}
	return l, nil
}

// Encode returns the form the list submits: the counter, Key_i and Value_i
// for live rows, and an empty Key_i for each tombstone.
func (l *List) Encode() url.Values {
	form := url.Values{}
	form.Set(CounterID, strconv.Itoa(l.counter))
	for _, r := range l.rows {
		form.Set(FieldID(KeyBase, r.Index), r.Key)
		if r.Alive {
			form.Set(FieldID(LabelBase, r.Index), r.Label)
		}
	}
	return form
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
