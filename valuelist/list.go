// Package valuelist models the possible-values list of a dropdown dynamic field:
// the row counter, the live rows and the tombstones left by removed rows, plus
// the form encoding the server parser reads.
package valuelist

// Row is one possible value. A row that has been removed stays in the list as a
// tombstone (Alive false) so its index is never handed out again.
type Row struct {
	Index int
	Key   string
	Label string
	Alive bool
}

// KeyObserver is notified when a row carrying a non-empty key is removed.
type KeyObserver interface {
	KeyRemoved(key string)
}

// List is the ordered value list. Counter is the highest row index allocated
// so far and never decreases.
type List struct {
	counter   int
	rows      []*Row
	observers []KeyObserver
}

// New returns an empty list whose counter starts at counter, clamped to
// 0..MaxCounter.
func New(counter int) *List {
	counter = max(0, min(counter, MaxCounter))
	return &List{counter: counter}
}

// FromValues builds a list with one live row per key/label pair, indexed 1..n,
// as rendered by the server for a stored field.
func FromValues(values []Value) *List {
	l := New(0)
	for _, v := range values {
		r := l.Add()
		r.Key = v.Key
		r.Label = v.Label
	}
	return l
}

// Subscribe registers an observer for key removals.
func (l *List) Subscribe(o KeyObserver) {
	l.observers = append(l.observers, o)
}

// Counter returns the highest row index allocated so far.
func (l *List) Counter() int {
	return l.counter
}

// Add allocates the next row index and appends a live, empty row. It returns
// nil once the counter has reached MaxCounter.
func (l *List) Add() *Row {
	if l.counter >= MaxCounter {
		return nil
	}
	l.counter++
	r := &Row{Index: l.counter, Alive: true}
	l.rows = append(l.rows, r)
	return r
}

// Restore appends a row with an explicit index, as read back from a submitted
// form. The counter is raised when the index exceeds it. Restoring an index
// already present is ignored.
func (l *List) Restore(r Row) bool {
	if r.Index <= 0 || r.Index > MaxCounter || l.Row(r.Index) != nil {
		return false
	}
	if r.Index > l.counter {
		l.counter = r.Index
	}
	if !r.Alive {
		r.Key, r.Label = "", ""
	}
	l.rows = append(l.rows, &r)
	return true
}

// Row returns the row with the given index, live or tombstoned.
func (l *List) Row(index int) *Row {
	for _, r := range l.rows {
		if r.Index == index {
			return r
		}
	}
	return nil
}

// SetKey updates the key of a live row.
func (l *List) SetKey(index int, key string) bool {
	r := l.Row(index)
	if r == nil || !r.Alive {
		return false
	}
	r.Key = key
	return true
}

// SetLabel updates the label of a live row.
func (l *List) SetLabel(index int, label string) bool {
	r := l.Row(index)
	if r == nil || !r.Alive {
		return false
	}
	r.Label = label
	return true
}

// Remove turns the live row at index into a tombstone and notifies observers
// when its key was non-empty. The counter is left untouched.
func (l *List) Remove(index int) bool {
	r := l.Row(index)
	if r == nil || !r.Alive {
		return false
	}
	key := r.Key
	r.Alive = false
	r.Key, r.Label = "", ""
	if key != "" {
		for _, o := range l.observers {
			o.KeyRemoved(key)
		}
	}
	return true
}

// RemoveByControlID removes the row addressed by a remove control identifier
// such as "RemoveValue_3". Identifiers without a row index are ignored.
func (l *List) RemoveByControlID(id string) bool {
	index, ok := ParseRowIndex(id)
	if !ok {
		return false
	}
	return l.Remove(index)
}

// Rows returns every row in list order, tombstones included.
func (l *List) Rows() []Row {
	out := make([]Row, 0, len(l.rows))
	for _, r := range l.rows {
		out = append(out, *r)
	}
	return out
}

// Live returns the live rows in list order.
func (l *List) Live() []Row {
	var out []Row
	for _, r := range l.rows {
		if r.Alive {
			out = append(out, *r)
		}
	}
	return out
}

// Tombstones returns the indexes of removed rows in list order.
func (l *List) Tombstones() []int {
	var out []int
	for _, r := range l.rows {
		if !r.Alive {
			out = append(out, r.Index)
		}
	}
	return out
}

// Keys returns the non-empty keys of the live rows in list order.
func (l *List) Keys() []string {
	var out []string
	for _, r := range l.rows {
		if r.Alive && r.Key != "" {
			out = append(out, r.Key)
		}
	}
	return out
}

// Values returns the live rows as key/label pairs.
func (l *List) Values() []Value {
	var out []Value
	for _, r := range l.rows {
		if r.Alive {
			out = append(out, Value{Key: r.Key, Label: r.Label})
		}
	}
	return out
}
