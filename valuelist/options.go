package valuelist

// Value is a stored possible value.
type Value struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Option is one entry of the default-value dropdown.
type Option struct {
	Value string
	Text  string
}

// Redrawer is asked to refresh an enhanced dropdown after its options changed.
type Redrawer interface {
	Redraw(id string)
}

// Options is the option set of the default-value dropdown. Subscribed to a
// List, it drops the options of removed keys.
type Options struct {
	ID       string
	Items    []Option
	Selected string
	redraw   Redrawer
}

// DefaultOptions builds the default-value option set for a list: an empty
// choice followed by one option per non-empty live key.
func DefaultOptions(l *List, selected string, r Redrawer) *Options {
	o := &Options{
		ID:       DefaultID,
		Items:    []Option{{Value: "", Text: "-"}},
		Selected: selected,
		redraw:   r,
	}
	for _, row := range l.Live() {
		if row.Key == "" {
			continue
		}
		text := row.Label
		if text == "" {
			text = row.Key
		}
		o.Items = append(o.Items, Option{Value: row.Key, Text: text})
	}
	if selected != "" && !o.Has(selected) {
		o.Selected = ""
	}
	return o
}

// Has reports whether an option with the given value exists.
func (o *Options) Has(value string) bool {
	for _, it := range o.Items {
		if it.Value == value {
			return true
		}
	}
	return false
}

// KeyRemoved drops every option whose value equals key and asks the dropdown
// to redraw.
func (o *Options) KeyRemoved(key string) {
	kept := o.Items[:0]
	for _, it := range o.Items {
		if it.Value != key {
			kept = append(kept, it)
		}
	}
	o.Items = kept
	if o.Selected == key {
		o.Selected = ""
	}
	if o.redraw != nil {
		o.redraw.Redraw(o.ID)
	}
}
