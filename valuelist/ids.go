package valuelist

import (
	"math"
	"regexp"
	"strconv"
)

// Base identifiers of the value editor controls. The server parser reads the
// submitted form by these names, suffixed with the row index.
const (
	KeyBase      = "Key"
	LabelBase    = "Value"
	RemoveBase   = "RemoveValue"
	CounterID    = "ValueCounter"
	DefaultID    = "DefaultValue"
	errorSuffix  = "Error"
	serverSuffix = "ServerError"
)

// MaxCounter is the highest row index a list hands out.
const MaxCounter = math.MaxInt32

var rowIndexPattern = regexp.MustCompile(`^.+_(\d+)$`)

// FieldID returns the identifier of the control with the given base id in row n.
// It is used for both the id and the name attribute.
func FieldID(base string, n int) string {
	return base + "_" + strconv.Itoa(n)
}

// ErrorID returns the id of the client-side error placeholder for a control.
func ErrorID(controlID string) string {
	return controlID + errorSuffix
}

// ServerErrorID returns the id of the server-side error placeholder for a control.
func ServerErrorID(controlID string) string {
	return controlID + serverSuffix
}

// ParseRowIndex extracts the row index from the trailing "_<digits>" of a
// control identifier. ok is false when the identifier carries no index or the
// index exceeds MaxCounter.
func ParseRowIndex(id string) (index int, ok bool) {
	m := rowIndexPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > MaxCounter {
		return 0, false
	}
	return n, true
}
