package services

import (
	"errors"
	"net/url"
	"regexp"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/cast"

	"dynamicfieldadmin/valuelist"
)

// identifierPattern accepts table and column names, optionally schema-qualified.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// RemoteDB is the remote database part of a dynamic field.
type RemoteDB struct {
	DBMS           string
	DSN            string
	User           string
	Password       string
	Table          string
	KeyColumn      string
	ValueColumn    string
	CacheTTL       int
	MaxQueryResult int
}

// DynamicFieldInput is a submitted dynamic field form.
type DynamicFieldInput struct {
	Name               string
	Label              string
	FieldOrder         int
	Valid              bool
	ObjectType         string
	Values             valuelist.Submission
	DefaultValue       string
	PossibleNone       bool
	TranslatableValues bool
	TreeView           bool
	Link               string
	DB                 RemoteDB
}

// ParseDynamicFieldForm reads and validates a submitted dynamic field form.
// Field errors are keyed by the id of the offending control; the key "Form"
// holds errors that belong to no single control.
func ParseDynamicFieldForm(form url.Values) (DynamicFieldInput, map[string]string) {
	errs := make(map[string]string)
	get := func(k string) string { return strings.TrimSpace(form.Get(k)) }

	in := DynamicFieldInput{
		Name:               get("Name"),
		Label:              get("Label"),
		Valid:              get("ValidID") != "2",
		ObjectType:         get("ObjectType"),
		DefaultValue:       form.Get(valuelist.DefaultID),
		PossibleNone:       get("PossibleNone") == "1",
		TranslatableValues: get("TranslatableValues") == "1",
		TreeView:           get("TreeView") == "1",
		Link:               get("Link"),
		DB: RemoteDB{
			DBMS:        get("DBMS"),
			DSN:         get("DSN"),
			User:        get("DBUser"),
			Password:    form.Get("DBPassword"),
			Table:       get("DBTable"),
			KeyColumn:   get("DatabaseFieldKey"),
			ValueColumn: get("DatabaseFieldValue"),
		},
	}

	in.FieldOrder = parseNumber(get("FieldOrder"), "FieldOrder", 1, errs)
	in.DB.CacheTTL = parseNumber(get("CacheTTL"), "CacheTTL", 0, errs)
	in.DB.MaxQueryResult = parseNumber(get("MaxQueryResult"), "MaxQueryResult", 0, errs)

	sub, err := valuelist.Parse(form)
	if err != nil {
		errs["Form"] = "The possible values could not be read, please reload the page."
	}
	in.Values = sub

	check(errs, "Name", in.Name,
		validation.Required.Error("Name is required."),
		validation.Length(1, 200).Error("Name must be at most 200 characters."),
		is.Alphanumeric.Error("Name may only contain letters and digits."),
	)
	check(errs, "Label", in.Label,
		validation.Required.Error("Label is required."),
		validation.Length(1, 200).Error("Label must be at most 200 characters."),
	)
	check(errs, "ObjectType", in.ObjectType,
		validation.Required.Error("Object type is required."),
		validation.In(toAny(ObjectTypes)...).Error("Unknown object type."),
	)
	check(errs, "Link", in.Link, is.URL.Error("Link must be a valid URL."))

	for k, v := range ValidatePossibleValues(in.Values) {
		errs[k] = v
	}
	if in.DefaultValue != "" && !slices.ContainsFunc(in.Values.Entries, func(e valuelist.Entry) bool {
		return e.Key == in.DefaultValue
	}) {
		errs[valuelist.DefaultID] = "The default value must be one of the possible values."
	}

	check(errs, "DBMS", in.DB.DBMS,
		validation.Required.Error("Database type is required."),
		validation.In(toAny(DBMSTypes)...).Error("Unknown database type."),
	)
	check(errs, "DSN", in.DB.DSN, validation.Required.Error("DSN is required."))
	for id, v := range map[string]string{
		"DBTable":            in.DB.Table,
		"DatabaseFieldKey":   in.DB.KeyColumn,
		"DatabaseFieldValue": in.DB.ValueColumn,
	} {
		check(errs, id, v,
			validation.Required.Error("This field is required."),
			validation.Match(identifierPattern).Error("Only letters, digits and underscores are allowed."),
		)
	}

	return in, errs
}

// ValidatePossibleValues checks every submitted entry: key and label are
// required and a key may appear only once. Duplicates are reported on the
// later row.
func ValidatePossibleValues(sub valuelist.Submission) map[string]string {
	errs := make(map[string]string)
	seen := make(map[string]bool, len(sub.Entries))
	for _, e := range sub.Entries {
		keyID := valuelist.FieldID(valuelist.KeyBase, e.Index)
		labelID := valuelist.FieldID(valuelist.LabelBase, e.Index)

		key := strings.TrimSpace(e.Key)
		check(errs, keyID, key, validation.Required.Error("This field is required."))
		check(errs, labelID, strings.TrimSpace(e.Label), validation.Required.Error("This field is required."))

		if key == "" {
			continue
		}
		if seen[key] {
			if _, ok := errs[keyID]; !ok {
				errs[keyID] = "This key is already used."
			}
		}
		seen[key] = true
	}
	return errs
}

func check(errs map[string]string, id string, value any, rules ...validation.Rule) {
	if _, ok := errs[id]; ok {
		return
	}
	if err := validation.Validate(value, rules...); err != nil {
		var verr validation.Error
		if errors.As(err, &verr) {
			errs[id] = verr.Message()
			return
		}
		errs[id] = err.Error()
	}
}

func parseNumber(raw, id string, minimum int, errs map[string]string) int {
	if raw == "" {
		if minimum > 0 {
			errs[id] = "This field is required."
		}
		return 0
	}
	if err := validation.Validate(raw, is.Digit); err != nil {
		errs[id] = "Please enter a whole number."
		return 0
	}
	// cast parses with base 0; strip leading zeros so "010" is ten.
	digits := strings.TrimLeft(raw, "0")
	if digits == "" {
		digits = "0"
	}
	n, err := cast.ToIntE(digits)
	if err != nil {
		errs[id] = "Please enter a whole number."
		return 0
	}
	if n < minimum {
		errs[id] = "The number is too small."
	}
	return n
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
