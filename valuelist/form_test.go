package valuelist

import (
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_EntriesTombstonesAndAbsent(t *testing.T) {
	form := url.Values{}
	form.Set("ValueCounter", "4")
	form.Set("Key_1", "")
	form.Set("Key_2", "beta")
	form.Set("Value_2", "Beta")
	form.Set("Key_4", "delta")
	form.Set("Value_4", "Delta")

	sub, err := Parse(form)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := Submission{
		Counter: 4,
		Entries: []Entry{
			{Index: 2, Key: "beta", Label: "Beta"},
			{Index: 4, Key: "delta", Label: "Delta"},
		},
		Deleted: []int{1},
	}
	if diff := cmp.Diff(want, sub); diff != "" {
		t.Errorf("submission mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_IgnoresIndexesAboveCounter(t *testing.T) {
	form := url.Values{}
	form.Set("ValueCounter", "1")
	form.Set("Key_1", "alpha")
	form.Set("Value_1", "Alpha")
	form.Set("Key_2", "stray")
	form.Set("Value_2", "Stray")

	sub, err := Parse(form)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(sub.Entries) != 1 || sub.Entries[0].Key != "alpha" {
		t.Errorf("expected only alpha, got %+v", sub.Entries)
	}
}

func TestParseCounter(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"7", 7, false},
		{"010", 10, false},
		{" 3 ", 3, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"1_000", 0, true},
		{"0x10", 0, true},
		{"2147483647", MaxCounter, false},
		{"2147483648", 0, true},
		{"9223372036854775807", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCounter(url.Values{"ValueCounter": {tt.raw}})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCounter) {
					t.Errorf("expected ErrInvalidCounter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCounter(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncode_RoundTripsThroughFromForm(t *testing.T) {
	l := FromValues([]Value{{Key: "alpha", Label: "Alpha"}, {Key: "beta", Label: "Beta"}})
	l.Remove(1)
	r := l.Add()
	l.SetKey(r.Index, "gamma")
	l.SetLabel(r.Index, "Gamma")

	form := l.Encode()
	if got := form.Get("ValueCounter"); got != "3" {
		t.Errorf("expected ValueCounter 3, got %q", got)
	}
	if _, ok := form["Value_1"]; ok {
		t.Error("tombstone must not carry a label control")
	}
	if got, ok := form["Key_1"]; !ok || got[0] != "" {
		t.Errorf("expected empty Key_1 tombstone, got %v", got)
	}

	back, err := FromForm(form)
	if err != nil {
		t.Fatalf("FromForm returned error: %v", err)
	}
	if diff := cmp.Diff(l.Rows(), back.Rows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if back.Counter() != 3 {
		t.Errorf("expected counter 3, got %d", back.Counter())
	}
}

func TestFromForm_InvalidCounter(t *testing.T) {
	_, err := FromForm(url.Values{"ValueCounter": {"x"}})
	if !errors.Is(err, ErrInvalidCounter) {
		t.Errorf("expected ErrInvalidCounter, got %v", err)
	}
}

func TestSubmissionValues(t *testing.T) {
	sub := Submission{Entries: []Entry{{Index: 3, Key: "k", Label: "L"}}}
	if diff := cmp.Diff([]Value{{Key: "k", Label: "L"}}, sub.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_LargeCounterVisitsOnlySubmittedRows(t *testing.T) {
	form := url.Values{}
	form.Set("ValueCounter", strconv.Itoa(MaxCounter))
	form.Set("Key_7", "seven")
	form.Set("Value_7", "Seven")
	form.Set("Key_3", "")
	form.Set("Key_03", "padded")
	form.Set("Value_03", "Padded")

	sub, err := Parse(form)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := Submission{
		Counter: MaxCounter,
		Entries: []Entry{{Index: 7, Key: "seven", Label: "Seven"}},
		Deleted: []int{3},
	}
	if diff := cmp.Diff(want, sub); diff != "" {
		t.Errorf("submission mismatch (-want +got):\n%s", diff)
	}

	l, err := FromForm(form)
	if err != nil {
		t.Fatalf("FromForm returned error: %v", err)
	}
	if got := len(l.Rows()); got != 2 {
		t.Errorf("expected 2 rows, got %d", got)
	}
	if l.Add() != nil {
		t.Error("expected no further rows once the counter is exhausted")
	}
}

func TestParse_TrimsKeysAndLabels(t *testing.T) {
	form := url.Values{}
	form.Set("ValueCounter", "2")
	form.Set("Key_1", "alpha ")
	form.Set("Value_1", " Alpha")
	form.Set("Key_2", "\talpha")
	form.Set("Value_2", "Again")

	sub, err := Parse(form)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []Entry{
		{Index: 1, Key: "alpha", Label: "Alpha"},
		{Index: 2, Key: "alpha", Label: "Again"},
	}
	if diff := cmp.Diff(want, sub.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}
