package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPropertiesMarshalKeepsOrder(t *testing.T) {
	notes := "spit up"
	p := Properties{
		{"timestamp", "2024-05-01T22:00:00-04:00"},
		{"DOL", 3},
		{"Amount", 120},
		{"Notes", (*string)(nil)},
		{"Color", &notes},
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"timestamp":"2024-05-01T22:00:00-04:00","DOL":3,"Amount":120,"Notes":null,"Color":"spit up"}`
	if string(data) != want {
		t.Fatalf("got %s\nwant %s", data, want)
	}
}

func TestPropertiesRoundTripOrder(t *testing.T) {
	in := []byte(`{"b":1,"a":"x","c":null}`)
	var p Properties
	if err := json.Unmarshal(in, &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(p))
	}
	keys := []string{p[0].Key, p[1].Key, p[2].Key}
	if keys[0] != "b" || keys[1] != "a" || keys[2] != "c" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	if p[2].Value != nil {
		t.Fatalf("expected nil for c, got %v", p[2].Value)
	}
}

func TestPropertiesGet(t *testing.T) {
	p := Properties{{"DOL", 5}}
	v, ok := p.Get("DOL")
	if !ok || v != 5 {
		t.Fatalf("Get(DOL) = %v, %v", v, ok)
	}
	if _, ok := p.Get("missing"); ok {
		t.Fatal("expected missing key to report false")
	}
}

func TestEventJSONTagNames(t *testing.T) {
	e := Event{
		Name:       "Pump",
		DistinctID: "9098",
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Properties: Properties{{"Total", 150}},
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"event", "distinct_id", "timestamp", "properties"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("expected key %q in JSON", key)
		}
	}
}

func TestNotesOrNil(t *testing.T) {
	r := Record{}
	if r.NotesOrNil() != nil {
		t.Fatal("expected nil for empty notes")
	}
	r.Notes = "fussy"
	if got := r.NotesOrNil(); got == nil || *got != "fussy" {
		t.Fatalf("expected fussy, got %v", got)
	}
}
