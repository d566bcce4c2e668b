package mauro_test

import (
	"testing"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

func TestCoerce(t *testing.T) {
	for _, raw := range []string{"NULL", "null", "NuLL", ""} {
		if got := mauro.Coerce(raw); got != mauro.Null {
			t.Errorf("Coerce(%q) = %+v, want semantic null", raw, got)
		}
	}
	for _, raw := range []string{"alice", " null", "nullable", "0", " "} {
		got := mauro.Coerce(raw)
		if !got.Present || got.Value != raw {
			t.Errorf("Coerce(%q) = %+v, want passthrough", raw, got)
		}
	}
}

func TestHierarchy_Merge_OverrideWins(t *testing.T) {
	file := mauro.Hierarchy{
		DB:     mauro.Text("FileDB"),
		Schema: mauro.Text("dbo"),
		Table:  mauro.Text("FileTable"),
	}
	overrides := mauro.Hierarchy{
		DB:    mauro.Text("OverrideDB"),
		Field: mauro.Text("Col"),
	}

	got := file.Merge(overrides)
	want := mauro.Hierarchy{
		DB:     mauro.Text("OverrideDB"),
		Schema: mauro.Text("dbo"),
		Table:  mauro.Text("FileTable"),
		Field:  mauro.Text("Col"),
	}
	if got != want {
		t.Errorf("Merge() = %+v, want %+v", got, want)
	}
	if again := got.Merge(overrides); again != got {
		t.Errorf("Merge is not idempotent: %+v vs %+v", again, got)
	}
}

func TestHierarchyPath_String(t *testing.T) {
	p := mauro.HierarchyPath{Segments: []mauro.Segment{
		{Column: mauro.ColumnDB, Role: mauro.RoleDataModel, Name: "Sales"},
		{Column: mauro.ColumnTable, Role: mauro.RoleDataClass, Name: "Orders"},
		{Column: mauro.ColumnField, Role: mauro.RoleDataElement, Name: "CustomerId"},
	}}
	if got := p.String(); got != "dm:Sales|dc:Orders|de:CustomerId" {
		t.Errorf("String() = %q", got)
	}
	if p.Depth() != 3 || p.Leaf().Name != "CustomerId" {
		t.Errorf("Depth/Leaf = %d/%q", p.Depth(), p.Leaf().Name)
	}
}

func TestProperties_Apply_Idempotent(t *testing.T) {
	intent := mauro.PropertyWriteIntent{
		Key:    mauro.PropertyKey{Namespace: []string{"temp"}, Name: "owner"},
		Value:  mauro.Text("alice"),
		Action: mauro.ActionSet,
	}

	var once, twice mauro.Properties
	once.Apply(intent)
	twice.Apply(intent)
	twice.Apply(intent)

	if once.Values["temp.owner"] != "alice" || twice.Values["temp.owner"] != "alice" {
		t.Fatalf("unexpected values: once=%v twice=%v", once.Values, twice.Values)
	}
	if len(once.Values) != len(twice.Values) {
		t.Errorf("applying twice changed state: %v vs %v", once.Values, twice.Values)
	}
}

func TestProperties_Apply_SkipAndDelete(t *testing.T) {
	key := mauro.PropertyKey{Namespace: []string{"owner"}, Name: "name"}
	p := mauro.Properties{Values: map[string]string{"owner.name": "bob"}}

	p.Apply(mauro.PropertyWriteIntent{Key: key, Action: mauro.ActionSkip})
	if p.Values["owner.name"] != "bob" {
		t.Errorf("Skip must leave the existing value, got %v", p.Values)
	}

	p.Apply(mauro.PropertyWriteIntent{Key: key, Action: mauro.ActionDelete})
	if _, ok := p.Values["owner.name"]; ok {
		t.Errorf("Delete must remove the value, got %v", p.Values)
	}

	p.Apply(mauro.PropertyWriteIntent{Target: mauro.TargetDescription, Value: mauro.Text("desc"), Action: mauro.ActionSet})
	if p.Description != mauro.Text("desc") {
		t.Errorf("description = %+v", p.Description)
	}
}
