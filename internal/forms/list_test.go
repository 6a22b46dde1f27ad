package forms

import (
	"reflect"
	"testing"
)

func TestListEditing(t *testing.T) {
	list := AppendItem(nil, "fast delivery")
	list = AppendItem(list, "good support")
	list = AppendItem(list, "cheap")

	updated, err := UpdateItem(list, 1, "great support")
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	want := []string{"fast delivery", "great support", "cheap"}
	if !reflect.DeepEqual(updated, want) {
		t.Fatalf("UpdateItem = %v, want %v", updated, want)
	}
	if list[1] != "good support" {
		t.Fatalf("UpdateItem mutated the original list: %v", list)
	}

	removed, err := RemoveItem(updated, 0)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	want = []string{"great support", "cheap"}
	if !reflect.DeepEqual(removed, want) {
		t.Fatalf("RemoveItem = %v, want %v", removed, want)
	}
}

func TestListIndexOutOfRange(t *testing.T) {
	list := []string{"a"}
	if _, err := UpdateItem(list, 1, "b"); err == nil {
		t.Fatal("UpdateItem accepted out-of-range index")
	}
	if _, err := UpdateItem(list, -1, "b"); err == nil {
		t.Fatal("UpdateItem accepted negative index")
	}
	if _, err := RemoveItem(list, 3); err == nil {
		t.Fatal("RemoveItem accepted out-of-range index")
	}
}

func TestCompactBlank(t *testing.T) {
	in := []string{"first", "", "  ", "second", "\t", "third"}
	got := CompactBlank(in)
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CompactBlank = %v, want %v", got, want)
	}
	if got := CompactBlank(nil); len(got) != 0 {
		t.Fatalf("CompactBlank(nil) = %v, want empty", got)
	}
}
