package forms

import (
	"fmt"
	"strings"
)

// List-valued fields (pros/cons, plan features, custom chat messages)
// are edited by index and keep their order; blank entries are filtered
// out just before submission, never while editing.

// AppendItem adds a value at the end of the list.
func AppendItem(list []string, value string) []string {
	return append(list, value)
}

// UpdateItem replaces the value at index, preserving order.
func UpdateItem(list []string, index int, value string) ([]string, error) {
	if index < 0 || index >= len(list) {
		return list, fmt.Errorf("index %d out of range (len %d)", index, len(list))
	}
	out := make([]string, len(list))
	copy(out, list)
	out[index] = value
	return out, nil
}

// RemoveItem drops the value at index, preserving the order of the rest.
func RemoveItem(list []string, index int) ([]string, error) {
	if index < 0 || index >= len(list) {
		return list, fmt.Errorf("index %d out of range (len %d)", index, len(list))
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:index]...)
	out = append(out, list[index+1:]...)
	return out, nil
}

// CompactBlank returns the list without empty or whitespace-only
// entries, in the original order.
func CompactBlank(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
