package resource

import "strings"

// Key is an ordered tuple identifying one cached server resource, e.g.
// NewKey("reviews", productID). Equality is structural: two keys with
// equal components always address the same cache slot.
type Key []string

// NewKey builds a key from its components. Empty components are kept as-is
// so structural equality stays predictable.
func NewKey(parts ...string) Key {
	k := make(Key, len(parts))
	copy(k, parts)
	return k
}

// String returns the canonical slash-joined form used for map slots and
// singleflight grouping.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// Family returns the first component, which selects the staleness policy.
func (k Key) Family() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// Equal reports component-wise equality.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether the leading components of k match prefix.
// Every key has the empty prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
