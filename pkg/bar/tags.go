package bar

import "math/bits"

// MaxTags is the number of tags a Tags set can hold.
const MaxTags = 32

// Tags is a tag bitset: bit i is tag i.
type Tags uint32

// AllTags has every bit set.
const AllTags = ^Tags(0)

func (t Tags) Has(i int) bool {
	return i >= 0 && i < MaxTags && t&(1<<i) != 0
}

// Set returns t with tag i set.
func (t Tags) Set(i int) Tags {
	return t | 1<<i
}

// Clear returns t with tag i cleared.
func (t Tags) Clear(i int) Tags {
	return t &^ (1 << i)
}

// Toggle returns t with tag i flipped.
func (t Tags) Toggle(i int) Tags {
	return t ^ 1<<i
}

// With sets or clears tag i.
func (t Tags) With(i int, on bool) Tags {
	if on {
		return t.Set(i)
	}
	return t.Clear(i)
}

// Count returns the number of set tags.
func (t Tags) Count() int {
	return bits.OnesCount32(uint32(t))
}
