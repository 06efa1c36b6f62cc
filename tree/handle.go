package tree

import (
	"cmp"
	"fmt"
)

// Handle is an opaque reference to a node stored in an Arena.
//
// Handles are comparable and totally ordered. Each arena generation has its
// own epoch, and within it the index is issued monotonically and never
// reused, so two handles are equal iff they denote the same record. The
// zero Handle refers to nothing.
type Handle struct {
	index uint32
	epoch uint32
}

// IsZero reports whether h is the zero (invalid) handle.
func (h Handle) IsZero() bool {
	return h.index == 0
}

// Compare orders handles by epoch, then by issue order.
func (h Handle) Compare(other Handle) int {
	if c := cmp.Compare(h.epoch, other.epoch); c != 0 {
		return c
	}
	return cmp.Compare(h.index, other.index)
}

// Less reports whether h was issued before other.
func (h Handle) Less(other Handle) bool {
	return h.Compare(other) < 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "#nil"
	}
	if h.epoch > 0 {
		return fmt.Sprintf("#%d@%d", h.index, h.epoch)
	}
	return fmt.Sprintf("#%d", h.index)
}
