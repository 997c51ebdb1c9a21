package dataset

import (
	"sync"

	roaring "github.com/RoaringBitmap/roaring"
)

// Diagnostics collects degenerate examples: examples whose filtered token list
// was empty and were emitted with no feature signal. Positions are global
// cursor values, so repeated epochs mark the same bits while Count keeps
// growing per emission. A Diagnostics may be shared by several builders.
type Diagnostics struct {
	mu         sync.Mutex
	degenerate *roaring.Bitmap
	count      int
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{degenerate: roaring.New()}
}

func (d *Diagnostics) recordDegenerate(position int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.degenerate.Add(uint32(position))
	d.count++
}

// DegenerateCount is the number of degenerate emissions recorded so far.
func (d *Diagnostics) DegenerateCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// DegeneratePositions returns a copy of the set of degenerate positions.
func (d *Diagnostics) DegeneratePositions() *roaring.Bitmap {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := roaring.New()
	c.Or(d.degenerate) // copy
	return c
}

// IsDegenerate reports whether the example at position was ever degenerate.
func (d *Diagnostics) IsDegenerate(position int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.degenerate.Contains(uint32(position))
}

// Reset clears everything recorded.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.degenerate.Clear()
	d.count = 0
}
