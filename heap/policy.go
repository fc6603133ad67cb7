package heap

// Growth policy defaults.
const (
	// DefaultHeadroomFactor is the slack multiplier applied to the live
	// count when sizing the arena after a collection.
	DefaultHeadroomFactor = 1.5

	// DefaultMinCapacity is the floor, in object slots, below which the
	// headroom policy never shrinks the arena.
	DefaultMinCapacity = 16
)

// GrowthPolicy decides the arena capacity after each collection.
type GrowthPolicy interface {
	// NextCapacity returns the capacity, in object slots, the arena
	// should have after a collection that left live objects reachable,
	// with pending slots about to be allocated. current is the capacity
	// going into the collection.
	NextCapacity(live, pending, current int) int

	// String names the policy for logs and diagnostics.
	String() string
}

// fixedPolicy keeps the capacity chosen at construction forever.
// Allocation fails once the live graph plus the pending allocation no
// longer fits.
type fixedPolicy struct{}

// NewFixedPolicy returns the fixed-capacity growth policy.
func NewFixedPolicy() GrowthPolicy {
	return fixedPolicy{}
}

func (fixedPolicy) NextCapacity(live, pending, current int) int {
	return current
}

func (fixedPolicy) String() string {
	return "fixed"
}

// headroomPolicy resizes the arena after every collection to the live
// count times a slack factor, plus the pending allocation, clamped to a
// floor. The arena can shrink as well as grow; with Factor > 1 the target
// always holds the live graph and the pending allocation, so allocation
// under this policy never fails.
type headroomPolicy struct {
	factor float64
	min    int
}

// NewHeadroomPolicy returns a growth policy that keeps factor times the
// live count in slack and never sizes the arena below min slots. Zero
// values select DefaultHeadroomFactor and DefaultMinCapacity.
func NewHeadroomPolicy(factor float64, min int) GrowthPolicy {
	if factor == 0 {
		factor = DefaultHeadroomFactor
	}
	if min == 0 {
		min = DefaultMinCapacity
	}
	return headroomPolicy{factor: factor, min: min}
}

func (p headroomPolicy) NextCapacity(live, pending, current int) int {
	target := int(float64(live)*p.factor) + pending
	if target < p.min {
		target = p.min
	}
	return target
}

func (p headroomPolicy) String() string {
	return "headroom"
}
