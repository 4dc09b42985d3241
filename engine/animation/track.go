package animation

// Track resolves one attribute across frames. It remembers the last resolved value and
// captures the start value of each animation the first time it becomes active, so that
// repeated update ticks carrying the same animation do not move its origin.
//
// The zero Track is ready to use.
type Track[T any] struct {
	last     T
	hasLast  bool
	captured key
	hasCap   bool
	from     T
}

// Last returns the most recently resolved value and whether one exists.
func (tr *Track[T]) Last() (T, bool) {
	return tr.last, tr.hasLast
}

// Reset forgets the resolved history, as if the attribute had never been seen.
func (tr *Track[T]) Reset() {
	*tr = Track[T]{}
}

// Resolve computes the attribute value at time t and records it as the new last value.
//
// Parameters:
//   - t: presentation time in seconds
//   - cur: the command's current (target) value
//   - anims: the command's animations in declaration order
//   - selector: the attribute being resolved
//   - lerp: attribute blend function
//
// Returns:
//   - T: the value to render at t
func (tr *Track[T]) Resolve(t float64, cur T, anims []Animation, selector Selector, lerp Lerp[T]) T {
	var value T
	a, ok, pending := active(t, anims, selector)
	switch {
	case ok:
		if !tr.hasCap || tr.captured != a.key() {
			tr.from = cur
			if tr.hasLast {
				tr.from = tr.last
			}
			tr.captured = a.key()
			tr.hasCap = true
		}
		value = Interpolate(tr.from, cur, a, t, lerp)
	case pending && tr.hasLast:
		value = tr.last
	default:
		tr.hasCap = false
		value = cur
	}
	tr.last = value
	tr.hasLast = true
	return value
}
