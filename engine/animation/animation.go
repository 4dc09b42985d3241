// Package animation resolves time-dependent attribute values for draw commands.
//
// Commands carry their target values directly; an Animation describes how the attribute
// travels from wherever it was toward that target over a time window.
package animation

import "github.com/Carmen-Shannon/oxy-scene/common"

// Selector names the attribute an Animation applies to.
type Selector uint8

const (
	// SelectorAll applies to every animatable attribute of a command.
	SelectorAll Selector = iota
	// SelectorTransform applies to the command transform.
	SelectorTransform
	// SelectorColor applies to light color and intensity.
	SelectorColor
)

func (s Selector) String() string {
	switch s {
	case SelectorAll:
		return "all"
	case SelectorTransform:
		return "transform"
	case SelectorColor:
		return "color"
	default:
		return "unknown"
	}
}

// Matches reports whether an animation declared with s applies to the attribute other.
func (s Selector) Matches(other Selector) bool {
	return s == SelectorAll || other == SelectorAll || s == other
}

// Animation describes a transition of one attribute toward the command's current value.
type Animation struct {
	// Selector chooses the attribute being animated.
	Selector Selector
	// Start is the presentation time, in seconds, at which the transition begins.
	Start float64
	// Duration is the transition length in seconds. Non-positive durations complete instantly.
	Duration float64
	// Easing shapes normalized progress. Nil means Linear.
	Easing Easing
}

// key identifies an animation across update ticks. Easing funcs are not comparable.
type key struct {
	selector Selector
	start    float64
	duration float64
}

func (a Animation) key() key {
	return key{selector: a.Selector, start: a.Start, duration: a.Duration}
}

// Started reports whether the animation window has begun at time t.
func (a Animation) Started(t float64) bool {
	return t >= a.Start
}

// Progress returns the eased progress of the animation at time t, in [0, 1] for the
// built-in easings. Before Start it is 0; at or after Start+Duration it is exactly 1.
//
// Parameters:
//   - t: presentation time in seconds
//
// Returns:
//   - float32: eased progress
func (a Animation) Progress(t float64) float32 {
	if t < a.Start {
		return 0
	}
	if a.Duration <= 0 || t >= a.Start+a.Duration {
		return 1
	}
	p := float32(common.Clamp((t-a.Start)/a.Duration, 0, 1))
	if a.Easing == nil {
		return p
	}
	return a.Easing(p)
}

// Lerp blends two attribute values by f. f = 0 yields a and f = 1 must yield b exactly.
type Lerp[T any] func(a, b T, f float32) T

// Interpolate evaluates a single animation from from to to at time t.
//
// Parameters:
//   - from: the value at the start of the animation
//   - to: the target value
//   - a: the animation window and easing
//   - t: presentation time in seconds
//   - lerp: attribute blend function
//
// Returns:
//   - T: the resolved value, exactly to once the animation has completed
func Interpolate[T any](from, to T, a Animation, t float64, lerp Lerp[T]) T {
	if a.Duration <= 0 || t >= a.Start+a.Duration {
		return to
	}
	if t < a.Start {
		return from
	}
	return lerp(from, to, a.Progress(t))
}

// active returns the animation governing selector at time t. Among matching animations the
// latest declared one that has started wins. pending reports a matching animation exists
// but none has started yet.
func active(t float64, anims []Animation, selector Selector) (found Animation, ok, pending bool) {
	for _, a := range anims {
		if !a.Selector.Matches(selector) {
			continue
		}
		if a.Started(t) {
			found, ok = a, true
		} else {
			pending = true
		}
	}
	return found, ok, pending && !ok
}

// Resolve computes the value of one attribute at time t without retaining any state.
// The animation start value is prev when present, otherwise cur.
//
// Parameters:
//   - t: presentation time in seconds
//   - cur: the command's current (target) value
//   - prev: the previously resolved value, or nil
//   - anims: the command's animations in declaration order
//   - selector: the attribute being resolved
//   - lerp: attribute blend function
//
// Returns:
//   - T: cur when no animation matches, the start value before the first one begins,
//     otherwise the interpolated value
func Resolve[T any](t float64, cur T, prev *T, anims []Animation, selector Selector, lerp Lerp[T]) T {
	from := cur
	if prev != nil {
		from = *prev
	}
	a, ok, pending := active(t, anims, selector)
	switch {
	case ok:
		return Interpolate(from, cur, a, t, lerp)
	case pending:
		return from
	default:
		return cur
	}
}
