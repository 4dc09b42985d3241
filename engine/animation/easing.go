package animation

// Easing maps linear progress in [0, 1] to eased progress. It must map 0 to 0 and 1 to 1.
type Easing func(p float32) float32

// Linear leaves progress unchanged.
func Linear(p float32) float32 { return p }

// EaseIn accelerates from rest.
func EaseIn(p float32) float32 { return p * p }

// EaseOut decelerates to rest.
func EaseOut(p float32) float32 { return p * (2 - p) }

// EaseInOut accelerates through the first half and decelerates through the second.
func EaseInOut(p float32) float32 {
	if p < 0.5 {
		return 2 * p * p
	}
	return -1 + (4-2*p)*p
}

func EaseInCubic(p float32) float32 { return p * p * p }

func EaseOutCubic(p float32) float32 {
	q := p - 1
	return q*q*q + 1
}
