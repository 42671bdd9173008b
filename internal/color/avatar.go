// Package color generates placeholder colors for users without an
// uploaded avatar image.
package color

import "fmt"

// ForHandle returns a deterministic hex color for a handle. The same
// handle always maps to the same color, so clients can render stable
// placeholder avatars before (or instead of) an image upload.
func ForHandle(handle string) string {
	h := 0
	for _, c := range handle {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}

	// Fixed saturation and lightness keep every hue readable on both
	// light and dark backgrounds.
	r, g, b := hslToRGB(float64(h%360), 0.4, 0.65)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts HSL (h in degrees, s and l in [0,1]) to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64
	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(r1 * 255), uint8(g1 * 255), uint8(b1 * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
