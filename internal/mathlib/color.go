// Package mathlib holds the numeric routines generated code relies on:
// pixel fetching with edge behaviour, colour packing and conversion, the
// dense linear solver, gradient noise and small matrices. The native
// runtime template carries C versions of the same routines.
package mathlib

import (
	"image/color"
	"math"
)

// Color is an RGBA colour packed as 0xRRGGBBAA
type Color uint32

// MakeColor packs four 8-bit channels
func MakeColor(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

func (c Color) R() uint8 { return uint8(c >> 24) }
func (c Color) G() uint8 { return uint8(c >> 16) }
func (c Color) B() uint8 { return uint8(c >> 8) }
func (c Color) A() uint8 { return uint8(c) }

func (c Color) RedFloat() float32   { return float32(c.R()) / 255 }
func (c Color) GreenFloat() float32 { return float32(c.G()) / 255 }
func (c Color) BlueFloat() float32  { return float32(c.B()) / 255 }
func (c Color) AlphaFloat() float32 { return float32(c.A()) / 255 }

// ChannelByte converts a float channel in [0,1] to a byte, clamping
func ChannelByte(f float32) uint8 {
	switch {
	case f != f || f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

// ColorFromFloats packs four float channels in [0,1]
func ColorFromFloats(r, g, b, a float32) Color {
	return MakeColor(ChannelByte(r), ChannelByte(g), ChannelByte(b), ChannelByte(a))
}

// ColorFromImage converts any image colour, undoing alpha premultiplication
func ColorFromImage(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return MakeColor(n.R, n.G, n.B, n.A)
}

// NRGBA converts c to the standard library's non-premultiplied colour
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// RGBToHSV converts after clamping the inputs to [0,1]. Hue is 0 when
// saturation is 0.
func RGBToHSV(r, g, b float32) (h, s, v float32) {
	r, g, b = clamp01(r), clamp01(g), clamp01(b)

	max := float32(math.Max(float64(r), math.Max(float64(g), float64(b))))
	min := float32(math.Min(float64(r), math.Min(float64(g), float64(b))))
	v = max

	if max != 0 {
		s = (max - min) / max
	}
	if s == 0 {
		return 0, s, v
	}

	delta := max - min
	switch max {
	case r:
		h = (g - b) / delta
	case g:
		h = 2 + (b-r)/delta
	default:
		h = 4 + (r-g)/delta
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h, s, v
}

// HSVToRGB converts after clamping the inputs to [0,1]
func HSVToRGB(h, s, v float32) (r, g, b float32) {
	h, s, v = clamp01(h), clamp01(s), clamp01(v)

	if s == 0 {
		return v, v, v
	}

	if h >= 1 {
		h = 0
	}
	h *= 6

	i := int(math.Floor(float64(h)))
	f := h - float32(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch i {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
