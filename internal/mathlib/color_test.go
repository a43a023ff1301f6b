package mathlib

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorPacking(t *testing.T) {
	c := MakeColor(0x11, 0x22, 0x33, 0x44)

	assert.Equal(t, Color(0x11223344), c)
	assert.Equal(t, uint8(0x11), c.R())
	assert.Equal(t, uint8(0x22), c.G())
	assert.Equal(t, uint8(0x33), c.B())
	assert.Equal(t, uint8(0x44), c.A())
	assert.InDelta(t, 1.0, MakeColor(255, 0, 0, 0).RedFloat(), 1e-6)
	assert.Equal(t, uint8(0x11), c.NRGBA().R)
}

func TestColorFromFloats(t *testing.T) {
	assert.Equal(t, MakeColor(255, 0, 128, 255), ColorFromFloats(1.5, -1, 0.5, 1))
	assert.Equal(t, MakeColor(10, 20, 30, 40), ColorFromImage(color.NRGBA{R: 10, G: 20, B: 30, A: 40}))
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float32
		h, s, v float32
	}{
		{"red", 1, 0, 0, 0, 1, 1},
		{"green", 0, 1, 0, 1.0 / 3, 1, 1},
		{"blue", 0, 0, 1, 2.0 / 3, 1, 1},
		{"grey has zero hue", 0.5, 0.5, 0.5, 0, 0, 0.5},
		{"black", 0, 0, 0, 0, 0, 0},
		{"inputs are clamped", 2, -1, -1, 0, 1, 1},
		{"magenta wraps hue", 1, 0, 1, 5.0 / 6, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := RGBToHSV(tt.r, tt.g, tt.b)
			assert.InDelta(t, tt.h, h, 1e-6)
			assert.InDelta(t, tt.s, s, 1e-6)
			assert.InDelta(t, tt.v, v, 1e-6)
		})
	}
}

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		name    string
		h, s, v float32
		r, g, b float32
	}{
		{"zero saturation is grey", 0.7, 0, 0.25, 0.25, 0.25, 0.25},
		{"red", 0, 1, 1, 1, 0, 0},
		{"hue one is red", 1, 1, 1, 1, 0, 0},
		{"cyan", 0.5, 1, 1, 0, 1, 1},
		{"inputs are clamped", 0.5, 3, 2, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := HSVToRGB(tt.h, tt.s, tt.v)
			assert.InDelta(t, tt.r, r, 1e-6)
			assert.InDelta(t, tt.g, g, 1e-6)
			assert.InDelta(t, tt.b, b, 1e-6)
		})
	}
}

func TestHSVRoundTrip(t *testing.T) {
	for _, rgb := range [][3]float32{{0.2, 0.4, 0.6}, {0.9, 0.1, 0.3}, {0.3, 0.8, 0.1}} {
		h, s, v := RGBToHSV(rgb[0], rgb[1], rgb[2])
		r, g, b := HSVToRGB(h, s, v)
		assert.InDelta(t, rgb[0], r, 1e-5)
		assert.InDelta(t, rgb[1], g, 1e-5)
		assert.InDelta(t, rgb[2], b, 1e-5)
	}
}
