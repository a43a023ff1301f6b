package mathlib

import (
	"fmt"
	"math"

	tlerrors "tlog.app/go/errors"
)

// EdgeMode selects what a fetch outside the drawable returns
type EdgeMode int

const (
	EdgeColor EdgeMode = iota
	EdgeClamp
	EdgeWrap
	EdgeReflect
)

var edgeModeNames = []string{"color", "clamp", "wrap", "reflect"}

func (m EdgeMode) String() string {
	if m >= 0 && int(m) < len(edgeModeNames) {
		return edgeModeNames[m]
	}
	return fmt.Sprintf("edge(%d)", int(m))
}

// ParseEdgeMode resolves a configured edge mode name
func ParseEdgeMode(name string) (EdgeMode, error) {
	for i, n := range edgeModeNames {
		if n == name {
			return EdgeMode(i), nil
		}
	}
	return 0, tlerrors.New("unknown edge mode %q, expected one of %v", name, edgeModeNames)
}

// Drawable is an 8-bit RGBA pixel buffer
type Drawable struct {
	Width, Height int
	RowStride     int
	Pix           []byte
}

// NewDrawable allocates a transparent black drawable
func NewDrawable(width, height int) *Drawable {
	return &Drawable{
		Width:     width,
		Height:    height,
		RowStride: width * 4,
		Pix:       make([]byte, width*height*4),
	}
}

// At returns the pixel at x, y, which must be inside the drawable
func (d *Drawable) At(x, y int) Color {
	p := d.Pix[y*d.RowStride+x*4:]
	return MakeColor(p[0], p[1], p[2], p[3])
}

// Set stores c at x, y, which must be inside the drawable
func (d *Drawable) Set(x, y int, c Color) {
	p := d.Pix[y*d.RowStride+x*4:]
	p[0], p[1], p[2], p[3] = c.R(), c.G(), c.B(), c.A()
}

// Sampler fetches source pixels in expression coordinates
type Sampler struct {
	Drawables []*Drawable
	Edge      EdgeMode
	EdgeColor Color

	MiddleX, MiddleY float32
	OriginX, OriginY float32

	Supersampling bool
	Intersampling bool
}

func wrap(x, size int) int {
	if x < 0 {
		x = x%size + size
		if x == size {
			x = 0
		}
	} else if x >= size {
		x %= size
	}
	return x
}

func reflect(x, size int) int {
	if x < 0 {
		return -x % size
	}
	if x >= size {
		return (size - 1) - x%size
	}
	return x
}

func clampIndex(x, size int) int {
	if x < 0 {
		return 0
	}
	if x >= size {
		return size - 1
	}
	return x
}

// GetPixel fetches pixel x, y of the given drawable applying the edge mode
func (s *Sampler) GetPixel(index, x, y int) Color {
	if index < 0 || index >= len(s.Drawables) || s.Drawables[index] == nil {
		return s.EdgeColor
	}
	d := s.Drawables[index]
	if d.Width <= 0 || d.Height <= 0 {
		return s.EdgeColor
	}

	switch s.Edge {
	case EdgeWrap:
		x, y = wrap(x, d.Width), wrap(y, d.Height)
	case EdgeReflect:
		x, y = reflect(x, d.Width), reflect(y, d.Height)
	case EdgeClamp:
		x, y = clampIndex(x, d.Width), clampIndex(y, d.Height)
	}

	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return s.EdgeColor
	}
	return d.At(x, y)
}

func (s *Sampler) toPixel(x, y float32) (float32, float32) {
	return x + s.MiddleX + s.OriginX, -y + s.MiddleY + s.OriginY
}

// Sample fetches the source colour at expression coordinates x, y
func (s *Sampler) Sample(x, y float32, index int) Color {
	if s.Intersampling {
		return s.OrigValIntersample(x, y, index)
	}
	return s.OrigVal(x, y, index)
}

// OrigVal fetches the nearest source pixel
func (s *Sampler) OrigVal(x, y float32, index int) Color {
	x, y = s.toPixel(x, y)
	if !s.Supersampling {
		x += 0.5
		y += 0.5
	}
	return s.GetPixel(index, int(math.Floor(float64(x))), int(math.Floor(float64(y))))
}

// OrigValIntersample blends the four neighbouring source pixels bilinearly
func (s *Sampler) OrigValIntersample(x, y float32, index int) Color {
	x, y = s.toPixel(x, y)

	x1 := int(math.Floor(float64(x)))
	y1 := int(math.Floor(float64(y)))
	x2, y2 := x1+1, y1+1

	x2fact := x - float32(x1)
	y2fact := y - float32(y1)
	x1fact := 1 - x2fact
	y1fact := 1 - y2fact

	pixels := [4]Color{
		s.GetPixel(index, x1, y1),
		s.GetPixel(index, x1, y2),
		s.GetPixel(index, x2, y1),
		s.GetPixel(index, x2, y2),
	}
	facts := [4]float32{x1fact * y1fact, x1fact * y2fact, x2fact * y1fact, x2fact * y2fact}

	var channels [4]uint8
	for ch := 0; ch < 4; ch++ {
		shift := uint(24 - 8*ch)
		var sum float32
		for i, p := range pixels {
			sum += float32(uint8(p>>shift)) * facts[i]
		}
		channels[ch] = uint8(sum)
	}
	return MakeColor(channels[0], channels[1], channels[2], channels[3])
}

// SampleCurve looks up a curve sampled at evenly spaced points over [0,1]
func SampleCurve(points []float32, pos float32) float32 {
	if len(points) == 0 {
		return 0
	}
	return points[curveIndex(len(points), pos)]
}

// SampleGradient looks up a gradient sampled at evenly spaced points
func SampleGradient(points []Color, pos float32) Color {
	if len(points) == 0 {
		return 0
	}
	return points[curveIndex(len(points), pos)]
}

func curveIndex(n int, pos float32) int {
	if pos != pos {
		return 0
	}
	return clampIndex(int(clamp01(pos)*float32(n-1)), n)
}
