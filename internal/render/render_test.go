package render

import (
	"context"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathmap/internal/builtins"
	"mathmap/internal/exprtree"
	"mathmap/internal/mathlib"
	"mathmap/internal/pipeline"
)

func compile(t *testing.T, src string) pipeline.Function {
	t.Helper()
	lib := builtins.New()
	tree, err := exprtree.Read("test.mmx", src, lib)
	require.NoError(t, err)
	fn, err := pipeline.Compile(context.Background(), tree.Root, lib, pipeline.InterpBackend{})
	require.NoError(t, err)
	return fn
}

func TestCoordinates(t *testing.T) {
	in := Coordinates(0, 0, 4, 2, 0.5)

	assert.Equal(t, float32(-2), in[exprtree.InternalX])
	assert.Equal(t, float32(1), in[exprtree.InternalY])
	assert.InDelta(t, math.Sqrt(5), in[exprtree.InternalR], 1e-6)
	assert.Equal(t, float32(0.5), in[exprtree.InternalT])
	assert.Equal(t, float32(2), in[exprtree.InternalXMax])
	assert.Equal(t, float32(4), in[exprtree.InternalW])

	below := Coordinates(2, 2, 4, 2, 0)
	assert.InDelta(t, 1.5*math.Pi, below[exprtree.InternalA], 1e-6, "angles are in [0, 2pi)")
}

func TestPixel(t *testing.T) {
	c, err := Pixel([]float32{1})
	require.NoError(t, err)
	assert.Equal(t, mathlib.MakeColor(255, 255, 255, 255), c)

	c, err = Pixel([]float32{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, mathlib.MakeColor(255, 0, 0, 255), c)

	c, err = Pixel([]float32{0, 0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, mathlib.MakeColor(0, 0, 255, 0), c)

	_, err = Pixel([]float32{1, 2})
	assert.Error(t, err)
}

func TestRenderGradient(t *testing.T) {
	fn := compile(t, `(tuple (call / (call + (internal x) (internal X)) (internal W)) (int 0) (int 0) (int 1))`)

	img, err := Render(context.Background(), fn, nil, Options{Width: 4, Height: 3, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			expected := color.NRGBA{R: mathlib.ChannelByte(float32(col) / 4), A: 255}
			assert.Equal(t, expected, img.NRGBAAt(col, row), "pixel %d,%d", col, row)
		}
	}
}

func TestRenderIdentityMapReproducesSource(t *testing.T) {
	src := mathlib.NewDrawable(5, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			src.Set(x, y, mathlib.MakeColor(uint8(x*50), uint8(y*60), 9, 255))
		}
	}
	env := &pipeline.Environment{Sampler: mathlib.Sampler{Drawables: []*mathlib.Drawable{src}}}
	fn := compile(t, `(call origVal (tuple (internal x) (internal y)) (userval-image 0))`)

	img, err := Render(context.Background(), fn, env, Options{Width: 5, Height: 4})
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, src.At(x, y).NRGBA(), img.NRGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
	assert.Zero(t, env.Sampler.MiddleX, "the caller's environment is not modified")
}

func TestRenderRejectsUnrenderableResults(t *testing.T) {
	fn := compile(t, `(tuple-const 1 2)`)

	_, err := Render(context.Background(), fn, nil, Options{Width: 2, Height: 2})
	assert.Error(t, err)

	fn = compile(t, `(int 1)`)
	_, err = Render(context.Background(), fn, nil, Options{Width: 0, Height: 2})
	assert.Error(t, err)
}

func TestRenderStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Render(ctx, compile(t, `(int 1)`), nil, Options{Width: 8, Height: 8, Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImageRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{R: 200, A: 255})

	for _, name := range []string{"out.png", "out.bmp", "out.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveImage(path, img))

			d, err := LoadImage(path)
			require.NoError(t, err)
			assert.Equal(t, 3, d.Width)
			assert.Equal(t, 2, d.Height)
			assert.Equal(t, mathlib.MakeColor(10, 20, 30, 255), d.At(1, 1))
			assert.Equal(t, mathlib.MakeColor(200, 0, 0, 255), d.At(2, 0))
		})
	}
}

func TestDrawableFromOffsetImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(2, 2, 4, 3))
	img.Set(3, 2, color.RGBA{G: 255, A: 255})

	d := Drawable(img)

	assert.Equal(t, 2, d.Width)
	assert.Equal(t, 1, d.Height)
	assert.Equal(t, mathlib.MakeColor(0, 255, 0, 255), d.At(1, 0))
}
