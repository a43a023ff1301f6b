// Package render evaluates a compiled expression over every pixel of an
// output image, one row per task.
package render

import (
	"context"
	"image"
	"math"
	"runtime"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
	tlerrors "tlog.app/go/errors"

	"mathmap/internal/exprtree"
	"mathmap/internal/mathlib"
	"mathmap/internal/pipeline"
)

var log = commonlog.GetLogger("mathmap.render")

// Options describe one render
type Options struct {
	Width, Height int

	// Workers bounds the rows evaluated concurrently; 0 uses one per CPU
	Workers int

	// Time is the value of the t internal
	Time float32
}

// Coordinates returns the internals of pixel col, row in an image of the
// given size. The origin is the image centre with y growing upwards.
func Coordinates(col, row, width, height int, t float32) pipeline.Internals {
	var in pipeline.Internals

	mx, my := float32(width)/2, float32(height)/2
	x := float32(col) - mx
	y := my - float32(row)

	a := float32(math.Atan2(float64(y), float64(x)))
	if a < 0 {
		a += 2 * math.Pi
	}

	in.Set(exprtree.InternalX, x)
	in.Set(exprtree.InternalY, y)
	in.Set(exprtree.InternalR, float32(math.Hypot(float64(x), float64(y))))
	in.Set(exprtree.InternalA, a)
	in.Set(exprtree.InternalT, t)
	in.Set(exprtree.InternalXMax, mx)
	in.Set(exprtree.InternalYMax, my)
	in.Set(exprtree.InternalW, float32(width))
	in.Set(exprtree.InternalH, float32(height))
	in.Set(exprtree.InternalRMax, float32(math.Hypot(float64(mx), float64(my))))
	return in
}

// Pixel converts a result tuple to a colour: 1 component is grey, 3 are
// opaque RGB, 4 are RGBA.
func Pixel(result []float32) (mathlib.Color, error) {
	switch len(result) {
	case 1:
		return mathlib.ColorFromFloats(result[0], result[0], result[0], 1), nil
	case 3:
		return mathlib.ColorFromFloats(result[0], result[1], result[2], 1), nil
	case 4:
		return mathlib.ColorFromFloats(result[0], result[1], result[2], result[3]), nil
	}
	return 0, tlerrors.New("cannot display a %d component result as a pixel", len(result))
}

// Render evaluates fn at every pixel. env is shared by all evaluators and
// must not change while the render runs; its sampler is centred on the
// output image.
func Render(ctx context.Context, fn pipeline.Function, env *pipeline.Environment, opts Options) (*image.NRGBA, error) {
	switch fn.ResultLength() {
	case 1, 3, 4:
	default:
		return nil, tlerrors.New("cannot render a %d component result", fn.ResultLength())
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, tlerrors.New("invalid image size %dx%d", opts.Width, opts.Height)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, opts.Height)

	e := pipeline.Environment{}
	if env != nil {
		e = *env
	}
	e.Sampler.MiddleX = float32(opts.Width) / 2
	e.Sampler.MiddleY = float32(opts.Height) / 2

	evaluators := make(chan pipeline.Evaluator, workers)
	for i := 0; i < workers; i++ {
		ev, err := fn.NewEvaluator(&e)
		if err != nil {
			return nil, err
		}
		evaluators <- ev
	}

	log.Debugf("rendering %dx%d with %d workers", opts.Width, opts.Height, workers)

	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for row := 0; row < opts.Height; row++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ev := <-evaluators
			defer func() { evaluators <- ev }()

			for col := 0; col < opts.Width; col++ {
				in := Coordinates(col, row, opts.Width, opts.Height, opts.Time)
				result, err := ev.Run(&in)
				if err != nil {
					return tlerrors.Wrap(err, "pixel %d,%d", col, row)
				}
				c, err := Pixel(result)
				if err != nil {
					return err
				}
				img.SetNRGBA(col, row, c.NRGBA())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Infof("rendered %dx%d", opts.Width, opts.Height)
	return img, nil
}
