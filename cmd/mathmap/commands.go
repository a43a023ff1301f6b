// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"nikand.dev/go/cli"
	tlerrors "tlog.app/go/errors"

	"mathmap/internal/builtins"
	"mathmap/internal/config"
	"mathmap/internal/errors"
	"mathmap/internal/exprtree"
	"mathmap/internal/ir"
	"mathmap/internal/mathlib"
	"mathmap/internal/pipeline"
	"mathmap/internal/render"
)

// session is one command invocation on one interchange file
type session struct {
	start time.Time
	path  string
	cfg   *config.Config
	lib   *builtins.Library
	tree  *exprtree.Program
}

func open(c *cli.Command) (*session, error) {
	s := &session{start: time.Now(), lib: builtins.New()}

	if len(c.Args) != 1 {
		return nil, tlerrors.New("expected one interchange file, got %d", len(c.Args))
	}
	s.path = c.Args[0]

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if b := c.String("backend"); b != "" {
		cfg.Backend = b
	}
	if t := c.String("time"); t != "" {
		v, err := strconv.ParseFloat(t, 32)
		if err != nil {
			return nil, tlerrors.Wrap(err, "time %q", t)
		}
		cfg.Render.Time = float32(v)
	}
	if v := c.Int("verbosity"); v >= 0 {
		cfg.Verbosity = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s.cfg = cfg

	commonlog.Configure(cfg.Verbosity, nil)

	source, err := os.ReadFile(s.path)
	if err != nil {
		return nil, tlerrors.Wrap(err, "read %s", s.path)
	}

	s.tree, err = exprtree.Read(s.path, string(source), s.lib)
	if err != nil {
		var re *exprtree.ReadError
		if stderrors.As(err, &re) {
			reporter := errors.NewErrorReporter(s.path, string(source))
			fmt.Fprint(os.Stderr, reporter.FormatAll(re.Diagnostics))
			color.Red("Reading %s failed after %s", s.path, formatDuration(time.Since(s.start)))
			return nil, tlerrors.New("%d diagnostics", len(re.Diagnostics))
		}
		return nil, err
	}

	return s, nil
}

func (s *session) lower() (*ir.Program, error) {
	p, err := pipeline.Lower(s.tree.Root, s.lib)
	if err != nil {
		return nil, tlerrors.Wrap(err, "lower %s", s.path)
	}
	return p, nil
}

func (s *session) compile(ctx context.Context) (pipeline.Function, error) {
	backend, err := s.cfg.NewBackend()
	if err != nil {
		return nil, err
	}
	fn, err := pipeline.Compile(ctx, s.tree.Root, s.lib, backend)
	if err != nil {
		var ee *errors.ExternalError
		if stderrors.As(err, &ee) {
			fmt.Fprint(os.Stderr, errors.FormatExternal(ee))
			color.Red("Compiling %s failed after %s", s.path, formatDuration(time.Since(s.start)))
			return nil, tlerrors.New("%s stage failed", ee.Stage)
		}
		return nil, err
	}
	return fn, nil
}

// environment loads the comma separated images named by the image flag
func (s *session) environment(c *cli.Command) (*pipeline.Environment, error) {
	var images []*mathlib.Drawable
	for _, path := range strings.Split(c.String("image"), ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		img, err := render.LoadImage(path)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return s.cfg.Environment(images)
}

func (s *session) done(format string, args ...any) {
	color.Green("%s in %s", fmt.Sprintf(format, args...), formatDuration(time.Since(s.start)))
}

func irAct(c *cli.Command) error {
	s, err := open(c)
	if err != nil {
		return err
	}

	p, err := s.lower()
	if err != nil {
		return err
	}

	fmt.Print(ir.Print(p))
	s.done("Lowered %s", s.path)
	return nil
}

func cAct(c *cli.Command) error {
	s, err := open(c)
	if err != nil {
		return err
	}

	p, err := s.lower()
	if err != nil {
		return err
	}

	native := *s.cfg
	native.Backend = config.BackendNative
	backend, err := native.NewBackend()
	if err != nil {
		return err
	}

	src, err := backend.(*pipeline.NativeBackend).Source(p)
	if err != nil {
		return err
	}

	fmt.Print(src)
	s.done("Generated C for %s", s.path)
	return nil
}

func runAct(c *cli.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := open(c)
	if err != nil {
		return err
	}

	env, err := s.environment(c)
	if err != nil {
		return err
	}
	env.Output = os.Stdout

	width, height := c.Int("width"), c.Int("height")
	env.Sampler.MiddleX = float32(width) / 2
	env.Sampler.MiddleY = float32(height) / 2

	fn, err := s.compile(ctx)
	if err != nil {
		return err
	}
	defer fn.Close()

	ev, err := fn.NewEvaluator(env)
	if err != nil {
		return err
	}

	in := render.Coordinates(c.Int("col"), c.Int("row"), width, height, s.cfg.Render.Time)
	result, err := ev.Run(&in)
	if err != nil {
		return err
	}

	parts := make([]string, len(result))
	for i, v := range result {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	fmt.Printf("(%s)\n", strings.Join(parts, " "))

	s.done("Evaluated %s with the %s backend", s.path, s.cfg.Backend)
	return nil
}

func renderAct(c *cli.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := open(c)
	if err != nil {
		return err
	}

	env, err := s.environment(c)
	if err != nil {
		return err
	}

	fn, err := s.compile(ctx)
	if err != nil {
		return err
	}
	defer fn.Close()

	workers := c.Int("workers")
	if workers == 0 {
		workers = s.cfg.Render.Workers
	}

	img, err := render.Render(ctx, fn, env, render.Options{
		Width:   c.Int("width"),
		Height:  c.Int("height"),
		Workers: workers,
		Time:    s.cfg.Render.Time,
	})
	if err != nil {
		return err
	}

	output := c.String("output")
	if err := render.SaveImage(output, img); err != nil {
		return err
	}

	s.done("Rendered %s to %s with the %s backend", s.path, output, s.cfg.Backend)
	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
