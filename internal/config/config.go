// Package config loads the driver configuration: a YAML file layered over
// built-in defaults, then MATHMAP_* environment variables on top.
package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	tlerrors "tlog.app/go/errors"

	"mathmap/internal/mathlib"
	"mathmap/internal/pipeline"
)

const (
	BackendNative = "native"
	BackendInterp = "interp"
)

// Config is the complete driver configuration
type Config struct {
	Backend   string    `yaml:"backend"`
	Toolchain Toolchain `yaml:"toolchain"`
	Render    Render    `yaml:"render"`
	Verbosity int       `yaml:"verbosity"`
}

// Toolchain configures the native backend
type Toolchain struct {
	CC       string        `yaml:"cc"`
	CFlags   []string      `yaml:"cflags"`
	LDFlags  []string      `yaml:"ldflags"`
	Libs     []string      `yaml:"libs"`
	Timeout  time.Duration `yaml:"timeout"`
	Template string        `yaml:"template"` // path; empty uses the embedded template
	TempDir  string        `yaml:"tempdir"`
}

// Render configures the render host
type Render struct {
	Workers       int     `yaml:"workers"` // 0 uses one per CPU
	Edge          string  `yaml:"edge"`
	EdgeColor     string  `yaml:"edge_color"` // RRGGBBAA
	Supersampling bool    `yaml:"supersampling"`
	Intersampling bool    `yaml:"intersampling"`
	Seed          uint32  `yaml:"seed"`
	Time          float32 `yaml:"time"`
}

// Default returns the configuration used when nothing is configured
func Default() *Config {
	tc := pipeline.DefaultToolchain()
	return &Config{
		Backend: BackendNative,
		Toolchain: Toolchain{
			CC:      tc.CC,
			CFlags:  tc.CFlags,
			LDFlags: tc.LDFlags,
			Libs:    tc.Libs,
			Timeout: tc.Timeout,
		},
		Render: Render{
			Edge:      mathlib.EdgeColor.String(),
			EdgeColor: "00000000",
		},
	}
}

// Load reads path over the defaults and applies the environment. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, tlerrors.Wrap(err, "open config")
		}
		defer f.Close()

		if err := c.Decode(f); err != nil {
			return nil, tlerrors.Wrap(err, "read config %s", path)
		}
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode merges a YAML document into c. Unknown keys are errors.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Encode writes c as YAML
func (c *Config) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ApplyEnv overrides settings from MATHMAP_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	fields := func(name string, dst *[]string) {
		if v, ok := lookup(name); ok {
			*dst = strings.Fields(v)
		}
	}

	str("MATHMAP_BACKEND", &c.Backend)
	str("MATHMAP_CC", &c.Toolchain.CC)
	fields("MATHMAP_CFLAGS", &c.Toolchain.CFlags)
	fields("MATHMAP_LDFLAGS", &c.Toolchain.LDFlags)
	fields("MATHMAP_LIBS", &c.Toolchain.Libs)
	str("MATHMAP_TEMPLATE", &c.Toolchain.Template)
	str("MATHMAP_TEMPDIR", &c.Toolchain.TempDir)
	str("MATHMAP_EDGE", &c.Render.Edge)
	str("MATHMAP_EDGE_COLOR", &c.Render.EdgeColor)

	if v, ok := lookup("MATHMAP_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return tlerrors.Wrap(err, "MATHMAP_TIMEOUT")
		}
		c.Toolchain.Timeout = d
	}
	if v, ok := lookup("MATHMAP_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return tlerrors.Wrap(err, "MATHMAP_WORKERS")
		}
		c.Render.Workers = n
	}
	if v, ok := lookup("MATHMAP_VERBOSITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return tlerrors.Wrap(err, "MATHMAP_VERBOSITY")
		}
		c.Verbosity = n
	}
	return nil
}

// Validate checks values the YAML types cannot express
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNative, BackendInterp:
	default:
		return tlerrors.New("unknown backend %q, expected %s or %s", c.Backend, BackendNative, BackendInterp)
	}
	if c.Toolchain.CC == "" {
		return tlerrors.New("toolchain.cc is empty")
	}
	if c.Toolchain.Timeout < 0 {
		return tlerrors.New("toolchain.timeout is negative")
	}
	if c.Render.Workers < 0 {
		return tlerrors.New("render.workers is negative")
	}
	if _, err := c.EdgeMode(); err != nil {
		return err
	}
	if _, err := c.EdgeColor(); err != nil {
		return err
	}
	return nil
}

// EdgeMode returns the configured edge behaviour
func (c *Config) EdgeMode() (mathlib.EdgeMode, error) {
	return mathlib.ParseEdgeMode(c.Render.Edge)
}

// EdgeColor parses the configured RRGGBBAA edge colour
func (c *Config) EdgeColor() (mathlib.Color, error) {
	s := strings.TrimPrefix(c.Render.EdgeColor, "#")
	if len(s) != 8 {
		return 0, tlerrors.New("edge colour %q is not RRGGBBAA", c.Render.EdgeColor)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, tlerrors.Wrap(err, "edge colour %q", c.Render.EdgeColor)
	}
	return mathlib.Color(v), nil
}

// PipelineToolchain converts the toolchain section
func (c *Config) PipelineToolchain() pipeline.Toolchain {
	t := c.Toolchain
	return pipeline.Toolchain{
		CC:      t.CC,
		CFlags:  t.CFlags,
		LDFlags: t.LDFlags,
		Libs:    t.Libs,
		Timeout: t.Timeout,
	}
}

// NewBackend builds the configured backend
func (c *Config) NewBackend() (pipeline.Backend, error) {
	if c.Backend == BackendInterp {
		return pipeline.InterpBackend{}, nil
	}

	b := pipeline.NewNativeBackend(c.PipelineToolchain())
	b.TempDir = c.Toolchain.TempDir
	if c.Toolchain.Template != "" {
		data, err := os.ReadFile(c.Toolchain.Template)
		if err != nil {
			return nil, tlerrors.Wrap(err, "read template")
		}
		b.Template = string(data)
	}
	return b, nil
}

// Environment builds the evaluation context for the given source images
// from the render section
func (c *Config) Environment(images []*mathlib.Drawable) (*pipeline.Environment, error) {
	edge, err := c.EdgeMode()
	if err != nil {
		return nil, err
	}
	edgeColor, err := c.EdgeColor()
	if err != nil {
		return nil, err
	}

	return &pipeline.Environment{
		Sampler: mathlib.Sampler{
			Drawables:     images,
			Edge:          edge,
			EdgeColor:     edgeColor,
			Supersampling: c.Render.Supersampling,
			Intersampling: c.Render.Intersampling,
		},
		Seed: c.Render.Seed,
	}, nil
}
