// Package config loads lane tuning: the tilt and settle thresholds, the
// freeplay re-rack delay, the lane boundary and the simulation tick rate.
//
// Defaults live in an embedded CUE schema. A tuning file may be CUE or YAML
// and is unified with the schema, then TENPIN_* environment variables
// override individual fields and the merged result is validated again.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tenpin/internal/pins"
	"github.com/roach88/tenpin/internal/roll"
	"github.com/roach88/tenpin/internal/turn"
)

//go:embed schema.cue
var schemaSource []byte

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TENPIN_"

// Tuning is the validated lane configuration.
type Tuning struct {
	TiltDegrees   float64 `json:"tilt_degrees" env:"TILT_DEGREES"`
	SettleSeconds float64 `json:"settle_seconds" env:"SETTLE_SECONDS"`
	RerackSeconds float64 `json:"rerack_seconds" env:"RERACK_SECONDS"`
	LaneBoundary  float64 `json:"lane_boundary" env:"LANE_BOUNDARY"`
	RestSpeed     float64 `json:"rest_speed" env:"REST_SPEED"`
	TickHz        int     `json:"tick_hz" env:"TICK_HZ"`
}

// Error reports a tuning value the schema rejected.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	environ map[string]string
}

// WithEnvironment reads overrides from environ instead of the process
// environment.
func WithEnvironment(environ map[string]string) Option {
	return func(l *loader) {
		l.environ = environ
	}
}

// Default returns the schema defaults.
func Default() Tuning {
	t, err := Load("", WithEnvironment(map[string]string{}))
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return t
}

// Load reads the tuning at path, or only the defaults when path is empty,
// then applies environment overrides.
func Load(path string, opts ...Option) (Tuning, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Tuning"))
	if err := schema.Err(); err != nil {
		return Tuning{}, fmt.Errorf("compile schema: %w", err)
	}

	v := schema
	if path != "" {
		file, err := readFile(ctx, path)
		if err != nil {
			return Tuning{}, err
		}
		v = schema.Unify(file)
	}

	t, err := decode(v)
	if err != nil {
		return Tuning{}, err
	}

	if err := env.ParseWithOptions(&t, env.Options{Prefix: EnvPrefix, Environment: l.environ}); err != nil {
		return Tuning{}, fmt.Errorf("parse env: %w", err)
	}
	return decode(schema.Unify(ctx.Encode(t)))
}

// readFile compiles a .cue file or encodes a .yaml/.yml file into CUE.
func readFile(ctx *cue.Context, path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("read tuning: %w", err)
	}

	var v cue.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		v = ctx.CompileBytes(data, cue.Filename(path))
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cue.Value{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
		v = ctx.Encode(raw)
	default:
		return cue.Value{}, fmt.Errorf("tuning file %s: unsupported extension", path)
	}
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

func decode(v cue.Value) (Tuning, error) {
	if err := v.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return Tuning{}, formatCUEError(err)
	}
	var t Tuning
	if err := v.Decode(&t); err != nil {
		return Tuning{}, formatCUEError(err)
	}
	return t, nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := strings.Join(first.Path(), ".")
	if field == "" {
		field = "tuning"
	}
	format, args := first.Msg()
	out := &Error{Field: field, Message: fmt.Sprintf(format, args...)}
	if positions := errors.Positions(first); len(positions) > 0 {
		out.Pos = positions[0]
	}
	return out
}

// SettleDelay is the settle debounce as a duration.
func (t Tuning) SettleDelay() time.Duration {
	return seconds(t.SettleSeconds)
}

// RerackDelay is the freeplay re-rack delay as a duration.
func (t Tuning) RerackDelay() time.Duration {
	return seconds(t.RerackSeconds)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Settings builds controller settings for a starting mode.
func (t Tuning) Settings(mode turn.Mode) turn.Settings {
	return turn.Settings{
		Mode:       mode,
		Thresholds: pins.Thresholds{TiltDegrees: t.TiltDegrees},
		Lifecycle: roll.Settings{
			LaneBoundary: t.LaneBoundary,
			SettleDelay:  t.SettleDelay(),
			RestSpeed:    t.RestSpeed,
		},
		RerackDelay: t.RerackDelay(),
	}
}
