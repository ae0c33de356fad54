package gg

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Quality bundles every tolerance/resolution knob the geometry
// pipeline consults: how finely curves get flattened, how large the
// triangulation cache is allowed to grow, and which flattening
// strategy to use.
type Quality struct {
	// Resolution is target pixels-per-unit; higher values tighten the
	// adaptive flattener's tolerance.
	Resolution float64 `yaml:"resolution"`
	// Scale is the working coordinate scale (mirrors a fixed-point
	// polygon-offset engine's integer scale factor).
	Scale float64 `yaml:"scale"`
	// AntiGrain selects the AntiGrain-style flattening criterion
	// instead of the default second-difference tolerance test.
	AntiGrain bool `yaml:"antigrain"`
	AntiGrainQuality
	// TriangulationCacheSize is the soft limit on cached triangulations.
	TriangulationCacheSize int `yaml:"triangulation_cache_size"`
}

// AntiGrainQuality mirrors internal/flatten.AntiGrainQuality so it can
// be embedded in a YAML-loadable Quality without importing an internal
// package from the public API surface.
type AntiGrainQuality struct {
	DistanceTolerance  float64 `yaml:"distance_tolerance"`
	ColinearityEpsilon float64 `yaml:"colinearity_epsilon"`
	AngleEpsilon       float64 `yaml:"angle_epsilon"`
	AngleTolerance     float64 `yaml:"angle_tolerance"`
	CuspLimit          float64 `yaml:"cusp_limit"`
	RecursionLimit     int     `yaml:"recursion_limit"`
}

// DefaultQuality returns the baseline quality preset used when no
// Option overrides it.
func DefaultQuality() Quality {
	return Quality{
		Resolution:             1.0,
		Scale:                  2.0,
		TriangulationCacheSize: 256,
		AntiGrainQuality: AntiGrainQuality{
			DistanceTolerance:  0.1,
			ColinearityEpsilon: 1e-9,
			AngleEpsilon:       0.01,
			RecursionLimit:     6,
		},
	}
}

// Option configures a Quality preset via functional options, mirroring
// the package's existing ContextOption pattern.
type Option func(*Quality)

// WithFlattenResolution sets the target pixels-per-unit resolution fed
// to the adaptive flattener.
func WithFlattenResolution(resolution float64) Option {
	return func(q *Quality) { q.Resolution = resolution }
}

// WithWorkingScale sets the fixed-point working scale used alongside
// resolution to derive the flattening tolerance.
func WithWorkingScale(scale float64) Option {
	return func(q *Quality) { q.Scale = scale }
}

// WithAntiGrainQuality switches to the AntiGrain flattening strategy
// with the given branch thresholds.
func WithAntiGrainQuality(agq AntiGrainQuality) Option {
	return func(q *Quality) {
		q.AntiGrain = true
		q.AntiGrainQuality = agq
	}
}

// WithTriangulationCacheSize sets the soft limit on cached
// triangulations kept alive across edits.
func WithTriangulationCacheSize(n int) Option {
	return func(q *Quality) { q.TriangulationCacheSize = n }
}

// NewQuality builds a Quality preset from DefaultQuality with opts
// applied in order.
func NewQuality(opts ...Option) Quality {
	q := DefaultQuality()
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// LoadQualityYAML loads a Quality preset from a YAML file, useful for
// driving fixture/test shapes or a host application's settings file
// without hand-writing Option calls.
func LoadQualityYAML(path string) (Quality, error) {
	q := DefaultQuality()
	data, err := os.ReadFile(path)
	if err != nil {
		return q, newError("LoadQualityYAML", ErrBadArgument, err)
	}
	if err := yaml.Unmarshal(data, &q); err != nil {
		return q, newError("LoadQualityYAML", ErrBadArgument, err)
	}
	return q, nil
}
