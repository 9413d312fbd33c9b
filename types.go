package tex2img

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single external tool invocation.
const DefaultTimeout = 2 * time.Minute

// OptimizePolicy decides what happens when SVG optimization is requested
// but the optimizer is not installed.
type OptimizePolicy int

const (
	// OptimizeRequire fails the render with ErrOptimizationUnavailable
	// before anything is written.
	OptimizeRequire OptimizePolicy = iota
	// OptimizeFallback logs an error and renders the unoptimized SVG.
	OptimizeFallback
)

func (p OptimizePolicy) String() string {
	switch p {
	case OptimizeRequire:
		return "require"
	case OptimizeFallback:
		return "fallback"
	default:
		return fmt.Sprintf("OptimizePolicy(%d)", int(p))
	}
}

// ParseOptimizePolicy converts "require" or "fallback" (case-insensitive).
// An empty string selects OptimizeRequire.
func ParseOptimizePolicy(s string) (OptimizePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "require":
		return OptimizeRequire, nil
	case "fallback":
		return OptimizeFallback, nil
	default:
		return OptimizeRequire, fmt.Errorf("invalid optimize policy %q (must be require or fallback)", s)
	}
}

// RenderOptions are per-call settings.
type RenderOptions struct {
	Verbose     bool              // log every stage at Info level
	OptimizeSVG bool              // append the svg-optimize stage for .svg output
	Arguments   map[string]string // stage -> argument template overrides for this call only

	// WorkDir keeps intermediates in a persistent workspace; empty means a
	// temporary one removed after the call. Intermediates are named after the
	// output stem, so concurrent calls sharing a WorkDir must not share a stem.
	WorkDir string
}

// StageResult records one completed stage.
type StageResult struct {
	Stage    string
	Binary   string
	Args     []string
	Output   string
	Duration time.Duration
}

// Result describes a successful render.
type Result struct {
	Output    string // absolute path of the written file
	Size      int64  // bytes
	Workspace string // only set when the caller asked for a persistent workspace
	Stages    []StageResult
}

// rendererConfig holds construction-time settings.
type rendererConfig struct {
	timeout   time.Duration
	libgs     string
	policy    OptimizePolicy
	arguments map[string]string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRegistry replaces the default command registry.
func WithRegistry(reg Registry) Option {
	return func(r *Renderer) {
		r.registry = reg
	}
}

// WithArguments overrides argument templates of registered stages for every
// render. Unknown stages make NewRenderer fail with ErrUnknownStage.
func WithArguments(args map[string]string) Option {
	return func(r *Renderer) {
		r.cfg.arguments = args
	}
}

// WithTemplate sets the engine-level document template.
func WithTemplate(tmpl string) Option {
	return func(r *Renderer) {
		r.preparer.Template = tmpl
	}
}

// WithPreamble sets the engine-level document preamble.
func WithPreamble(preamble string) Option {
	return func(r *Renderer) {
		r.preparer.Preamble = preamble
	}
}

// WithFontSize sets the engine-level font size in points.
func WithFontSize(size int) Option {
	return func(r *Renderer) {
		r.preparer.FontSize = size
	}
}

// WithParams sets engine-level document template parameters.
func WithParams(p map[string]string) Option {
	return func(r *Renderer) {
		r.preparer.Params = p
	}
}

// WithLogger sets the logging sink. Defaults to a discarding logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTimeout bounds each external tool invocation. Zero or negative
// disables the bound; the caller's context still applies.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithLibGS sets the Ghostscript library path used on macOS when libgs is
// not otherwise discoverable. Defaults to the LIBGS environment variable.
func WithLibGS(path string) Option {
	return func(r *Renderer) {
		r.cfg.libgs = path
	}
}

// WithOptimizePolicy selects the behavior when the SVG optimizer is missing.
func WithOptimizePolicy(p OptimizePolicy) Option {
	return func(r *Renderer) {
		r.cfg.policy = p
	}
}
