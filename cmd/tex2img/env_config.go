package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tex2img/internal/config"
)

// envPrefix marks the variables the CLI reads.
const envPrefix = "TEX2IMG_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath     string        // TEX2IMG_CONFIG: config file name or path
	Timeout        time.Duration // TEX2IMG_TIMEOUT: per-stage timeout
	Workers        int           // TEX2IMG_WORKERS: parallel renders
	WorkDir        string        // TEX2IMG_WORKDIR: persistent workspace
	OutputDir      string        // TEX2IMG_OUTPUT_DIR: base for relative outputs
	FontSize       int           // TEX2IMG_FONTSIZE: font size in points
	TemplateFile   string        // TEX2IMG_TEMPLATE_FILE: document template
	PreambleFile   string        // TEX2IMG_PREAMBLE_FILE: preamble file
	OptimizeSVG    bool          // TEX2IMG_OPTIMIZE_SVG: run the svg optimizer
	OptimizePolicy string        // TEX2IMG_OPTIMIZE_POLICY: require or fallback
}

// knownEnvVars lists valid TEX2IMG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TEX2IMG_CONFIG":          true,
	"TEX2IMG_TIMEOUT":         true,
	"TEX2IMG_WORKERS":         true,
	"TEX2IMG_WORKDIR":         true,
	"TEX2IMG_OUTPUT_DIR":      true,
	"TEX2IMG_FONTSIZE":        true,
	"TEX2IMG_TEMPLATE_FILE":   true,
	"TEX2IMG_PREAMBLE_FILE":   true,
	"TEX2IMG_OPTIMIZE_SVG":    true,
	"TEX2IMG_OPTIMIZE_POLICY": true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:     os.Getenv("TEX2IMG_CONFIG"),
		WorkDir:        os.Getenv("TEX2IMG_WORKDIR"),
		OutputDir:      os.Getenv("TEX2IMG_OUTPUT_DIR"),
		TemplateFile:   os.Getenv("TEX2IMG_TEMPLATE_FILE"),
		PreambleFile:   os.Getenv("TEX2IMG_PREAMBLE_FILE"),
		OptimizePolicy: os.Getenv("TEX2IMG_OPTIMIZE_POLICY"),
	}

	if timeout := os.Getenv("TEX2IMG_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("TEX2IMG_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if size := os.Getenv("TEX2IMG_FONTSIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.FontSize = n
		}
	}
	if opt := os.Getenv("TEX2IMG_OPTIMIZE_SVG"); opt != "" {
		if b, err := strconv.ParseBool(opt); err == nil {
			cfg.OptimizeSVG = b
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized TEX2IMG_* variables.
// Helps catch typos like TEX2IMG_TIMOUT.
func warnUnknownEnvVars(log logrus.FieldLogger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				log.WithField("variable", name).Warn("unknown environment variable (typo?)")
			}
		}
	}
}

// applyEnvConfig applies environment variable values on top of the config
// file. Flags are applied later, giving: flags > env > config > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.WorkDir != "" {
		cfg.WorkDir = env.WorkDir
	}
	if env.OutputDir != "" {
		cfg.OutputDir = env.OutputDir
	}
	if env.FontSize > 0 {
		cfg.FontSize = env.FontSize
	}
	if env.TemplateFile != "" {
		cfg.TemplateFile = absPath(env.TemplateFile)
		cfg.Template = ""
	}
	if env.PreambleFile != "" {
		cfg.PreambleFile = absPath(env.PreambleFile)
		cfg.Preamble = ""
	}
	if env.OptimizeSVG {
		cfg.OptimizeSVG = true
	}
	if env.OptimizePolicy != "" {
		cfg.OptimizePolicy = env.OptimizePolicy
	}
}

// absPath anchors p to the working directory so that it does not resolve
// against the config file's directory. On failure p is returned unchanged.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
