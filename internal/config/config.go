package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-tex2img"
	"github.com/alnah/go-tex2img/internal/fileutil"
	"github.com/alnah/go-tex2img/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPathLength      = 4096     // PATH_MAX on Linux
	MaxTemplateLength  = 64 << 10 // inline template or preamble
	MaxParamKeyLength  = 64
	MaxParamValueLen   = 4096
	MaxArgumentsLength = 4096 // one stage argument template
	MaxFontSize        = 100  // points
	MaxWorkers         = 32
)

// UserConfigDirName is the directory searched under os.UserConfigDir.
const UserConfigDirName = "go-tex2img"

// paramKey matches names usable as ${name} placeholders.
var paramKey = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)

// Config holds the settings a config file may provide. Zero values mean
// "not set" so that flags and environment variables can layer on top.
type Config struct {
	Template       string            `yaml:"template"`
	TemplateFile   string            `yaml:"templateFile"`
	Preamble       string            `yaml:"preamble"`
	PreambleFile   string            `yaml:"preambleFile"`
	FontSize       int               `yaml:"fontsize"`
	Params         map[string]string `yaml:"params"`
	Arguments      map[string]string `yaml:"arguments"` // stage -> argument template
	Timeout        string            `yaml:"timeout"`   // Go duration, e.g. "90s"
	LibGS          string            `yaml:"libgs"`
	WorkDir        string            `yaml:"workdir"`
	OptimizeSVG    bool              `yaml:"optimizeSVG"`
	OptimizePolicy string            `yaml:"optimizePolicy"` // "require" or "fallback"
	OutputDir      string            `yaml:"outputDir"`
	Workers        int               `yaml:"workers"` // 0 = auto

	// dir is the directory of the loaded file; relative paths resolve
	// against it.
	dir string
}

// Validate checks limits and enumerations.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("template", c.Template, MaxTemplateLength); err != nil {
		return err
	}
	if err := validateFieldLength("preamble", c.Preamble, MaxTemplateLength); err != nil {
		return err
	}
	for name, p := range map[string]string{
		"templateFile": c.TemplateFile,
		"preambleFile": c.PreambleFile,
		"libgs":        c.LibGS,
		"workdir":      c.WorkDir,
		"outputDir":    c.OutputDir,
	} {
		if err := validateFieldLength(name, p, MaxPathLength); err != nil {
			return err
		}
	}

	if c.Template != "" && c.TemplateFile != "" {
		return fmt.Errorf("%w: template and templateFile are mutually exclusive", ErrInvalidValue)
	}
	if c.Preamble != "" && c.PreambleFile != "" {
		return fmt.Errorf("%w: preamble and preambleFile are mutually exclusive", ErrInvalidValue)
	}

	if c.FontSize < 0 || c.FontSize > MaxFontSize {
		return fmt.Errorf("%w: fontsize must be between 1 and %d, got %d", ErrInvalidValue, MaxFontSize, c.FontSize)
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := tex2img.ParseOptimizePolicy(c.OptimizePolicy); err != nil {
		return fmt.Errorf("%w: optimizePolicy: %v", ErrInvalidValue, err)
	}

	for k, v := range c.Params {
		if !paramKey.MatchString(k) {
			return fmt.Errorf("%w: params: %q is not a valid placeholder name", ErrInvalidValue, k)
		}
		if err := validateFieldLength("params."+k, k, MaxParamKeyLength); err != nil {
			return err
		}
		if err := validateFieldLength("params."+k, v, MaxParamValueLen); err != nil {
			return err
		}
	}
	for stage, args := range c.Arguments {
		if strings.TrimSpace(stage) == "" {
			return fmt.Errorf("%w: arguments: empty stage name", ErrInvalidValue)
		}
		if err := validateFieldLength("arguments."+stage, args, MaxArgumentsLength); err != nil {
			return err
		}
	}

	return nil
}

// TimeoutDuration parses Timeout. Empty means zero (use the default).
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout: %v", ErrInvalidValue, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: timeout must not be negative, got %s", ErrInvalidValue, c.Timeout)
	}
	return d, nil
}

// ResolvePath makes a relative path from the config file relative to the
// file's directory. Absolute paths and configs built in code are unchanged.
func (c *Config) ResolvePath(p string) string {
	if p == "" || c.dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// TemplateText returns the inline template or the content of TemplateFile.
func (c *Config) TemplateText() (string, error) {
	return textOrFile(c.Template, c.ResolvePath(c.TemplateFile))
}

// PreambleText returns the inline preamble or the content of PreambleFile.
func (c *Config) PreambleText() (string, error) {
	return textOrFile(c.Preamble, c.ResolvePath(c.PreambleFile))
}

func textOrFile(inline, path string) (string, error) {
	if inline != "" || path == "" {
		return inline, nil
	}
	return fileutil.ReadTextFile(path)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration with nothing set.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.DecodeFile(configPath, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	if abs, err := filepath.Abs(configPath); err == nil {
		cfg.dir = filepath.Dir(abs)
	}
	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-tex2img/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, UserConfigDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
