package main

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tex2img"
	"github.com/alnah/go-tex2img/internal/config"
	"github.com/alnah/go-tex2img/internal/fileutil"
	"github.com/alnah/go-tex2img/internal/params"
)

// maxAutoWorkers caps the worker count chosen from GOMAXPROCS.
const maxAutoWorkers = 8

// renderSettings is the outcome of merging flags, environment, config file
// and defaults.
type renderSettings struct {
	template    string
	preamble    string
	fontSize    int
	params      map[string]string
	arguments   map[string]string
	timeout     time.Duration
	libGS       string
	workDir     string
	optimizeSVG bool
	policy      tex2img.OptimizePolicy
	outputDir   string
	workers     int
}

// loadConfig loads the config named by the flag, falling back to the
// environment. No name means defaults.
func loadConfig(flagName, envName string) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// resolveSettings merges flags over cfg. cfg already carries environment
// overrides.
func resolveSettings(f *renderFlags, cfg *config.Config, log logrus.FieldLogger) (*renderSettings, error) {
	s := &renderSettings{
		fontSize:    cfg.FontSize,
		libGS:       cfg.LibGS,
		workDir:     cfg.WorkDir,
		optimizeSVG: cfg.OptimizeSVG || f.stages.optimizeSVG,
		outputDir:   cfg.OutputDir,
	}

	var err error
	if s.template, err = textFromFlagOrConfig(f.document.templateFile, cfg.TemplateText); err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	if s.preamble, err = textFromFlagOrConfig(f.document.preambleFile, cfg.PreambleText); err != nil {
		return nil, fmt.Errorf("reading preamble: %w", err)
	}

	if f.document.fontSize > 0 {
		s.fontSize = f.document.fontSize
	}

	flagParams, err := parsePairs("param", f.document.params)
	if err != nil {
		return nil, err
	}
	s.params = params.Merge(cfg.Params, flagParams)

	flagArgs, err := parsePairs("arguments", f.stages.arguments)
	if err != nil {
		return nil, err
	}
	s.arguments = knownStages(params.Merge(cfg.Arguments, flagArgs), log)

	if s.timeout, err = resolveTimeout(f.env.timeout, cfg); err != nil {
		return nil, err
	}

	if f.env.libGS != "" {
		s.libGS = f.env.libGS
	}
	if f.env.workDir != "" {
		s.workDir = f.env.workDir
	}

	policy := cfg.OptimizePolicy
	if f.stages.optimizePolicy != "" {
		policy = f.stages.optimizePolicy
	}
	if s.policy, err = tex2img.ParseOptimizePolicy(policy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}

	workers := cfg.Workers
	if f.workers > 0 {
		workers = f.workers
	}
	s.workers = resolveWorkers(workers)

	return s, nil
}

// textFromFlagOrConfig reads the flag's file when set, otherwise asks the
// config.
func textFromFlagOrConfig(path string, fromConfig func() (string, error)) (string, error) {
	if path != "" {
		return fileutil.ReadTextFile(path)
	}
	return fromConfig()
}

// knownStages drops argument overrides for stages the registry does not
// know, with a warning.
func knownStages(args map[string]string, log logrus.FieldLogger) map[string]string {
	reg := tex2img.DefaultRegistry()
	for stage := range args {
		if !reg.Has(stage) {
			log.WithFields(logrus.Fields{
				"stage":     stage,
				"available": strings.Join(reg.Names(), ", "),
			}).Warn("ignoring arguments for unknown stage")
			delete(args, stage)
		}
	}
	return args
}

// resolveTimeout applies flag > env/config > default.
func resolveTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: --timeout %q: %v", ErrInvalidFlag, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: --timeout must be positive", ErrInvalidFlag)
		}
		return d, nil
	}
	d, err := cfg.TimeoutDuration()
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return tex2img.DefaultTimeout, nil
	}
	return d, nil
}

// resolveWorkers determines the number of concurrent renders.
// Priority: explicit value > GOMAXPROCS-based calculation.
func resolveWorkers(n int) int {
	if n > 0 {
		return n
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	available := runtime.GOMAXPROCS(0)
	n = available / 2

	if n < 1 {
		return 1
	}
	if n > maxAutoWorkers {
		return maxAutoWorkers
	}
	return n
}

// options converts the settings to renderer options.
func (s *renderSettings) options(log logrus.FieldLogger) []tex2img.Option {
	opts := []tex2img.Option{
		tex2img.WithLogger(log),
		tex2img.WithTimeout(s.timeout),
		tex2img.WithOptimizePolicy(s.policy),
	}
	if s.template != "" {
		opts = append(opts, tex2img.WithTemplate(s.template))
	}
	if s.preamble != "" {
		opts = append(opts, tex2img.WithPreamble(s.preamble))
	}
	if s.fontSize > 0 {
		opts = append(opts, tex2img.WithFontSize(s.fontSize))
	}
	if len(s.params) > 0 {
		opts = append(opts, tex2img.WithParams(s.params))
	}
	if len(s.arguments) > 0 {
		opts = append(opts, tex2img.WithArguments(s.arguments))
	}
	if s.libGS != "" {
		opts = append(opts, tex2img.WithLibGS(s.libGS))
	}
	return opts
}

// resolveOutputs places relative outputs under outputDir and drops
// duplicates so that no two workers write the same file.
func resolveOutputs(outputs []string, outputDir string, log logrus.FieldLogger) []string {
	seen := make(map[string]bool, len(outputs))
	resolved := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if strings.TrimSpace(o) == "" {
			continue
		}
		if outputDir != "" && !filepath.IsAbs(o) {
			o = filepath.Join(outputDir, o)
		}
		key := filepath.Clean(o)
		if abs, err := filepath.Abs(o); err == nil {
			key = abs
		}
		if seen[key] {
			log.WithField("output", o).Warn("duplicate output ignored")
			continue
		}
		seen[key] = true
		resolved = append(resolved, o)
	}
	return resolved
}

// readBody returns the TeX body from -i, or from the positional arguments.
// Bodies read from a file or stdin are trimmed of surrounding whitespace.
func readBody(positional []string, inputFile string, stdin io.Reader) (string, error) {
	if inputFile != "" && len(positional) > 0 {
		return "", fmt.Errorf("%w: use either a body argument or --input-file, not both", ErrInvalidFlag)
	}

	var body string
	switch inputFile {
	case "":
		body = strings.Join(positional, " ")
	case "-":
		data, err := io.ReadAll(io.LimitReader(stdin, fileutil.MaxTextFileSize+1))
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		if len(data) > fileutil.MaxTextFileSize {
			return "", fmt.Errorf("%w: stdin (max %d bytes)", fileutil.ErrFileTooLarge, fileutil.MaxTextFileSize)
		}
		body = strings.TrimSpace(string(data))
	default:
		text, err := fileutil.ReadTextFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		body = strings.TrimSpace(text)
	}

	if strings.TrimSpace(body) == "" {
		return "", ErrNoInput
	}
	return body, nil
}
