package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// ErrInvalidFlag reports a flag value that cannot be used.
var ErrInvalidFlag = errors.New("invalid flag")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags controls how the body is wrapped into a TeX document.
type documentFlags struct {
	templateFile string
	preambleFile string
	fontSize     int
	params       []string // key=value
}

// stageFlags adjusts the external tool invocations.
type stageFlags struct {
	arguments      []string // stage=args
	optimizeSVG    bool
	optimizePolicy string
}

// environmentFlags controls where and how long tools run.
type environmentFlags struct {
	timeout string
	workDir string
	libGS   string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common    commonFlags
	inputFile string
	outputs   []string
	workers   int
	document  documentFlags
	stages    stageFlags
	env       environmentFlags
	checkDeps bool
	json      bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every stage")
}

// addDocumentFlags adds document flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.templateFile, "template-file", "", "document template file")
	fs.StringVar(&f.preambleFile, "preamble-file", "", "preamble file")
	fs.IntVar(&f.fontSize, "fontsize", 0, "font size in points")
	fs.StringArrayVar(&f.params, "param", nil, "template parameter key=value (repeatable)")
}

// addStageFlags adds stage flags to a FlagSet.
func addStageFlags(fs *flag.FlagSet, f *stageFlags) {
	fs.StringArrayVar(&f.arguments, "arguments", nil, "stage argument template stage=args (repeatable)")
	fs.BoolVar(&f.optimizeSVG, "optimize-svg", false, "run the svg optimizer on svg output")
	fs.StringVar(&f.optimizePolicy, "optimize-policy", "", "when the optimizer is missing: require or fallback")
}

// addEnvironmentFlags adds execution environment flags to a FlagSet.
func addEnvironmentFlags(fs *flag.FlagSet, f *environmentFlags) {
	fs.StringVar(&f.timeout, "timeout", "", "per-stage timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.workDir, "workdir", "", "keep intermediate files in this directory")
	fs.StringVar(&f.libGS, "libgs", "", "path to libgs.dylib (macOS)")
}

// parseRenderFlags parses the render command line. args excludes the
// program name.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := flag.NewFlagSet("tex2img", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.inputFile, "input-file", "i", "", "read the body from a file (- for stdin)")
	fs.StringArrayVarP(&f.outputs, "output", "o", nil, "output file, suffix selects the format (repeatable)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renders (0 = auto)")
	addDocumentFlags(fs, &f.document)
	addStageFlags(fs, &f.stages)
	addEnvironmentFlags(fs, &f.env)
	fs.BoolVar(&f.checkDeps, "check-deps", false, "report toolchain availability and exit")
	fs.BoolVar(&f.json, "json", false, "machine-readable output for --check-deps")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	if f.common.quiet && f.common.verbose {
		return nil, nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrInvalidFlag)
	}
	if f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: --workers must not be negative", ErrInvalidFlag)
	}
	if f.document.fontSize < 0 {
		return nil, nil, fmt.Errorf("%w: --fontsize must be positive", ErrInvalidFlag)
	}
	return f, fs.Args(), nil
}

// parsePairs splits key=value items. Later keys win.
func parsePairs(flagName string, items []string) (map[string]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(items))
	for _, item := range items {
		k, v, ok := strings.Cut(item, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: --%s %q (want key=value)", ErrInvalidFlag, flagName, item)
		}
		out[k] = v
	}
	return out, nil
}
