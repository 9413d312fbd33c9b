package tex2img

import (
	"fmt"
	"strings"
)

// Supported output suffixes.
const (
	SuffixPS   = ".ps"
	SuffixEPS  = ".eps"
	SuffixPDF  = ".pdf"
	SuffixSVG  = ".svg"
	SuffixPNG  = ".png"
	SuffixJPG  = ".jpg"
	SuffixTIFF = ".tiff"

	// suffixDVI is the compile stage output; it is not a valid final target.
	suffixDVI = ".dvi"
	suffixTeX = ".tex"
)

// SupportedSuffixes lists the output suffixes Render accepts.
var SupportedSuffixes = []string{SuffixPS, SuffixEPS, SuffixPDF, SuffixSVG, SuffixPNG, SuffixJPG, SuffixTIFF}

// pipelines maps a suffix to its stage sequence.
//
//	TeX --latex--> DVI --dvips--> PS|EPS
//	                   --dvips--> PS --ps2pdf--> PDF [--gs--> PNG|JPG|TIFF]
//	                   --dvisvgm--> SVG [--scour--> SVG]
var pipelines = map[string][]string{
	SuffixPS:   {StageCompile, StageToPS},
	SuffixEPS:  {StageCompile, StageToEPS},
	SuffixPDF:  {StageCompile, StageToPS, StageToPDF},
	SuffixSVG:  {StageCompile, StageToSVG},
	SuffixPNG:  {StageCompile, StageToPS, StageToPDF, StageToPNG},
	SuffixJPG:  {StageCompile, StageToPS, StageToPDF, StageToJPG},
	SuffixTIFF: {StageCompile, StageToPS, StageToPDF, StageToTIFF},
}

// IsSupportedSuffix reports whether suffix (case-insensitive, with dot) can
// be rendered.
func IsSupportedSuffix(suffix string) bool {
	_, ok := pipelines[strings.ToLower(suffix)]
	return ok
}

// Pipeline returns the ordered stages that produce suffix. With optimize
// set, SVG output gains a final svg-optimize stage.
func Pipeline(suffix string, optimize bool) ([]string, error) {
	stages, ok := pipelines[strings.ToLower(suffix)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, suffix, strings.Join(SupportedSuffixes, ", "))
	}
	out := make([]string, len(stages), len(stages)+1)
	copy(out, stages)
	if optimize && strings.EqualFold(suffix, SuffixSVG) {
		out = append(out, StageSVGOptimize)
	}
	return out, nil
}

// step is one planned stage execution with its output location.
type step struct {
	cmd    Command
	output string
	last   bool
}

// plan resolves stage names against reg and assigns outputs: every stage but
// the last writes the workspace file for the suffix it produces, the last
// writes the user-facing path already stored in props as out_file.
func plan(reg Registry, stages []string, props Props) ([]step, error) {
	steps := make([]step, 0, len(stages))
	for i, name := range stages {
		cmd, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
		}
		s := step{cmd: cmd, last: i == len(stages)-1}
		if s.last {
			s.output = props.Output()
		} else {
			s.output = props.FileFor(cmd.Produces)
		}
		steps = append(steps, s)
	}
	return steps, nil
}
