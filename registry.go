package tex2img

import (
	"fmt"
	"sort"
)

// Stage names. Each names one entry of the command registry.
const (
	StageCompile     = "compile"
	StageToPS        = "to-ps"
	StageToEPS       = "to-eps"
	StageToPDF       = "to-pdf"
	StageToSVG       = "to-svg"
	StageToPNG       = "to-png"
	StageToJPG       = "to-jpg"
	StageToTIFF      = "to-tiff"
	StageSVGOptimize = "svg-optimize"
)

// stageOrder is the display and probe order of the registry.
var stageOrder = []string{
	StageCompile,
	StageToPS,
	StageToEPS,
	StageToPDF,
	StageToSVG,
	StageToPNG,
	StageToJPG,
	StageToTIFF,
	StageSVGOptimize,
}

// Registry is an immutable set of command descriptors keyed by stage.
// Derive customised registries with WithArguments; the receiver is never
// modified, so one Registry can back any number of concurrent renders.
type Registry struct {
	commands map[string]Command
}

// DefaultRegistry returns the stock toolchain: latex, dvips, ps2pdf,
// dvisvgm, gs and scour.
func DefaultRegistry() Registry {
	cmds := []Command{
		{
			Stage:    StageCompile,
			Binary:   "latex",
			Args:     "-interaction nonstopmode -halt-on-error ${tex_file}",
			Produces: ".dvi",
		},
		{
			Stage:    StageToPS,
			Binary:   "dvips",
			Args:     "${dvi_file} -o ${out_file}",
			Produces: ".ps",
		},
		{
			Stage:    StageToEPS,
			Binary:   "dvips",
			Args:     "-E ${dvi_file} -o ${out_file}",
			Produces: ".eps",
		},
		{
			Stage:       StageToPDF,
			Binary:      "ps2pdf",
			Args:        "${ps_file} ${out_file}",
			Produces:    ".pdf",
			Ghostscript: true,
		},
		{
			Stage:    StageToSVG,
			Binary:   "dvisvgm",
			Args:     "--exact-bbox --no-fonts ${dvi_file} -o ${out_file}",
			Produces: ".svg",
		},
		{
			Stage:       StageToPNG,
			Binary:      "gs",
			Args:        "-dNOPAUSE -sDEVICE=pngalpha -r600 -o ${out_file} ${pdf_file}",
			Produces:    ".png",
			Ghostscript: true,
		},
		{
			Stage:       StageToJPG,
			Binary:      "gs",
			Args:        "-dNOPAUSE -sDEVICE=jpeg -dJPEGQ=95 -r600 -o ${out_file} ${pdf_file}",
			Produces:    ".jpg",
			Ghostscript: true,
		},
		{
			Stage:       StageToTIFF,
			Binary:      "gs",
			Args:        "-dNOPAUSE -sDEVICE=tiffg4 -r600 -o ${out_file} ${pdf_file}",
			Produces:    ".tiff",
			Ghostscript: true,
		},
		{
			Stage:  StageSVGOptimize,
			Binary: "scour",
			Args: `--shorten-ids --shorten-ids-prefix="${prefix}" --no-line-breaks --remove-metadata ` +
				`--enable-comment-stripping --strip-xml-prolog -i ${svg_file} -o ${out_file}`,
			Produces: ".svg",
		},
	}
	return NewRegistry(cmds...)
}

// NewRegistry builds a registry from cmds. A later command replaces an
// earlier one with the same stage.
func NewRegistry(cmds ...Command) Registry {
	m := make(map[string]Command, len(cmds))
	for _, c := range cmds {
		m[c.Stage] = c
	}
	return Registry{commands: m}
}

// Lookup returns the command registered for stage.
func (r Registry) Lookup(stage string) (Command, bool) {
	c, ok := r.commands[stage]
	return c, ok
}

// Has reports whether stage is registered.
func (r Registry) Has(stage string) bool {
	_, ok := r.commands[stage]
	return ok
}

// Names returns the registered stages: known stages first in pipeline
// order, then any custom ones sorted by name.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	known := make(map[string]bool, len(stageOrder))
	for _, s := range stageOrder {
		known[s] = true
		if r.Has(s) {
			names = append(names, s)
		}
	}
	var extra []string
	for s := range r.commands {
		if !known[s] {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// Commands returns the registered commands in Names order.
func (r Registry) Commands() []Command {
	names := r.Names()
	cmds := make([]Command, 0, len(names))
	for _, n := range names {
		cmds = append(cmds, r.commands[n])
	}
	return cmds
}

// WithArguments returns a copy of r where the argument template of each
// named stage is replaced. Unknown stages yield ErrUnknownStage.
func (r Registry) WithArguments(overrides map[string]string) (Registry, error) {
	if len(overrides) == 0 {
		return r, nil
	}
	m := make(map[string]Command, len(r.commands))
	for k, v := range r.commands {
		m[k] = v
	}
	for stage, args := range overrides {
		c, ok := m[stage]
		if !ok {
			return Registry{}, fmt.Errorf("%w: %q", ErrUnknownStage, stage)
		}
		c.Args = args
		m[stage] = c
	}
	return Registry{commands: m}, nil
}

// Dependency is one row of a registry probe.
type Dependency struct {
	Stage  string `json:"stage"`
	Binary string `json:"binary"`
	Path   string `json:"path"`
	Found  bool   `json:"found"`
	Args   string `json:"args"`
}

// Probe reports, for every registered stage, where its binary resolves.
// Nothing is executed.
func (r Registry) Probe() []Dependency {
	cmds := r.Commands()
	deps := make([]Dependency, 0, len(cmds))
	for _, c := range cmds {
		path := c.Path()
		deps = append(deps, Dependency{
			Stage:  c.Stage,
			Binary: c.Binary,
			Path:   path,
			Found:  path != NotFound,
			Args:   c.Args,
		})
	}
	return deps
}
