package tex2img

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tex2img/internal/fileutil"
	"github.com/alnah/go-tex2img/internal/params"
)

// Compile-time interface implementation check.
var _ commandRunner = execRunner{}

// Renderer drives a TeX document through the external toolchain.
// It is immutable after NewRenderer and safe for concurrent Render calls;
// every call gets its own workspace and parameter table.
type Renderer struct {
	cfg      rendererConfig
	registry Registry
	preparer Preparer
	log      logrus.FieldLogger
	runner   commandRunner
	lookPath func(string) (string, error)
	environ  func() []string
	libgs    string
}

// NewRenderer creates a Renderer with the default registry.
// Returns an error if WithArguments names an unknown stage.
func NewRenderer(opts ...Option) (*Renderer, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Renderer{
		cfg:      rendererConfig{timeout: DefaultTimeout},
		registry: DefaultRegistry(),
		log:      discard,
		runner:   execRunner{},
		lookPath: exec.LookPath,
		environ:  os.Environ,
	}

	for _, opt := range opts {
		opt(r)
	}

	reg, err := r.registry.WithArguments(r.cfg.arguments)
	if err != nil {
		return nil, err
	}
	r.registry = reg

	if r.libgs == "" {
		r.libgs = defaultLibGSLocator(runtime.GOOS, r.cfg.libgs).resolve()
	}
	if r.libgs != "" {
		r.log.WithField("libgs", r.libgs).Debug("using Ghostscript library")
	}

	return r, nil
}

// Registry returns the renderer's command registry.
func (r *Renderer) Registry() Registry {
	return r.registry
}

// LibGS returns the Ghostscript library path injected into Ghostscript
// stages, or "" when none is needed.
func (r *Renderer) LibGS() string {
	return r.libgs
}

// Prepare merges body into the renderer's document template.
func (r *Renderer) Prepare(body string, opts PrepareOptions) string {
	return r.preparer.Prepare(body, opts)
}

// Render compiles the TeX document tex and converts it to output. The
// suffix of output selects the pipeline.
//
// Nothing is written and no binary is probed for an unsupported suffix.
// Missing binaries are reported before the workspace exists. A stage that
// fails stops the pipeline; the returned *StageError carries its exit code
// and captured output. The temporary workspace is removed on every path.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, tex, output string, opts RenderOptions) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("internal error: %v", p)
		}
	}()

	if strings.TrimSpace(output) == "" {
		return nil, ErrEmptyOutput
	}
	suffix := strings.ToLower(filepath.Ext(output))
	if !IsSupportedSuffix(suffix) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, filepath.Ext(output), strings.Join(SupportedSuffixes, ", "))
	}
	output, err = filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("resolving output path: %w", err)
	}

	reg, err := r.registry.WithArguments(opts.Arguments)
	if err != nil {
		return nil, err
	}

	optimize, err := r.resolveOptimize(reg, suffix, opts.OptimizeSVG)
	if err != nil {
		return nil, err
	}

	stages, err := Pipeline(suffix, optimize)
	if err != nil {
		return nil, err
	}

	paths, err := r.checkDependencies(reg, stages)
	if err != nil {
		r.log.WithError(err).Error("cannot render, install the missing tools first")
		return nil, err
	}

	if err := fileutil.EnsureParentDir(output, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	ws, err := newWorkspace(opts.WorkDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			r.log.WithError(cerr).Warn("workspace cleanup failed")
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	return r.execute(ctx, reg, ws, tex, output, stages, paths, opts)
}

// execute runs the planned stages inside ws.
func (r *Renderer) execute(ctx context.Context, reg Registry, ws *workspace, tex, output string, stages []string, paths map[string]string, opts RenderOptions) (*Result, error) {
	props := ws.props(output)
	if stages[len(stages)-1] == StageSVGOptimize {
		props = props.with(params.Layer{FileKey(SuffixSVG): ws.intermediateSVG(props.Get(KeyFilename))})
	}

	texFile := props.Get(KeyTeXFile)
	if err := os.WriteFile(texFile, []byte(tex), filePermissions); err != nil { // #nosec G306 -- intermediate source file
		return nil, fmt.Errorf("%w: %v", ErrWriteSource, err)
	}
	r.progress(opts.Verbose, logrus.Fields{"file": texFile}, "wrote TeX source")

	steps, err := plan(reg, stages, props)
	if err != nil {
		return nil, err
	}

	res := &Result{Output: output, Stages: make([]StageResult, 0, len(steps))}
	for _, s := range steps {
		sr, err := r.runStep(ctx, ws, s, props, paths[s.cmd.Stage], opts.Verbose)
		if err != nil {
			return nil, err
		}
		res.Stages = append(res.Stages, sr)
	}

	if !fileutil.FileExists(output) {
		last := steps[len(steps)-1].cmd
		return nil, &StageError{
			Stage:    last.Stage,
			Binary:   last.Binary,
			ExitCode: -1,
			Err:      fmt.Errorf("expected output %s was not created", output),
		}
	}

	res.Size = fileutil.FileSize(output)
	if !ws.temporary {
		res.Workspace = ws.Dir()
	}
	return res, nil
}

// runStep renders the stage arguments and runs the tool once.
func (r *Renderer) runStep(ctx context.Context, ws *workspace, s step, props Props, binPath string, verbose bool) (StageResult, error) {
	fields := logrus.Fields{"stage": s.cmd.Stage, "binary": s.cmd.Binary}

	if err := ctx.Err(); err != nil {
		return StageResult{}, &StageError{Stage: s.cmd.Stage, Binary: s.cmd.Binary, ExitCode: -1, Err: err}
	}

	args, err := s.cmd.RenderArgs(props.with(params.Layer{KeyOutFile: s.output}).Layer())
	if err != nil {
		r.log.WithFields(fields).WithError(err).Error("cannot build command line")
		return StageResult{}, err
	}
	r.progress(verbose, fields, "running "+shellquote.Join(append([]string{s.cmd.Binary}, args...)...))

	stageCtx := ctx
	if r.cfg.timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, r.cfg.timeout)
		defer cancel()
	}

	start := time.Now()
	stdout, stderr, err := r.runner.Run(stageCtx, invocation{
		Stage:  s.cmd.Stage,
		Path:   binPath,
		Args:   args,
		Dir:    ws.Dir(),
		Env:    stageEnv(r.environ(), s.cmd, r.libgs),
		Output: s.output,
	})
	elapsed := time.Since(start)

	if err != nil {
		// latex reports errors on stdout; fall back to it when stderr is empty.
		captured := strings.TrimSpace(string(stderr))
		if captured == "" {
			captured = strings.TrimSpace(string(stdout))
		}
		stageErr := &StageError{
			Stage:    s.cmd.Stage,
			Binary:   s.cmd.Binary,
			Args:     args,
			ExitCode: exitCode(err),
			Stderr:   captured,
			Err:      err,
		}
		r.log.WithFields(fields).WithField("exit_code", stageErr.ExitCode).Error(stageErr.Error())
		return StageResult{}, stageErr
	}

	r.progress(verbose, logrus.Fields{"stage": s.cmd.Stage, "output": s.output, "duration": elapsed.Round(time.Millisecond)}, "stage finished")
	return StageResult{
		Stage:    s.cmd.Stage,
		Binary:   s.cmd.Binary,
		Args:     args,
		Output:   s.output,
		Duration: elapsed,
	}, nil
}

// resolveOptimize applies the optimize policy for this call and reports
// whether the svg-optimize stage runs.
func (r *Renderer) resolveOptimize(reg Registry, suffix string, requested bool) (bool, error) {
	if !requested || suffix != SuffixSVG {
		return false, nil
	}
	cmd, ok := reg.Lookup(StageSVGOptimize)
	if ok {
		if _, err := r.lookPath(cmd.Binary); err == nil {
			return true, nil
		}
	}

	missing := &MissingDependencyError{Stage: StageSVGOptimize, Binary: cmd.Binary}
	if !ok {
		missing.Binary = "(unregistered)"
	}

	if r.cfg.policy == OptimizeFallback {
		r.log.WithField("binary", missing.Binary).Error("cannot optimize svg, optimizer not found; writing unoptimized svg")
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", ErrOptimizationUnavailable, missing)
}

// checkDependencies resolves every stage binary and returns their paths.
// All missing binaries are reported together.
func (r *Renderer) checkDependencies(reg Registry, stages []string) (map[string]string, error) {
	paths := make(map[string]string, len(stages))
	var missing []error
	for _, name := range stages {
		cmd, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
		}
		p, err := r.lookPath(cmd.Binary)
		if err != nil {
			missing = append(missing, &MissingDependencyError{Stage: name, Binary: cmd.Binary})
			continue
		}
		paths[name] = p
	}

	switch len(missing) {
	case 0:
		return paths, nil
	case 1:
		return nil, missing[0]
	default:
		return nil, multierror.Append(nil, missing...)
	}
}

// progress logs at Info for verbose calls and at Debug otherwise.
func (r *Renderer) progress(verbose bool, fields logrus.Fields, msg string) {
	level := logrus.DebugLevel
	if verbose {
		level = logrus.InfoLevel
	}
	r.log.WithFields(fields).Log(level, msg)
}
