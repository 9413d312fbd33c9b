package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tex2img"
)

// Sentinel errors for the render command.
var (
	ErrNoInput   = errors.New("no TeX body given")
	ErrNoOutput  = errors.New("no output file given (use -o)")
	ErrReadInput = errors.New("failed to read input")
)

// reportedError wraps failures whose details were already printed.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// RenderResult holds the outcome of rendering one output.
type RenderResult struct {
	Output    string
	Size      int64
	Stages    int
	Workspace string
	Err       error
	Duration  time.Duration
}

// runRender orchestrates a render: settings, body, then every output.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args)
	if err != nil {
		return err
	}

	log := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	if env.Startup != nil {
		env.Startup(log)
	}
	warnUnknownEnvVars(log)

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)

	if flags.checkDeps {
		return runDeps(cfg, flags.json, env, log)
	}

	settings, err := resolveSettings(flags, cfg, log)
	if err != nil {
		return err
	}

	body, err := readBody(positional, flags.inputFile, env.Stdin)
	if err != nil {
		if errors.Is(err, ErrNoInput) {
			printUsage(env.Stderr)
		}
		return err
	}

	outputs := resolveOutputs(flags.outputs, settings.outputDir, log)
	if len(outputs) == 0 {
		return ErrNoOutput
	}

	renderer, err := env.NewRenderer(settings.options(log)...)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(ctx)
	defer stop()

	doc := renderer.Prepare(body, tex2img.PrepareOptions{})
	log.WithFields(logrus.Fields{"outputs": len(outputs), "workers": settings.workers}).Info("rendering")

	results := renderBatch(ctx, renderer, doc, outputs, settings.workers, tex2img.RenderOptions{
		Verbose:     flags.common.verbose,
		OptimizeSVG: settings.optimizeSVG,
		WorkDir:     settings.workDir,
	})
	return printResults(results, flags.common.quiet, flags.common.verbose, env)
}

// renderBatch renders outputs concurrently from the same document.
func renderBatch(ctx context.Context, r Renderer, doc string, outputs []string, workers int, opts tex2img.RenderOptions) []RenderResult {
	if len(outputs) == 0 {
		return nil
	}

	concurrency := workers
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(outputs) {
		concurrency = len(outputs)
	}

	results := make([]RenderResult, len(outputs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(outputs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{Output: outputs[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = renderOne(ctx, r, doc, outputs[idx], jobOptions(opts, idx, outputs[idx], len(outputs)))
			}
		}()
	}

	for i := range outputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// jobOptions gives each output its own subdirectory of a persistent
// workspace when several outputs are rendered at once. The job index keeps
// outputs with the same base name in different directories.
func jobOptions(opts tex2img.RenderOptions, idx int, output string, total int) tex2img.RenderOptions {
	if opts.WorkDir != "" && total > 1 {
		opts.WorkDir = filepath.Join(opts.WorkDir, fmt.Sprintf("%d-%s", idx+1, filepath.Base(output)))
	}
	return opts
}

// renderOne renders a single output and records the outcome.
func renderOne(ctx context.Context, r Renderer, doc, output string, opts tex2img.RenderOptions) RenderResult {
	start := time.Now()
	result := RenderResult{Output: output}

	res, err := r.Render(ctx, doc, output, opts)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}

	result.Output = res.Output
	result.Size = res.Size
	result.Stages = len(res.Stages)
	result.Workspace = res.Workspace
	return result
}

// ResultSummary holds the count of succeeded and failed renders.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed renders.
func countResults(results []RenderResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs render results and returns the aggregated failures.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) error {
	summary := countResults(results)
	var errs *multierror.Error

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.Output, r.Err, hintFor(r.Err))
			errs = multierror.Append(errs, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s (%s, %d stages, %v)\n", r.Output, humanize.Bytes(uint64(r.Size)), r.Stages, r.Duration.Round(time.Millisecond))
			if r.Workspace != "" {
				fmt.Fprintf(env.Stdout, "  intermediates kept in %s\n", r.Workspace)
			}
		} else {
			fmt.Fprintf(env.Stdout, "Created %s (%s)\n", r.Output, humanize.Bytes(uint64(r.Size)))
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return reportedError{err}
	}
	return nil
}
