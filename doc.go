// Package tex2img renders TeX fragments to PS, EPS, PDF, SVG, PNG, JPG or
// TIFF by chaining the standard TeX and Ghostscript command-line tools.
//
// # Quick Start
//
// Create a renderer, prepare a document and render it:
//
//	r, err := tex2img.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc := r.Prepare(`$e^{i\pi} + 1 = 0$`, tex2img.PrepareOptions{})
//	res, err := r.Render(ctx, doc, "euler.png", tex2img.RenderOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Output, res.Size)
//
// # Conversion Pipeline
//
// The output suffix selects the chain of tools:
//
//	.ps             latex -> dvips
//	.eps            latex -> dvips -E
//	.pdf            latex -> dvips -> ps2pdf
//	.svg            latex -> dvisvgm [-> scour]
//	.png .jpg .tiff latex -> dvips -> ps2pdf -> gs
//
// Intermediate files live in a temporary workspace that is removed when
// Render returns, unless RenderOptions.WorkDir names a directory to keep.
//
// # Command Templates
//
// Every stage is a Command whose argument template uses ${name}
// placeholders. Available names are outdir, filename, out_file, prefix,
// tex_file, dvi_file and one <ext>_file per supported suffix. Override a
// stage for every render or for a single call:
//
//	r, err := tex2img.NewRenderer(tex2img.WithArguments(map[string]string{
//	    tex2img.StageToPNG: "-dNOPAUSE -sDEVICE=png16m -r300 -o ${out_file} ${pdf_file}",
//	}))
//
// A template referencing an unknown name fails with ErrTemplate. Document
// templates are more forgiving: unknown placeholders are kept verbatim.
//
// # Errors
//
// Render returns errors matching ErrUnsupportedFormat, ErrMissingDependency,
// ErrOptimizationUnavailable, ErrTemplate or ErrStageFailed. Use errors.As
// with *StageError to read the failing stage, exit code and captured output.
//
// # Ghostscript on macOS
//
// When libgs.dylib is not on the loader path, ps2pdf and gs get LIBGS from
// WithLibGS, the LIBGS environment variable, or a Homebrew install.
package tex2img
