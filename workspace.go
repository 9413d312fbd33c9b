package tex2img

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/alnah/go-tex2img/internal/params"
)

// Parameter table keys available to command templates.
const (
	KeyOutDir   = "outdir"   // directory of the requested output
	KeyFilename = "filename" // requested output name without extension
	KeyOutFile  = "out_file" // output of the stage being run
	KeyPrefix   = "prefix"   // random id prefix for the SVG optimizer
	KeyTeXFile  = "tex_file"
	KeyDVIFile  = "dvi_file"
)

// workspacePattern names temporary workspaces.
const workspacePattern = "tex2img-*"

const (
	dirPermissions  = 0o750 // rwxr-x---
	filePermissions = 0o644 // rw-r--r--
)

// FileKey returns the parameter name holding the workspace path for suffix,
// e.g. ".pdf" -> "pdf_file".
func FileKey(suffix string) string {
	return strings.TrimPrefix(strings.ToLower(suffix), ".") + "_file"
}

// Props is the per-render parameter table.
type Props struct {
	values params.Layer
	output string
}

// Get returns the value for key.
func (p Props) Get(key string) string {
	return p.values[key]
}

// Layer returns a copy of the table.
func (p Props) Layer() params.Layer {
	return p.values.Clone()
}

// Output returns the absolute user-requested output path.
func (p Props) Output() string {
	return p.output
}

// FileFor returns the workspace path for suffix.
func (p Props) FileFor(suffix string) string {
	return p.values[FileKey(suffix)]
}

// with returns a copy of p with overrides applied on top.
func (p Props) with(overrides params.Layer) Props {
	return Props{values: params.Merge(p.values, overrides), output: p.output}
}

// workspace is the scoped directory holding intermediate artifacts.
type workspace struct {
	dir       string
	temporary bool
}

// newWorkspace uses dir when given (created if missing, never removed) and
// otherwise allocates a fresh temporary directory that Close removes.
func newWorkspace(dir string) (*workspace, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: resolving %q: %v", ErrWorkspace, dir, err)
		}
		if err := os.MkdirAll(abs, dirPermissions); err != nil {
			return nil, fmt.Errorf("%w: creating %q: %v", ErrWorkspace, abs, err)
		}
		return &workspace{dir: abs}, nil
	}

	tmp, err := os.MkdirTemp("", workspacePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	}
	// Symlinked temp roots (macOS /var) would otherwise leak into paths.
	if resolved, err := filepath.EvalSymlinks(tmp); err == nil {
		tmp = resolved
	}
	return &workspace{dir: tmp, temporary: true}, nil
}

// Dir returns the absolute workspace directory.
func (w *workspace) Dir() string {
	return w.dir
}

// Close removes a temporary workspace and everything in it.
// Persistent workspaces are left alone.
func (w *workspace) Close() error {
	if !w.temporary {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("%w: removing %s: %v", ErrWorkspace, w.dir, err)
	}
	return nil
}

// props computes the parameter table for an absolute output path. Every
// supported suffix gets a workspace path whether or not the pipeline uses it.
func (w *workspace) props(output string) Props {
	stem := stemOf(output)
	base := filepath.Join(w.dir, stem)

	values := params.Layer{
		KeyOutDir:   filepath.Dir(output),
		KeyFilename: stem,
		KeyOutFile:  output,
		KeyPrefix:   randomPrefix(),
		KeyTeXFile:  base + suffixTeX,
		KeyDVIFile:  base + suffixDVI,
	}
	for _, s := range SupportedSuffixes {
		values[FileKey(s)] = base + s
	}
	return Props{values: values, output: output}
}

// intermediateSVG returns a workspace path for the unoptimized SVG that can
// never collide with the stem-derived names.
func (w *workspace) intermediateSVG(stem string) string {
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return filepath.Join(w.dir, stem+"-"+id+SuffixSVG)
}

// stemOf returns the file name without its last extension.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

const prefixLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randomPrefix returns five distinct letters followed by an underscore.
// Letters only, since SVG ids must not start with a digit.
func randomPrefix() string {
	var b strings.Builder
	for _, i := range rand.Perm(len(prefixLetters))[:5] {
		b.WriteByte(prefixLetters[i])
	}
	b.WriteByte('_')
	return b.String()
}
