// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"regexp"
	"runtime"
	"strings"

	"github.com/alnah/go-tex2img/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// GOOS is the platform hints are written for.
var GOOS = runtime.GOOS

// packages maps a binary to the package that ships it, per package manager.
var packages = map[string]struct{ apt, brew string }{
	"latex":   {"texlive-latex-base", "--cask mactex-no-gui"},
	"dvips":   {"texlive-binaries", "--cask mactex-no-gui"},
	"dvisvgm": {"dvisvgm", "dvisvgm"},
	"ps2pdf":  {"ghostscript", "ghostscript"},
	"gs":      {"ghostscript", "ghostscript"},
	"scour":   {"scour", "scour"},
}

// ForMissingBinary returns install instructions for a toolchain binary.
func ForMissingBinary(binary string) string {
	pkg, ok := packages[binary]
	if !ok {
		return format("install " + binary + " and make sure it is on PATH")
	}

	switch {
	case GOOS == "darwin":
		return format("brew install " + pkg.brew)
	case GOOS == "windows":
		if binary == "scour" {
			return format("pip install scour")
		}
		return format("install MiKTeX and Ghostscript, then reopen the terminal")
	case IsInContainer():
		return format("add 'apt-get install -y " + pkg.apt + "' to the image")
	default:
		return format("apt-get install " + pkg.apt + " (or your distribution's equivalent)")
	}
}

// ForLibGS returns a hint when a Ghostscript stage fails on macOS.
func ForLibGS() string {
	if GOOS != "darwin" {
		return ""
	}
	return format("if Ghostscript cannot load libgs, set LIBGS or --libgs to the path of libgs.dylib")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents or high resolutions, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-tex2img/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-tex2img") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnsupportedFormat lists the output suffixes that can be rendered.
func ForUnsupportedFormat(supported []string) string {
	if len(supported) == 0 {
		return ""
	}
	return format("choose an output ending in " + strings.Join(supported, ", "))
}

// ForUnknownStage lists the stage names accepted by --arguments.
func ForUnknownStage(stages []string) string {
	if len(stages) == 0 {
		return ""
	}
	return format("available stages: " + strings.Join(stages, ", "))
}

var (
	missingPackage = regexp.MustCompile("File `([^']+\\.sty)' not found")
	undefinedCS    = regexp.MustCompile(`! Undefined control sequence`)
)

// ForTeXLog inspects latex output and suggests a fix for common mistakes.
func ForTeXLog(output string) string {
	if m := missingPackage.FindStringSubmatch(output); m != nil {
		return format("install the LaTeX package providing " + m[1] + " (tlmgr install " + strings.TrimSuffix(m[1], ".sty") + ")")
	}
	if undefinedCS.MatchString(output) {
		return format("a command is not defined; add the package that provides it with --preamble-file")
	}
	return ""
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
