package tex2img

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-tex2img/internal/fileutil"
)

// EnvLibGS is the environment variable ps2pdf and gs read to locate the
// Ghostscript shared library.
const EnvLibGS = "LIBGS"

// libgsName is the macOS Ghostscript library file name.
const libgsName = "libgs.dylib"

// systemLibDirs are searched before any fallback, mirroring the dynamic
// loader's default search path.
var systemLibDirs = []string{"/usr/local/lib", "/usr/lib"}

// homebrewLibGS are the fallback locations for Intel and Apple Silicon
// Homebrew installs.
var homebrewLibGS = []string{
	"/usr/local/opt/ghostscript/lib/libgs.dylib",
	"/opt/homebrew/opt/ghostscript/lib/libgs.dylib",
}

// libGSLocator resolves the LIBGS value to inject into Ghostscript stages.
type libGSLocator struct {
	goos     string
	override string // explicit path from WithLibGS or the environment
	getenv   func(string) string
	exists   func(string) bool
}

// resolve returns the library path to export as LIBGS, or "" when nothing
// needs to be injected. Only darwin needs help: elsewhere the loader finds
// libgs on its own.
func (l libGSLocator) resolve() string {
	if l.goos != "darwin" {
		return ""
	}
	if l.discoverable() {
		return ""
	}
	if l.override != "" {
		return l.override
	}
	for _, p := range homebrewLibGS {
		if l.exists(p) {
			return p
		}
	}
	return ""
}

// discoverable reports whether the dynamic loader would find libgs without
// an explicit LIBGS.
func (l libGSLocator) discoverable() bool {
	dirs := filepath.SplitList(l.getenv("DYLD_LIBRARY_PATH"))
	dirs = append(dirs, systemLibDirs...)
	for _, d := range dirs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		if l.exists(filepath.Join(d, libgsName)) {
			return true
		}
	}
	return false
}

// defaultLibGSLocator reads the running platform and process environment.
func defaultLibGSLocator(goos, override string) libGSLocator {
	if override == "" {
		override = os.Getenv(EnvLibGS)
	}
	return libGSLocator{
		goos:     goos,
		override: override,
		getenv:   os.Getenv,
		exists:   fileutil.FileExists,
	}
}

// stageEnv builds the child environment for cmd. LIBGS is only added for
// Ghostscript based stages.
func stageEnv(base []string, cmd Command, libgs string) []string {
	env := make([]string, 0, len(base)+1)
	env = append(env, base...)
	if cmd.Ghostscript && libgs != "" {
		env = append(env, EnvLibGS+"="+libgs)
	}
	return env
}
