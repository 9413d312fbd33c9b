package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-tex2img"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2img [flags] [body]")
	fmt.Fprintln(w, "       tex2img <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a TeX fragment to "+strings.Join(tex2img.SupportedSuffixes, " ")+".")
	fmt.Fprintln(w, "The output suffix selects the format.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  deps       Check the external toolchain (same as --check-deps)")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input-file <path>   Read the body from a file (- for stdin)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (repeatable)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel renders (0 = auto)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --template-file <path> Document template (${body} ${preamble} ${fontsize})")
	fmt.Fprintln(w, "      --preamble-file <path> Preamble inserted at ${preamble}")
	fmt.Fprintln(w, "      --fontsize <n>        Font size in points (default 12)")
	fmt.Fprintln(w, "      --param <k=v>         Extra template parameter (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stages:")
	fmt.Fprintln(w, "      --arguments <s=args>  Replace a stage argument template (repeatable)")
	fmt.Fprintln(w, "                            Stages: "+strings.Join(tex2img.DefaultRegistry().Names(), ", "))
	fmt.Fprintln(w, "      --optimize-svg        Run scour on svg output")
	fmt.Fprintln(w, "      --optimize-policy <p> When scour is missing: require (default) or fallback")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "      --timeout <d>         Per-stage timeout (default 2m)")
	fmt.Fprintln(w, "      --workdir <path>      Keep intermediate files in this directory")
	fmt.Fprintln(w, "      --libgs <path>        libgs.dylib location (macOS)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log every stage")
	fmt.Fprintln(w, "      --check-deps          Check the toolchain and exit")
	fmt.Fprintln(w, "      --json                JSON output for --check-deps")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintln(w, "  tex2img -o formula.svg -o formula.png '$e^{i\\pi} + 1 = 0$'")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "deps":
		fmt.Fprintln(env.Stdout, "Usage: tex2img deps [--json] [-c config]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Report where each toolchain binary resolves on PATH.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: tex2img version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: tex2img help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
