package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUnknownCommand reports a help topic that does not exist.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	env := DefaultEnv()
	env.Startup = configureMaxProcs
	os.Exit(run(os.Args[1:], env))
}

// run dispatches args and returns the process exit code.
func run(args []string, env *Environment) int {
	err := dispatch(context.Background(), args, env)
	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		}
	}
	return exitCodeFor(err)
}

// dispatch routes subcommands; anything else is a render.
func dispatch(ctx context.Context, args []string, env *Environment) error {
	if len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Fprintf(env.Stdout, "tex2img %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		case "help", "-h", "--help":
			return runHelp(args[1:], env)
		case "deps":
			return runRender(ctx, append([]string{"--check-deps"}, args[1:]...), env)
		}
	}
	return runRender(ctx, args, env)
}

// configureMaxProcs sets GOMAXPROCS from the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func configureMaxProcs(log logrus.FieldLogger) {
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Infof(format, args...)
	}))
}
