package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// stopSignals abort a render. The running tool's process group is killed
// and temporary workspaces are removed on the way out. Windows never
// delivers SIGTERM or SIGHUP, so only the interrupt applies there.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
