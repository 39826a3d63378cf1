// Package appshell wires a command's run function to the process:
// signals, arguments and the exit status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc is the shape of every command entry point.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Code runs run with ctx and reports 130 when ctx was cancelled during an
// otherwise successful run.
func Code(ctx context.Context, run RunFunc, argv []string, stdout, stderr io.Writer) int {
	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}

// Main runs run on os.Args and exits. SIGINT and SIGTERM cancel the context.
func Main(run RunFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Code(ctx, run, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
