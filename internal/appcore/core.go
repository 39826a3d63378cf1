// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"polyreact/core/errs"
	"polyreact/internal/score"
	"polyreact/internal/writers"
)

// Exit codes shared by the polyreact commands.
const (
	ExitOK       = 0
	ExitNoResult = 1
	ExitUsage    = 2
	ExitRuntime  = 3
	ExitCanceled = 130
)

type Options struct {
	Format           string
	Header           bool
	BufSize          int
	NoResultExitCode int
}

// Producer computes the result table of one run.
type Producer func(ctx context.Context) (*score.Table, error)

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.Is(err, errs.ErrMalformedInput), errors.Is(err, errs.ErrDegenerateInput):
		return ExitUsage
	default:
		return ExitRuntime
	}
}

// Run produces the table and streams its rows to the writer registered
// for o.Format. A table without rows yields o.NoResultExitCode.
func Run(parent context.Context, stdout, stderr io.Writer, o Options, produce Producer) int {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	t, perr := produce(ctx)
	if perr != nil {
		if code := ExitCode(perr); code != ExitCanceled {
			fmt.Fprintln(stderr, perr)
			return code
		}
		return ExitCanceled
	}

	outw := bufio.NewWriter(stdout)
	inCh, writeErr, err := writers.Start(o.Format, outw, writers.Options{
		RunID:        t.RunID,
		ScoreColumns: t.ScoreColumns,
		Header:       o.Header,
		BufSize:      o.BufSize,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	var serr error
send:
	for _, r := range t.Rows {
		select {
		case inCh <- r:
		case <-ctx.Done():
			serr = ctx.Err()
			break send
		}
	}
	close(inCh)

	if werr := <-writeErr; writers.IsBrokenPipe(werr) {
		return ExitOK
	} else if werr != nil {
		fmt.Fprintln(stderr, werr)
		return ExitRuntime
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return ExitOK
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return ExitRuntime
	}
	if serr != nil {
		return ExitCanceled
	}
	if len(t.Rows) == 0 {
		return o.NoResultExitCode
	}
	return ExitOK
}
