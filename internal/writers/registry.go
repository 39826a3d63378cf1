// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"polyreact/internal/score"
)

// Options configure a row writer.
type Options struct {
	RunID        string
	ScoreColumns []string
	Header       bool
	BufSize      int
}

// Factory starts a writer goroutine. The caller sends rows, closes the
// channel and then receives exactly one error.
type Factory func(out io.Writer, opt Options) (chan<- score.Row, <-chan error)

var factories = map[string]Factory{}

// Register installs f for format. Last registration wins.
func Register(format string, f Factory) { factories[format] = f }

// Registered lists the known formats in sorted order.
func Registered() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Start dispatches to the writer registered for format.
func Start(format string, out io.Writer, opt Options) (chan<- score.Row, <-chan error, error) {
	f, ok := factories[format]
	if !ok {
		return nil, nil, fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	in, done := f(out, opt)
	return in, done, nil
}
