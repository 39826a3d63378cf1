// internal/writers/results.go
package writers

import (
	"encoding/json"
	"io"

	"polyreact/internal/jsonlutil"
	"polyreact/internal/output"
	"polyreact/internal/score"
)

func init() {
	Register(output.FormatTSV, func(out io.Writer, opt Options) (chan<- score.Row, <-chan error) {
		return startDelimited(out, '\t', opt)
	})
	Register(output.FormatCSV, func(out io.Writer, opt Options) (chan<- score.Row, <-chan error) {
		return startDelimited(out, ',', opt)
	})
	Register(output.FormatJSON, StartJSONWriter)
	Register(output.FormatJSONL, StartJSONLWriter)
}

func startDelimited(out io.Writer, comma rune, opt Options) (chan<- score.Row, <-chan error) {
	if opt.BufSize <= 0 {
		opt.BufSize = 64
	}
	in := make(chan score.Row, opt.BufSize)
	errCh := make(chan error, 1)
	go func() {
		err := output.StreamDelimited(out, comma, opt.Header, opt.ScoreColumns, in)
		if err != nil {
			// keep draining so senders never block after a write failure
			for range in {
			}
		}
		errCh <- err
	}()
	return in, errCh
}

// StartJSONWriter buffers every row and writes one document on close.
func StartJSONWriter(out io.Writer, opt Options) (chan<- score.Row, <-chan error) {
	if opt.BufSize <= 0 {
		opt.BufSize = 64
	}
	in := make(chan score.Row, opt.BufSize)
	errCh := make(chan error, 1)
	go func() {
		t := &score.Table{RunID: opt.RunID, ScoreColumns: opt.ScoreColumns}
		for r := range in {
			t.Rows = append(t.Rows, r)
		}
		errCh <- output.WriteJSON(out, t)
	}()
	return in, errCh
}

// StartJSONLWriter streams one api.ResultV1 object per line.
func StartJSONLWriter(out io.Writer, opt Options) (chan<- score.Row, <-chan error) {
	return jsonlutil.Start[score.Row](out, opt.BufSize, func(enc *json.Encoder, r score.Row) error {
		return enc.Encode(output.ToAPIResult(opt.RunID, opt.ScoreColumns, r))
	}, IsBrokenPipe)
}
