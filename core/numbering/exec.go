// core/numbering/exec.go
package numbering

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"polyreact/core/errs"
)

// ExecNumberer runs an external numbering program. The program receives the
// sequences as FASTA on stdin and must print a long-format table (see
// ReadTable) keyed by the FASTA record IDs on stdout.
type ExecNumberer struct {
	Path string
	Args []string
}

// NewExecNumberer splits a command line on whitespace.
func NewExecNumberer(cmdline string) (*ExecNumberer, error) {
	f := strings.Fields(cmdline)
	if len(f) == 0 {
		return nil, fmt.Errorf("empty numbering command")
	}
	return &ExecNumberer{Path: f[0], Args: f[1:]}, nil
}

// Number implements Numberer.
func (e *ExecNumberer) Number(ctx context.Context, seqs []Sequence) ([]Residue, error) {
	var in bytes.Buffer
	for _, s := range seqs {
		fmt.Fprintf(&in, ">%s\n%s\n", s.ID, s.Seq)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Path, e.Args...)
	cmd.Stdin = &in
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, fmt.Errorf("%w: numbering command %s: %v: %s", errs.ErrMalformedInput, e.Path, err, msg)
	}
	rs, err := ReadTable(&stdout)
	if err != nil {
		return nil, fmt.Errorf("numbering command %s: %w", e.Path, err)
	}
	return NewTableNumberer(rs).Number(ctx, seqs)
}
