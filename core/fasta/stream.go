// core/fasta/stream.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"polyreact/core/errs"
	"polyreact/core/residue"
)

// Record is one protein sequence.
type Record struct {
	ID  string
	Seq string
}

// Stream parses protein FASTA from r and calls emit once per record.
// Lines starting with '#' or ';' are comments. Input without any '>'
// header is read as one sequence per line, named seq1, seq2, ... .
// Sequences are normalised (NFKC, whitespace removed, upper case) and
// validated against the accepted residue letters.
func Stream(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	const maxLine = 16 * 1024 * 1024
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		id      string
		seq     strings.Builder
		headers bool
		n       int
		seen    = make(map[string]bool)
	)
	flush := func() error {
		if id == "" {
			return nil
		}
		rec := Record{ID: id, Seq: Normalize(seq.String())}
		seq.Reset()
		if seen[rec.ID] {
			return fmt.Errorf("%w: duplicate sequence id %q", errs.ErrMalformedInput, rec.ID)
		}
		seen[rec.ID] = true
		if err := Validate(rec.Seq); err != nil {
			return fmt.Errorf("sequence %s: %w", rec.ID, err)
		}
		return emit(rec)
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] == '#' || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			headers = true
			n++
			id = parseHeaderID(line[1:])
			if id == "" {
				id = fmt.Sprintf("seq%d", n)
			}
			continue
		}
		if !headers {
			n++
			id = fmt.Sprintf("seq%d", n)
			seq.Write(line)
			if err := flush(); err != nil {
				return err
			}
			id = ""
			continue
		}
		seq.Write(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// ReadFile collects every record of path ("-" for stdin, gzip allowed).
func ReadFile(ctx context.Context, path string) ([]Record, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var out []Record
	err = Stream(ctx, rc, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// Normalize folds compatibility characters (full-width letters from pasted
// text), drops whitespace and upper-cases the sequence.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

// Validate rejects empty sequences and letters outside residue.Accepted.
func Validate(seq string) error {
	if seq == "" {
		return fmt.Errorf("%w: empty sequence", errs.ErrMalformedInput)
	}
	for i := 0; i < len(seq); i++ {
		if strings.IndexByte(residue.Accepted, seq[i]) < 0 {
			return fmt.Errorf("%w: invalid residue %q at position %d", errs.ErrMalformedInput, seq[i], i+1)
		}
	}
	return nil
}

func parseHeaderID(hdr []byte) string {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}
