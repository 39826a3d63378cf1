// Package mutate enumerates point-substitution variants of a wild-type CDR
// record.
package mutate

import (
	"context"
	"fmt"
	"strings"

	"polyreact/core/cdr"
	"polyreact/core/errs"
	"polyreact/core/residue"
)

// Generator expands one wild-type record into mutant records. The wild
// type itself is not part of the result.
type Generator interface {
	Generate(ctx context.Context, wt cdr.Record) ([]cdr.Record, error)
}

// Region names used in mutation labels.
const (
	RegionCDR1 = "CDR1"
	RegionCDR2 = "CDR2"
	RegionCDR3 = "CDR3"
)

// Doubles substitutes every residue of the gapped CDR1, CDR2 and CDR3 with
// every other letter of Alphabet: first all singles, then all doubles over
// site pairs i < j. Mutants share their Offsets slices with the wild type.
type Doubles struct {
	// Alphabet defaults to residue.Alphabet.
	Alphabet    string
	SinglesOnly bool
}

// Site is one mutable CDR position.
type Site struct {
	Region string
	Pos    int // 1-based column in the gapped CDR string
	Offset int // index into the full sequence
	WT     byte
}

type sub struct {
	site Site
	to   byte
}

func (s sub) String() string {
	return fmt.Sprintf("%s:%c%d%c", s.site.Region, s.site.WT, s.site.Pos, s.to)
}

// Sites lists the mutable positions of r in CDR1, CDR2, CDR3 order. A
// full-sequence residue that appears twice in the gapped strings is listed
// once.
func Sites(r cdr.Record) []Site {
	var out []Site
	seen := make(map[int]bool)
	add := func(region, s string, offs []int) {
		for i := 0; i < len(s) && i < len(offs); i++ {
			o := offs[i]
			if s[i] == residue.Gap || o < 0 || seen[o] {
				continue
			}
			seen[o] = true
			out = append(out, Site{Region: region, Pos: i + 1, Offset: o, WT: s[i]})
		}
	}
	add(RegionCDR1, r.CDR1WithGaps, r.Offsets.CDR1)
	add(RegionCDR2, r.CDR2WithGaps, r.Offsets.CDR2)
	add(RegionCDR3, r.CDR3WithGaps, r.Offsets.CDR3)
	return out
}

func (d Doubles) alphabet() string {
	if d.Alphabet == "" {
		return residue.Alphabet
	}
	return d.Alphabet
}

// Count is the number of records Generate would return for r.
func (d Doubles) Count(r cdr.Record) int {
	opts := d.options(Sites(r))
	n := 0
	for _, o := range opts {
		n += len(o)
	}
	if d.SinglesOnly {
		return n
	}
	for i := range opts {
		for j := i + 1; j < len(opts); j++ {
			n += len(opts[i]) * len(opts[j])
		}
	}
	return n
}

func (d Doubles) options(sites []Site) [][]sub {
	alpha := d.alphabet()
	out := make([][]sub, len(sites))
	for i, s := range sites {
		for k := 0; k < len(alpha); k++ {
			if alpha[k] != s.WT {
				out[i] = append(out[i], sub{site: s, to: alpha[k]})
			}
		}
	}
	return out
}

func (d Doubles) Generate(ctx context.Context, wt cdr.Record) ([]cdr.Record, error) {
	if wt.Missing {
		return nil, fmt.Errorf("%w: record %s has no CDRs to mutate", errs.ErrDegenerateInput, wt.ID)
	}
	for _, o := range [][]int{wt.Offsets.CDR1, wt.Offsets.CDR2, wt.Offsets.CDR2Full, wt.Offsets.CDR3} {
		for _, v := range o {
			if v >= len(wt.FullSequence) {
				return nil, fmt.Errorf("%w: record %s offset %d beyond sequence length %d",
					errs.ErrMalformedInput, wt.ID, v, len(wt.FullSequence))
			}
		}
	}
	opts := d.options(Sites(wt))
	out := make([]cdr.Record, 0, d.Count(wt))
	for _, os := range opts {
		for _, s := range os {
			out = append(out, apply(wt, s))
		}
	}
	if d.SinglesOnly {
		return out, nil
	}
	for i := range opts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(opts); j++ {
			for _, a := range opts[i] {
				for _, b := range opts[j] {
					out = append(out, apply(wt, a, b))
				}
			}
		}
	}
	return out, nil
}

func apply(wt cdr.Record, subs ...sub) cdr.Record {
	full := []byte(wt.FullSequence)
	labels := make([]string, len(subs))
	for i, s := range subs {
		full[s.site.Offset] = s.to
		labels[i] = s.String()
	}
	m := wt
	m.FullSequence = string(full)
	m.Mutations = strings.Join(labels, ";")
	m.CDR1WithGaps = regap(wt.CDR1WithGaps, wt.Offsets.CDR1, full)
	m.CDR2WithGaps = regap(wt.CDR2WithGaps, wt.Offsets.CDR2, full)
	m.CDR2WithGapsFull = regap(wt.CDR2WithGapsFull, wt.Offsets.CDR2Full, full)
	m.CDR3WithGaps = regap(wt.CDR3WithGaps, wt.Offsets.CDR3, full)
	m.Derive()
	return m
}

// regap rewrites every non-gap column of s from the full sequence.
func regap(s string, offs []int, full []byte) string {
	b := []byte(s)
	for i := 0; i < len(b) && i < len(offs); i++ {
		if offs[i] >= 0 {
			b[i] = full[offs[i]]
		}
	}
	return string(b)
}
