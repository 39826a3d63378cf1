// Package score runs the polyreactivity pipeline: numbering, CDR
// extraction, optional mutant expansion, the CDR length filter, summary
// statistics and every configured model.
package score

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"polyreact/core/cdr"
	"polyreact/core/model"
	"polyreact/core/mutate"
	"polyreact/core/numbering"
	"polyreact/core/physchem"
	"polyreact/internal/logging"
	"polyreact/internal/manifest"
)

// ModelLoader resolves a manifest entry to a ready scorer.
type ModelLoader interface {
	Load(ctx context.Context, m manifest.Model) (model.Scorer, error)
}

// Scorer holds the collaborators of a scoring run.
type Scorer struct {
	Numberer  numbering.Numberer
	Generator mutate.Generator // nil means mutate.Doubles{}
	Manifest  *manifest.Manifest
	Models    ModelLoader
	Log       *logging.Logger
	// Parallel evaluates the models concurrently; results are identical.
	Parallel bool
}

func (s *Scorer) log() *logging.Logger {
	if s.Log == nil {
		return logging.Discard()
	}
	return s.Log
}

// ScoreSequences scores seqs. With doubles set and exactly one extracted
// record, that record's single and double mutants are scored after it.
// A table with no rows is not an error.
func (s *Scorer) ScoreSequences(ctx context.Context, seqs []numbering.Sequence, doubles bool) (*Table, error) {
	runID := uuid.NewString()
	log := s.log().With("score", logging.String("run_id", runID))
	start := time.Now()

	residues, err := s.Numberer.Number(ctx, seqs)
	if err != nil {
		return nil, fmt.Errorf("numbering: %w", err)
	}
	recs := cdr.Extract(residues)
	log.Debug("extracted", logging.Int("sequences", len(seqs)), logging.Int("records", len(recs)))

	if doubles && len(recs) == 1 && !recs[0].Missing {
		gen := s.Generator
		if gen == nil {
			gen = mutate.Doubles{}
		}
		muts, err := gen.Generate(ctx, recs[0])
		if err != nil {
			return nil, fmt.Errorf("mutants: %w", err)
		}
		recs = append(recs, muts...)
		log.Info("expanded mutants", logging.Int("mutants", len(muts)))
	}

	kept := Filter(recs)
	if dropped := len(recs) - len(kept); dropped > 0 {
		log.Info("dropped malformed CDRs", logging.Int("dropped", dropped), logging.Int("kept", len(kept)))
	}

	t := &Table{RunID: runID, ScoreColumns: s.Manifest.Columns(), Rows: make([]Row, len(kept))}
	for i := range kept {
		sum, err := physchem.Summarize(&kept[i])
		if err != nil {
			return nil, err
		}
		t.Rows[i] = Row{Record: kept[i], Summary: sum, Scores: make([]float64, len(t.ScoreColumns))}
	}
	if len(kept) == 0 {
		return t, nil
	}

	cols, err := s.scoreModels(ctx, log, kept)
	if err != nil {
		return nil, err
	}
	for j, col := range cols {
		for i, v := range col {
			t.Rows[i].Scores[j] = v
		}
	}
	log.Info("scored", logging.Int("rows", len(t.Rows)), logging.Int("models", len(cols)),
		logging.Duration("took", time.Since(start)))
	return t, nil
}

// Filter drops records without CDRs and records whose gapped CDRs are not
// the expected 8 + 9 + 22 columns.
func Filter(recs []cdr.Record) []cdr.Record {
	out := make([]cdr.Record, 0, len(recs))
	for _, r := range recs {
		if r.Missing || len(r.CDRSWithGaps) != cdr.CDRSGappedWidth {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Scorer) scoreModels(ctx context.Context, log *logging.Logger, recs []cdr.Record) ([][]float64, error) {
	cols := make([][]float64, len(s.Manifest.Models))
	run := func(ctx context.Context, j int) error {
		m := s.Manifest.Models[j]
		start := time.Now()
		sc, err := s.Models.Load(ctx, m)
		if err != nil {
			return err
		}
		in := make([]string, len(recs))
		for i := range recs {
			v, ok := recs[i].Column(m.Region)
			if !ok {
				return fmt.Errorf("model %q: unknown region %q", m.Column, m.Region)
			}
			in[i] = v
		}
		out, err := sc.Score(ctx, in)
		if err != nil {
			return fmt.Errorf("model %q: %w", m.Column, err)
		}
		if err := model.CheckLength(out, len(in)); err != nil {
			return fmt.Errorf("model %q: %w", m.Column, err)
		}
		cols[j] = out
		log.Debug("model scored", logging.String("column", m.Column), logging.Duration("took", time.Since(start)))
		return nil
	}

	if !s.Parallel {
		for j := range cols {
			if err := run(ctx, j); err != nil {
				return nil, err
			}
		}
		return cols, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for j := range cols {
		j := j
		g.Go(func() error { return run(gctx, j) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cols, nil
}
