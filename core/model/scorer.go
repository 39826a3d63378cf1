package model

import (
	"context"
	"fmt"

	"polyreact/core/errs"
)

// Scorer maps region strings to one score each, in input order.
type Scorer interface {
	Score(ctx context.Context, seqs []string) ([]float64, error)
}

// LinearScorer runs a Linear model over encoded chunks of at most Batch rows.
// Check, when set, sees the whole batch before any chunk is encoded.
type LinearScorer struct {
	Model  *Linear
	Encode Encoder
	Check  func(seqs []string) error
	Batch  int
}

func (s LinearScorer) Score(ctx context.Context, seqs []string) ([]float64, error) {
	if s.Check != nil && len(seqs) > 0 {
		if err := s.Check(seqs); err != nil {
			return nil, err
		}
	}
	out := make([]float64, 0, len(seqs))
	for _, c := range Chunks(len(seqs), s.Batch) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, err := s.Encode(seqs[c.Lo:c.Hi])
		if err != nil {
			return nil, err
		}
		v, err := s.Model.DecisionFunction(x)
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return out, nil
}

// NetworkScorer runs a Network over chunks of at most Batch sequences.
type NetworkScorer struct {
	Net   Network
	Batch int
}

func (s NetworkScorer) Score(ctx context.Context, seqs []string) ([]float64, error) {
	out := make([]float64, 0, len(seqs))
	for _, c := range Chunks(len(seqs), s.Batch) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := ScoreNetwork(s.Net, seqs[c.Lo:c.Hi])
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return out, nil
}

// CheckLength fails unless a scorer returned one value per input.
func CheckLength(got []float64, want int) error {
	if len(got) != want {
		return fmt.Errorf("%w: model returned %d scores for %d sequences", errs.ErrShapeMismatch, len(got), want)
	}
	return nil
}
