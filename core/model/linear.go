// Package model holds the scoring models: linear decision functions over
// encoded features and small convolutional and recurrent networks over
// padded one-hot matrices. Every model returns an unbounded real score per
// sequence; higher means more polyreactive.
package model

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"polyreact/core/errs"
)

// DefaultBatchSize bounds the rows encoded at once for wide feature sets.
const DefaultBatchSize = 1024

// Linear is a binary logistic-regression decision function:
// score = x . Coef + Intercept.
type Linear struct {
	Coef      []float64
	Intercept float64
}

// Width is the feature width the model was trained on.
func (m *Linear) Width() int { return len(m.Coef) }

// DecisionFunction scores every row of x.
func (m *Linear) DecisionFunction(x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	if r == 0 {
		return []float64{}, nil
	}
	if c != len(m.Coef) {
		return nil, fmt.Errorf("%w: features have %d columns, model expects %d",
			errs.ErrShapeMismatch, c, len(m.Coef))
	}
	var out mat.VecDense
	out.MulVec(x, mat.NewVecDense(len(m.Coef), m.Coef))
	scores := make([]float64, r)
	for i := range scores {
		scores[i] = out.AtVec(i) + m.Intercept
	}
	return scores, nil
}

// Encoder turns a slice of region strings into a feature matrix.
type Encoder func(seqs []string) (*mat.Dense, error)

// ScoreBatches encodes and scores seqs in consecutive chunks of at most
// batch rows. Scores are returned in input order and do not depend on the
// batch size as long as enc encodes each row independently.
func (m *Linear) ScoreBatches(seqs []string, batch int, enc Encoder) ([]float64, error) {
	return LinearScorer{Model: m, Encode: enc, Batch: batch}.Score(context.Background(), seqs)
}

// Chunk is a half-open row range.
type Chunk struct{ Lo, Hi int }

// Chunks splits [0,n) into disjoint consecutive ranges of at most size rows.
// A non-positive size yields a single chunk.
func Chunks(n, size int) []Chunk {
	if n <= 0 {
		return nil
	}
	if size <= 0 || size >= n {
		return []Chunk{{0, n}}
	}
	out := make([]Chunk, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		out = append(out, Chunk{lo, min(lo+size, n)})
	}
	return out
}
