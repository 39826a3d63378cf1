package model

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"polyreact/core/encode"
	"polyreact/core/errs"
	"polyreact/core/residue"
)

func TestLinearDecisionFunction(t *testing.T) {
	m := &Linear{Coef: []float64{1, -2, 0.5}, Intercept: 0.25}
	x := mat.NewDense(2, 3, []float64{
		1, 0, 0,
		1, 1, 2,
	})
	got, err := m.DecisionFunction(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.25, 0.25}, got, 1e-12)

	_, err = m.DecisionFunction(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)

	got, err = m.DecisionFunction(&mat.Dense{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChunks(t *testing.T) {
	assert.Nil(t, Chunks(0, 10))
	assert.Equal(t, []Chunk{{0, 5}}, Chunks(5, 10))
	assert.Equal(t, []Chunk{{0, 5}}, Chunks(5, 0))
	assert.Equal(t, []Chunk{{0, 1024}, {1024, 2048}, {2048, 2050}}, Chunks(2050, 1024))
	assert.Equal(t, []Chunk{{0, 2}, {2, 4}}, Chunks(4, 2))
}

func TestScoreBatchesIndependentOfBatchSize(t *testing.T) {
	v, err := encode.NewKmerVocabulary(3)
	require.NoError(t, err)
	coef := make([]float64, v.Size())
	for i := range coef {
		coef[i] = math.Sin(float64(i))
	}
	m := &Linear{Coef: coef, Intercept: -0.1}

	base := []string{"GRTFMGWFAISWSSTYYAADRGSSWYDY", "ACDEFGHIKLMNPQRSTVWY", "AC", "MKVLAAGIW"}
	seqs := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		seqs = append(seqs, base[i%len(base)][i%3:])
	}
	enc := func(s []string) (*mat.Dense, error) { return v.Encode(s, 0) }

	want, err := m.ScoreBatches(seqs, 0, enc)
	require.NoError(t, err)
	require.Len(t, want, len(seqs))
	for _, b := range []int{1, 7, 16, 49, 50, 1024} {
		got, err := m.ScoreBatches(seqs, b, enc)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-12, "batch %d", b)
	}
}

func oneFilterCNN(t *testing.T, maxLen, kernel int, set map[[2]int]float64, fc, fcB float64) *CNN {
	t.Helper()
	w := make([]float64, residue.Size*kernel)
	for k, v := range set {
		w[k[0]*kernel+k[1]] = v
	}
	n, err := NewCNN(maxLen, 1, kernel, w, []float64{0}, []float64{fc}, fcB)
	require.NoError(t, err)
	return n
}

func TestCNNForward(t *testing.T) {
	a, c := residue.Index('A'), residue.Index('C')

	n := oneFilterCNN(t, 3, 1, map[[2]int]float64{{a, 0}: 1}, 2, 0.5)
	got, err := ScoreNetwork(n, []string{"AAC", "CCC"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.5, 0.5}, got, 1e-12)

	// negative activations are clipped before pooling
	n = oneFilterCNN(t, 3, 1, map[[2]int]float64{{a, 0}: -1}, 2, 0.5)
	got, err = ScoreNetwork(n, []string{"AAA"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got[0], 1e-12)

	n = oneFilterCNN(t, 3, 2, map[[2]int]float64{{a, 0}: 1, {c, 1}: 1}, 1, 0)
	got, err = ScoreNetwork(n, []string{"GAC", "CAG", "AC"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 1, 2}, got, 1e-12)
}

func TestCNNRejectsBadShapes(t *testing.T) {
	_, err := NewCNN(3, 1, 2, make([]float64, 39), []float64{0}, []float64{1}, 0)
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)
	_, err = NewCNN(1, 1, 2, make([]float64, 40), []float64{0}, []float64{1}, 0)
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)

	n := oneFilterCNN(t, 3, 1, nil, 1, 0)
	_, err = n.Forward(mat.NewDense(4, residue.Size, nil))
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func scalarLSTM(seq string, maxLen int, win, whh [4]float64, fc float64) float64 {
	sig := func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
	var h, c float64
	for t := 0; t < maxLen; t++ {
		x := 0.0
		if t < len(seq) && seq[t] == 'A' {
			x = 1
		}
		i := sig(win[0]*x + whh[0]*h)
		f := sig(win[1]*x + whh[1]*h)
		g := math.Tanh(win[2]*x + whh[2]*h)
		o := sig(win[3]*x + whh[3]*h)
		c = f*c + i*g
		h = o * math.Tanh(c)
	}
	return fc * h
}

func TestRNNForwardMatchesScalarLSTM(t *testing.T) {
	win := [4]float64{0.5, -0.3, 0.8, 0.2}
	whh := [4]float64{0.1, 0.2, 0.3, 0.4}
	wih := mat.NewDense(4, residue.Size, nil)
	for g := 0; g < 4; g++ {
		wih.Set(g, residue.Index('A'), win[g])
	}
	layer := LSTMLayer{WIH: wih, WHH: mat.NewDense(4, 1, whh[:]), B: make([]float64, 4)}
	n, err := NewRNN(5, []LSTMLayer{layer}, []float64{1.5}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Hidden())

	seqs := []string{"AAGA", "GGGGG", "AAAAAAA"}
	got, err := ScoreNetwork(n, seqs)
	require.NoError(t, err)
	for i, s := range seqs {
		assert.InDelta(t, scalarLSTM(s, 5, win, whh, 1.5), got[i], 1e-12, s)
	}
	assert.NotEqual(t, got[0], got[1])
}

func TestRNNRejectsInconsistentLayers(t *testing.T) {
	l0 := LSTMLayer{WIH: mat.NewDense(8, residue.Size, nil), WHH: mat.NewDense(8, 2, nil), B: make([]float64, 8)}
	bad := LSTMLayer{WIH: mat.NewDense(8, residue.Size, nil), WHH: mat.NewDense(8, 2, nil), B: make([]float64, 8)}
	_, err := NewRNN(4, []LSTMLayer{l0, bad}, []float64{1, 1}, 0)
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)

	_, err = NewRNN(4, []LSTMLayer{l0}, []float64{1}, 0)
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)

	_, err = NewRNN(4, nil, nil, 0)
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)
}

const cnnCheckpoint = `{
  "arch": "cnn",
  "max_len": 3,
  "state_dict": {
    "conv.weight": {"shape": [1, 20, 1], "data": [1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0]},
    "conv.bias": {"shape": [1], "data": [0]},
    "fc.weight": {"shape": [1, 1], "data": [2]},
    "fc.bias": {"shape": [1], "data": [0.5]}
  }
}`

func TestCheckpointCNN(t *testing.T) {
	ck, err := DecodeCheckpoint(strings.NewReader(cnnCheckpoint))
	require.NoError(t, err)
	net, err := ck.Network(0)
	require.NoError(t, err)
	assert.Equal(t, 3, net.MaxLen())
	got, err := ScoreNetwork(net, []string{"CAC"})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got[0], 1e-12)

	net, err = ck.Network(40)
	require.NoError(t, err)
	assert.Equal(t, 40, net.MaxLen())
}

func TestCheckpointRNN(t *testing.T) {
	ck := &Checkpoint{Arch: ArchRNN, MaxLen: 4, StateDict: map[string]Tensor{
		"lstm.weight_ih_l0": {Shape: []int{8, 20}, Data: make([]float64, 160)},
		"lstm.weight_hh_l0": {Shape: []int{8, 2}, Data: make([]float64, 16)},
		"lstm.bias_ih_l0":   {Shape: []int{8}, Data: make([]float64, 8)},
		"lstm.bias_hh_l0":   {Shape: []int{8}, Data: make([]float64, 8)},
		"lstm.weight_ih_l1": {Shape: []int{8, 2}, Data: make([]float64, 16)},
		"lstm.weight_hh_l1": {Shape: []int{8, 2}, Data: make([]float64, 16)},
		"lstm.bias_ih_l1":   {Shape: []int{8}, Data: make([]float64, 8)},
		"lstm.bias_hh_l1":   {Shape: []int{8}, Data: make([]float64, 8)},
		"fc.weight":         {Shape: []int{1, 2}, Data: []float64{1, 1}},
		"fc.bias":           {Shape: []int{1}, Data: []float64{0.25}},
	}}
	net, err := ck.Network(0)
	require.NoError(t, err)
	rnn := net.(*RNN)
	assert.Equal(t, 2, rnn.Layers())
	assert.Equal(t, 2, rnn.Hidden())
	// all-zero weights: c stays 0, h stays 0
	got, err := ScoreNetwork(net, []string{"ACDE"})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got[0], 1e-12)

	ck.StateDict["fc.weight"] = Tensor{Shape: []int{2, 2}, Data: []float64{1, 1, 1, 1}}
	_, err = ck.Network(0)
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestDecodeCheckpointErrors(t *testing.T) {
	_, err := DecodeCheckpoint(strings.NewReader(`{"arch":"cnn","state_dict":{"fc.bias":{"shape":[2],"data":[1]}}}`))
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)

	_, err = DecodeCheckpoint(strings.NewReader(`not json`))
	assert.ErrorIs(t, err, errs.ErrMalformedInput)

	ck, err := DecodeCheckpoint(strings.NewReader(`{"arch":"transformer","state_dict":{}}`))
	require.NoError(t, err)
	_, err = ck.Network(10)
	assert.ErrorIs(t, err, errs.ErrMalformedInput)

	ck, err = DecodeCheckpoint(strings.NewReader(`{"arch":"cnn","state_dict":{}}`))
	require.NoError(t, err)
	_, err = ck.Network(10)
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestLinearFileRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeLinear(&buf, &Linear{Coef: []float64{1, 2}, Intercept: -3}))
	m, err := DecodeLinear(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, m.Coef)
	assert.Equal(t, -3.0, m.Intercept)

	_, err = DecodeLinear(strings.NewReader(`{"coef":[[1],[2]],"intercept":[0,0]}`))
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestScorersStopOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lin := LinearScorer{Model: &Linear{Coef: make([]float64, 20)}, Encode: func(s []string) (*mat.Dense, error) {
		return encode.OneHotWidth(s, 1), nil
	}, Batch: 1}
	_, err := lin.Score(ctx, []string{"A", "C"})
	assert.ErrorIs(t, err, context.Canceled)

	n := oneFilterCNN(t, 3, 1, nil, 1, 0)
	_, err = NetworkScorer{Net: n}.Score(ctx, []string{"AAA"})
	assert.ErrorIs(t, err, context.Canceled)

	got, err := NetworkScorer{Net: n, Batch: 1}.Score(context.Background(), []string{"AAA", "CCC"})
	require.NoError(t, err)
	require.NoError(t, CheckLength(got, 2))
	assert.ErrorIs(t, CheckLength(got, 3), errs.ErrShapeMismatch)
}
