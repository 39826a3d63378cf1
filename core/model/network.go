package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"polyreact/core/encode"
	"polyreact/core/errs"
	"polyreact/core/residue"
)

// Network scores one maxLen x 20 one-hot matrix.
type Network interface {
	MaxLen() int
	Forward(x *mat.Dense) (float64, error)
}

// ScoreNetwork pads or truncates each sequence to net.MaxLen and runs the
// forward pass. The output is the raw final-layer value.
func ScoreNetwork(net Network, seqs []string) ([]float64, error) {
	out := make([]float64, len(seqs))
	for i, s := range seqs {
		v, err := net.Forward(encode.OneHotMatrix(s, net.MaxLen()))
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// CNN is Conv1d(20 -> F, kernel K) -> ReLU -> global max pool -> Linear(F -> 1).
type CNN struct {
	maxLen int
	kernel int
	convW  *mat.Dense // F x (20*K), column c*K+j
	convB  []float64
	fcW    []float64
	fcB    float64
}

// NewCNN wires the layer weights. convW is laid out [F][20][K].
func NewCNN(maxLen, filters, kernel int, convW, convB, fcW []float64, fcB float64) (*CNN, error) {
	switch {
	case filters <= 0 || kernel <= 0:
		return nil, fmt.Errorf("%w: cnn needs positive filters and kernel", errs.ErrShapeMismatch)
	case len(convW) != filters*residue.Size*kernel:
		return nil, fmt.Errorf("%w: conv weight has %d values, want %d", errs.ErrShapeMismatch, len(convW), filters*residue.Size*kernel)
	case len(convB) != filters:
		return nil, fmt.Errorf("%w: conv bias has %d values, want %d", errs.ErrShapeMismatch, len(convB), filters)
	case len(fcW) != filters:
		return nil, fmt.Errorf("%w: fc weight has %d values, want %d", errs.ErrShapeMismatch, len(fcW), filters)
	case maxLen < kernel:
		return nil, fmt.Errorf("%w: input length %d shorter than kernel %d", errs.ErrShapeMismatch, maxLen, kernel)
	}
	return &CNN{
		maxLen: maxLen,
		kernel: kernel,
		convW:  mat.NewDense(filters, residue.Size*kernel, append([]float64(nil), convW...)),
		convB:  append([]float64(nil), convB...),
		fcW:    append([]float64(nil), fcW...),
		fcB:    fcB,
	}, nil
}

func (n *CNN) MaxLen() int { return n.maxLen }

// Kernel is the convolution width.
func (n *CNN) Kernel() int { return n.kernel }

func (n *CNN) Forward(x *mat.Dense) (float64, error) {
	rows, cols := x.Dims()
	if rows != n.maxLen || cols != residue.Size {
		return 0, fmt.Errorf("%w: cnn input %dx%d, want %dx%d", errs.ErrShapeMismatch, rows, cols, n.maxLen, residue.Size)
	}
	k := n.kernel
	steps := rows - k + 1
	// im2col: one row per output position
	col := mat.NewDense(steps, residue.Size*k, nil)
	for t := 0; t < steps; t++ {
		for j := 0; j < k; j++ {
			for c := 0; c < residue.Size; c++ {
				if v := x.At(t+j, c); v != 0 {
					col.Set(t, c*k+j, v)
				}
			}
		}
	}
	var conv mat.Dense
	conv.Mul(col, n.convW.T())
	out := n.fcB
	for f, b := range n.convB {
		best := 0.0 // ReLU floor
		for t := 0; t < steps; t++ {
			if v := conv.At(t, f) + b; v > best {
				best = v
			}
		}
		out += best * n.fcW[f]
	}
	return out, nil
}

// LSTMLayer holds one layer's weights in i, f, g, o gate order.
type LSTMLayer struct {
	WIH *mat.Dense // 4H x in
	WHH *mat.Dense // 4H x H
	B   []float64  // b_ih + b_hh
}

// RNN is a stacked LSTM followed by Linear(H -> 1) on the final hidden
// state of the top layer.
type RNN struct {
	maxLen int
	hidden int
	layers []LSTMLayer
	fcW    []float64
	fcB    float64
}

// NewRNN checks that the layer stack is consistent: the first layer reads
// 20 inputs and every later layer reads the hidden size.
func NewRNN(maxLen int, layers []LSTMLayer, fcW []float64, fcB float64) (*RNN, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: rnn has no layers", errs.ErrShapeMismatch)
	}
	_, hidden := layers[0].WHH.Dims()
	for i, l := range layers {
		in := hidden
		if i == 0 {
			in = residue.Size
		}
		r, c := l.WIH.Dims()
		if r != 4*hidden || c != in {
			return nil, fmt.Errorf("%w: layer %d input weight %dx%d, want %dx%d", errs.ErrShapeMismatch, i, r, c, 4*hidden, in)
		}
		r, c = l.WHH.Dims()
		if r != 4*hidden || c != hidden {
			return nil, fmt.Errorf("%w: layer %d hidden weight %dx%d, want %dx%d", errs.ErrShapeMismatch, i, r, c, 4*hidden, hidden)
		}
		if len(l.B) != 4*hidden {
			return nil, fmt.Errorf("%w: layer %d bias has %d values, want %d", errs.ErrShapeMismatch, i, len(l.B), 4*hidden)
		}
	}
	if len(fcW) != hidden {
		return nil, fmt.Errorf("%w: fc weight has %d values, want %d", errs.ErrShapeMismatch, len(fcW), hidden)
	}
	if maxLen <= 0 {
		return nil, fmt.Errorf("%w: rnn input length must be positive", errs.ErrShapeMismatch)
	}
	return &RNN{maxLen: maxLen, hidden: hidden, layers: layers, fcW: fcW, fcB: fcB}, nil
}

func (n *RNN) MaxLen() int { return n.maxLen }

// Hidden is the LSTM state width.
func (n *RNN) Hidden() int { return n.hidden }

// Layers is the depth of the stack.
func (n *RNN) Layers() int { return len(n.layers) }

func (n *RNN) Forward(x *mat.Dense) (float64, error) {
	rows, cols := x.Dims()
	if rows != n.maxLen || cols != residue.Size {
		return 0, fmt.Errorf("%w: rnn input %dx%d, want %dx%d", errs.ErrShapeMismatch, rows, cols, n.maxLen, residue.Size)
	}
	H := n.hidden
	seq := x
	h := mat.NewVecDense(H, nil)
	for _, l := range n.layers {
		// input projections for every step at once: T x 4H
		var proj mat.Dense
		proj.Mul(seq, l.WIH.T())
		next := mat.NewDense(rows, H, nil)
		h = mat.NewVecDense(H, nil)
		c := make([]float64, H)
		var rec mat.VecDense
		for t := 0; t < rows; t++ {
			rec.MulVec(l.WHH, h)
			g := proj.RawRowView(t)
			hv := make([]float64, H)
			for u := 0; u < H; u++ {
				ig := sigmoid(g[u] + rec.AtVec(u) + l.B[u])
				fg := sigmoid(g[H+u] + rec.AtVec(H+u) + l.B[H+u])
				gg := math.Tanh(g[2*H+u] + rec.AtVec(2*H+u) + l.B[2*H+u])
				og := sigmoid(g[3*H+u] + rec.AtVec(3*H+u) + l.B[3*H+u])
				c[u] = fg*c[u] + ig*gg
				hv[u] = og * math.Tanh(c[u])
			}
			h = mat.NewVecDense(H, hv)
			next.SetRow(t, hv)
		}
		seq = next
	}
	return mat.Dot(h, mat.NewVecDense(H, n.fcW)) + n.fcB, nil
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
