package model

import (
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"polyreact/core/errs"
)

// Architectures understood by Checkpoint.Network.
const (
	ArchCNN = "cnn"
	ArchRNN = "rnn"
)

// Tensor is one named parameter from an exported state dict.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

func (t Tensor) size() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Checkpoint is a network exported as JSON: the architecture name, an
// optional input length and the parameter tensors keyed by their
// state-dict names (conv.weight, lstm.weight_ih_l0, fc.bias, ...).
type Checkpoint struct {
	Arch      string            `json:"arch"`
	MaxLen    int               `json:"max_len,omitempty"`
	StateDict map[string]Tensor `json:"state_dict"`
}

// LinearFile is a logistic-regression export: coef has shape [1, n] and
// intercept [1].
type LinearFile struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// DecodeLinear reads a LinearFile and returns the binary model.
func DecodeLinear(r io.Reader) (*Linear, error) {
	var f LinearFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: linear model: %v", errs.ErrMalformedInput, err)
	}
	if len(f.Coef) != 1 || len(f.Intercept) != 1 {
		return nil, fmt.Errorf("%w: linear model must be binary (coef rows %d, intercepts %d)",
			errs.ErrShapeMismatch, len(f.Coef), len(f.Intercept))
	}
	if len(f.Coef[0]) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", errs.ErrShapeMismatch)
	}
	return &Linear{Coef: f.Coef[0], Intercept: f.Intercept[0]}, nil
}

// EncodeLinear writes m in the DecodeLinear format.
func EncodeLinear(w io.Writer, m *Linear) error {
	return json.NewEncoder(w).Encode(LinearFile{Coef: [][]float64{m.Coef}, Intercept: []float64{m.Intercept}})
}

// DecodeCheckpoint reads a JSON checkpoint and checks every tensor's data
// length against its shape.
func DecodeCheckpoint(r io.Reader) (*Checkpoint, error) {
	var ck Checkpoint
	if err := json.NewDecoder(r).Decode(&ck); err != nil {
		return nil, fmt.Errorf("%w: checkpoint: %v", errs.ErrMalformedInput, err)
	}
	for name, t := range ck.StateDict {
		if len(t.Data) != t.size() {
			return nil, fmt.Errorf("%w: tensor %s has %d values for shape %v",
				errs.ErrShapeMismatch, name, len(t.Data), t.Shape)
		}
	}
	return &ck, nil
}

// Network builds the forward pass. maxLen overrides the checkpoint's own
// input length when positive.
func (ck *Checkpoint) Network(maxLen int) (Network, error) {
	if maxLen <= 0 {
		maxLen = ck.MaxLen
	}
	switch ck.Arch {
	case ArchCNN:
		return ck.cnn(maxLen)
	case ArchRNN:
		return ck.rnn(maxLen)
	default:
		return nil, fmt.Errorf("%w: unknown architecture %q", errs.ErrMalformedInput, ck.Arch)
	}
}

func (ck *Checkpoint) tensor(name string, rank int) (Tensor, error) {
	t, ok := ck.StateDict[name]
	if !ok {
		return Tensor{}, fmt.Errorf("%w: checkpoint missing %s", errs.ErrShapeMismatch, name)
	}
	if len(t.Shape) != rank {
		return Tensor{}, fmt.Errorf("%w: %s has rank %d, want %d", errs.ErrShapeMismatch, name, len(t.Shape), rank)
	}
	for _, d := range t.Shape {
		if d <= 0 {
			return Tensor{}, fmt.Errorf("%w: %s has empty dimension in shape %v", errs.ErrShapeMismatch, name, t.Shape)
		}
	}
	return t, nil
}

func (ck *Checkpoint) head() (w []float64, b float64, err error) {
	fw, err := ck.tensor("fc.weight", 2)
	if err != nil {
		return nil, 0, err
	}
	if fw.Shape[0] != 1 {
		return nil, 0, fmt.Errorf("%w: output layer has %d classes, want 1", errs.ErrShapeMismatch, fw.Shape[0])
	}
	fb, err := ck.tensor("fc.bias", 1)
	if err != nil {
		return nil, 0, err
	}
	if fb.Shape[0] != 1 {
		return nil, 0, fmt.Errorf("%w: output bias has %d values, want 1", errs.ErrShapeMismatch, fb.Shape[0])
	}
	return fw.Data, fb.Data[0], nil
}

func (ck *Checkpoint) cnn(maxLen int) (*CNN, error) {
	cw, err := ck.tensor("conv.weight", 3)
	if err != nil {
		return nil, err
	}
	cb, err := ck.tensor("conv.bias", 1)
	if err != nil {
		return nil, err
	}
	fw, fb, err := ck.head()
	if err != nil {
		return nil, err
	}
	return NewCNN(maxLen, cw.Shape[0], cw.Shape[2], cw.Data, cb.Data, fw, fb)
}

func (ck *Checkpoint) rnn(maxLen int) (*RNN, error) {
	var layers []LSTMLayer
	for n := 0; ; n++ {
		if _, ok := ck.StateDict[fmt.Sprintf("lstm.weight_ih_l%d", n)]; !ok {
			break
		}
		wih, err := ck.tensor(fmt.Sprintf("lstm.weight_ih_l%d", n), 2)
		if err != nil {
			return nil, err
		}
		whh, err := ck.tensor(fmt.Sprintf("lstm.weight_hh_l%d", n), 2)
		if err != nil {
			return nil, err
		}
		bih, err := ck.tensor(fmt.Sprintf("lstm.bias_ih_l%d", n), 1)
		if err != nil {
			return nil, err
		}
		bhh, err := ck.tensor(fmt.Sprintf("lstm.bias_hh_l%d", n), 1)
		if err != nil {
			return nil, err
		}
		if len(bih.Data) != len(bhh.Data) {
			return nil, fmt.Errorf("%w: layer %d bias lengths differ", errs.ErrShapeMismatch, n)
		}
		b := make([]float64, len(bih.Data))
		for i := range b {
			b[i] = bih.Data[i] + bhh.Data[i]
		}
		layers = append(layers, LSTMLayer{
			WIH: mat.NewDense(wih.Shape[0], wih.Shape[1], wih.Data),
			WHH: mat.NewDense(whh.Shape[0], whh.Shape[1], whh.Data),
			B:   b,
		})
	}
	fw, fb, err := ck.head()
	if err != nil {
		return nil, err
	}
	return NewRNN(maxLen, layers, fw, fb)
}
