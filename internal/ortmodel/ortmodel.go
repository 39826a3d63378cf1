// Package ortmodel runs exported sequence networks through ONNX Runtime.
// A network takes a float32 [batch, max_len, 20] one-hot tensor and
// returns [batch, 1] scores.
package ortmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"polyreact/core/encode"
	"polyreact/core/errs"
	"polyreact/core/model"
	"polyreact/core/residue"
)

// ErrNoLibrary is returned when no shared library path was configured.
var ErrNoLibrary = errors.New("onnx runtime library path not configured")

// Runtime owns the process-wide ONNX Runtime environment.
type Runtime struct {
	lib  string
	once sync.Once
	err  error
}

// NewRuntime records the shared library location; nothing is loaded until
// the first session is created.
func NewRuntime(lib string) *Runtime { return &Runtime{lib: lib} }

func (r *Runtime) init() error {
	r.once.Do(func() {
		if r.lib == "" {
			r.err = ErrNoLibrary
			return
		}
		if ort.IsInitialized() {
			return
		}
		ort.SetSharedLibraryPath(r.lib)
		if err := ort.InitializeEnvironment(); err != nil {
			r.err = fmt.Errorf("initialize onnx runtime: %w", err)
		}
	})
	return r.err
}

// Close tears the environment down if this Runtime brought it up.
func (r *Runtime) Close() error {
	if r.lib == "" || !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Session is one loaded network.
type Session struct {
	sess   *ort.DynamicAdvancedSession
	maxLen int
	batch  int
	mu     sync.Mutex
}

var _ model.Scorer = (*Session)(nil)

// NewSession loads an ONNX graph with exactly one input and one output.
func (r *Runtime) NewSession(data []byte, maxLen, batch int) (*Session, error) {
	if err := r.init(); err != nil {
		return nil, err
	}
	if maxLen <= 0 {
		return nil, fmt.Errorf("%w: onnx network needs max_len", errs.ErrShapeMismatch)
	}
	ins, outs, err := ort.GetInputOutputInfoWithONNXData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: inspect onnx graph: %v", errs.ErrMalformedInput, err)
	}
	if len(ins) != 1 || len(outs) != 1 {
		return nil, fmt.Errorf("%w: onnx graph has %d inputs and %d outputs, want 1 and 1",
			errs.ErrShapeMismatch, len(ins), len(outs))
	}
	s, err := ort.NewDynamicAdvancedSessionWithONNXData(data,
		[]string{ins[0].Name}, []string{outs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	if batch <= 0 {
		batch = model.DefaultBatchSize
	}
	return &Session{sess: s, maxLen: maxLen, batch: batch}, nil
}

// Score runs seqs through the network in chunks.
func (s *Session) Score(ctx context.Context, seqs []string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, 0, len(seqs))
	for _, c := range model.Chunks(len(seqs), s.batch) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.run(seqs[c.Lo:c.Hi])
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return out, nil
}

func (s *Session) run(seqs []string) ([]float64, error) {
	n := int64(len(seqs))
	in, err := ort.NewTensor(ort.NewShape(n, int64(s.maxLen), int64(residue.Size)), encode.OneHotTensor(seqs, s.maxLen))
	if err != nil {
		return nil, err
	}
	defer in.Destroy()
	res, err := ort.NewEmptyTensor[float32](ort.NewShape(n, 1))
	if err != nil {
		return nil, err
	}
	defer res.Destroy()
	if err := s.sess.Run([]ort.Value{in}, []ort.Value{res}); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	data := res.GetData()
	out := make([]float64, len(seqs))
	for i := range out {
		out[i] = float64(data[i])
	}
	return out, nil
}

// Close releases the session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil
	}
	err := s.sess.Destroy()
	s.sess = nil
	return err
}
