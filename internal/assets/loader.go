package assets

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"polyreact/core/encode"
	"polyreact/core/errs"
	"polyreact/core/model"
	"polyreact/core/residue"
	"polyreact/internal/logging"
	"polyreact/internal/manifest"
	"polyreact/internal/ortmodel"
)

// Loader decodes stored assets into scorers.
type Loader struct {
	Store     Store
	Runtime   *ortmodel.Runtime // required only for onnx assets
	BatchSize int
	Log       *logging.Logger

	mu       sync.Mutex
	sessions []*ortmodel.Session
}

// Load fetches m.Asset and builds the scorer it describes.
func (l *Loader) Load(ctx context.Context, m manifest.Model) (model.Scorer, error) {
	start := time.Now()
	data, err := l.Store.Get(ctx, m.Asset)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", m.Column, err)
	}
	s, err := l.decode(m, data)
	if err != nil {
		return nil, fmt.Errorf("model %q (%s): %w", m.Column, m.Asset, err)
	}
	if l.Log != nil {
		l.Log.Debug("model loaded",
			logging.String("column", m.Column),
			logging.String("asset", m.Asset),
			logging.Int("bytes", len(data)),
			logging.Duration("took", time.Since(start)))
	}
	return s, nil
}

func (l *Loader) batch() int {
	if l.BatchSize > 0 {
		return l.BatchSize
	}
	return model.DefaultBatchSize
}

func (l *Loader) decode(m manifest.Model, data []byte) (model.Scorer, error) {
	switch m.Kind {
	case manifest.KindLinear:
		lin, err := model.DecodeLinear(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		enc, check, err := linearEncoder(m, lin.Width())
		if err != nil {
			return nil, err
		}
		return model.LinearScorer{Model: lin, Encode: enc, Check: check, Batch: l.batch()}, nil

	case manifest.KindCNN, manifest.KindRNN:
		if m.Format == manifest.FormatONNX {
			if l.Runtime == nil {
				return nil, ortmodel.ErrNoLibrary
			}
			s, err := l.Runtime.NewSession(data, m.MaxLen, l.batch())
			if err != nil {
				return nil, err
			}
			l.mu.Lock()
			l.sessions = append(l.sessions, s)
			l.mu.Unlock()
			return s, nil
		}
		ck, err := model.DecodeCheckpoint(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if ck.Arch != m.Kind {
			return nil, fmt.Errorf("%w: checkpoint is %q, manifest says %q", errs.ErrShapeMismatch, ck.Arch, m.Kind)
		}
		net, err := ck.Network(m.MaxLen)
		if err != nil {
			return nil, err
		}
		if err := checkArch(m, net); err != nil {
			return nil, err
		}
		return model.NetworkScorer{Net: net, Batch: l.batch()}, nil
	}
	return nil, fmt.Errorf("unknown model kind %q", m.Kind)
}

// linearEncoder picks the feature encoder and checks it against the
// model's coefficient width. For one-hot models the returned check compares
// the first region of a batch with that width; chunks are then padded to it.
func linearEncoder(m manifest.Model, width int) (model.Encoder, func([]string) error, error) {
	switch m.Encoding {
	case manifest.EncodingKmer:
		v, err := encode.NewKmerVocabulary(m.K)
		if err != nil {
			return nil, nil, err
		}
		if v.Size() != width {
			return nil, nil, fmt.Errorf("%w: %d-mer features are %d wide, model has %d coefficients",
				errs.ErrShapeMismatch, m.K, v.Size(), width)
		}
		fw := m.FrameworkFlag()
		return func(seqs []string) (*mat.Dense, error) { return v.Encode(seqs, fw) }, nil, nil
	case manifest.EncodingOneHot:
		if width%residue.Size != 0 {
			return nil, nil, fmt.Errorf("%w: %d coefficients is not a whole number of one-hot positions",
				errs.ErrShapeMismatch, width)
		}
		length := width / residue.Size
		check := func(seqs []string) error {
			if got := len(seqs[0]) * residue.Size; got != width {
				return fmt.Errorf("%w: %s regions encode to %d one-hot features, model %q has %d coefficients",
					errs.ErrShapeMismatch, m.Region, got, m.Column, width)
			}
			return nil
		}
		return func(seqs []string) (*mat.Dense, error) { return encode.OneHotWidth(seqs, length), nil }, check, nil
	}
	return nil, nil, fmt.Errorf("unknown encoding %q", m.Encoding)
}

func checkArch(m manifest.Model, net model.Network) error {
	switch n := net.(type) {
	case *model.CNN:
		if m.Kernel > 0 && n.Kernel() != m.Kernel {
			return fmt.Errorf("%w: cnn kernel %d, manifest says %d", errs.ErrShapeMismatch, n.Kernel(), m.Kernel)
		}
	case *model.RNN:
		if m.Hidden > 0 && n.Hidden() != m.Hidden {
			return fmt.Errorf("%w: rnn hidden size %d, manifest says %d", errs.ErrShapeMismatch, n.Hidden(), m.Hidden)
		}
		if m.Layers > 0 && n.Layers() != m.Layers {
			return fmt.Errorf("%w: rnn has %d layers, manifest says %d", errs.ErrShapeMismatch, n.Layers(), m.Layers)
		}
	}
	return nil
}

// Close releases any ONNX sessions created by Load.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for _, s := range l.sessions {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.sessions = nil
	return first
}
