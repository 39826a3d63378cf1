// Package manifest describes the scoring models of a run: which asset to
// load, how to encode its input region and which result column it fills.
package manifest

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"polyreact/core/cdr"
	"polyreact/core/encode"
)

// Model kinds.
const (
	KindLinear = "linear"
	KindCNN    = "cnn"
	KindRNN    = "rnn"
)

// Linear encodings.
const (
	EncodingOneHot = "onehot"
	EncodingKmer   = "kmer"
)

// Asset formats.
const (
	FormatJSON = "json"
	FormatONNX = "onnx"
)

//go:embed default.yaml
var defaultYAML []byte

// Model is one scoring configuration.
type Model struct {
	Column    string `yaml:"column"`
	Asset     string `yaml:"asset"`
	Kind      string `yaml:"kind"`
	Format    string `yaml:"format,omitempty"`
	Region    string `yaml:"region"`
	Encoding  string `yaml:"encoding,omitempty"`
	K         int    `yaml:"k,omitempty"`
	Framework string `yaml:"framework,omitempty"`
	MaxLen    int    `yaml:"max_len,omitempty"`
	Kernel    int    `yaml:"kernel,omitempty"`
	Hidden    int    `yaml:"hidden,omitempty"`
	Layers    int    `yaml:"layers,omitempty"`
	Classes   int    `yaml:"classes,omitempty"`
}

// Neural reports whether the model runs over padded one-hot matrices.
func (m Model) Neural() bool { return m.Kind == KindCNN || m.Kind == KindRNN }

// FrameworkFlag is the parsed Framework string.
func (m Model) FrameworkFlag() encode.Framework { return encode.ParseFramework(m.Framework) }

// Manifest is the ordered model list.
type Manifest struct {
	Models []Model `yaml:"models"`
}

// Default returns the eight built-in configurations.
func Default() *Manifest {
	m, err := Decode(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded manifest: %v", err))
	}
	return m
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	m, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode parses, defaults and validates a manifest.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i := range m.Models {
		if m.Models[i].Format == "" {
			m.Models[i].Format = FormatJSON
		}
		if m.Models[i].Kind == KindLinear && m.Models[i].Encoding == EncodingKmer && m.Models[i].K == 0 {
			m.Models[i].K = 3
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Columns lists the score columns in order.
func (m *Manifest) Columns() []string {
	out := make([]string, len(m.Models))
	for i, md := range m.Models {
		out[i] = md.Column
	}
	return out
}

// Validate checks every entry and rejects duplicate columns.
func (m *Manifest) Validate() error {
	if len(m.Models) == 0 {
		return fmt.Errorf("manifest lists no models")
	}
	seen := make(map[string]bool)
	for i, md := range m.Models {
		if md.Column == "" {
			return fmt.Errorf("model %d: column is required", i)
		}
		if seen[md.Column] {
			return fmt.Errorf("model %d: duplicate column %q", i, md.Column)
		}
		seen[md.Column] = true
		if err := md.validate(); err != nil {
			return fmt.Errorf("model %q: %w", md.Column, err)
		}
	}
	return nil
}

func (m Model) validate() error {
	if m.Asset == "" {
		return fmt.Errorf("asset is required")
	}
	if !cdr.IsColumn(m.Region) {
		return fmt.Errorf("unknown region %q", m.Region)
	}
	if m.Format != FormatJSON && m.Format != FormatONNX {
		return fmt.Errorf("unknown format %q", m.Format)
	}
	switch m.Kind {
	case KindLinear:
		if m.Format == FormatONNX {
			return fmt.Errorf("linear models are json only")
		}
		switch m.Encoding {
		case EncodingOneHot:
		case EncodingKmer:
			if m.K < 1 {
				return fmt.Errorf("k must be >= 1")
			}
		default:
			return fmt.Errorf("unknown encoding %q", m.Encoding)
		}
	case KindCNN, KindRNN:
		if m.MaxLen <= 0 {
			return fmt.Errorf("max_len must be > 0")
		}
		if m.Kind == KindRNN && m.Classes > 1 {
			return fmt.Errorf("rnn must have a single output class, got %d", m.Classes)
		}
		if m.Kind == KindCNN && m.Kernel > m.MaxLen {
			return fmt.Errorf("kernel %d longer than max_len %d", m.Kernel, m.MaxLen)
		}
	default:
		return fmt.Errorf("unknown kind %q", m.Kind)
	}
	return nil
}
