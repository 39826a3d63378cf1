// Package assettest writes small synthetic model assets matching a
// manifest, for tests that need the full scoring path without the real
// trained weights.
package assettest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"polyreact/core/cdr"
	"polyreact/core/encode"
	"polyreact/core/model"
	"polyreact/core/residue"
	"polyreact/internal/manifest"
)

// Manifest returns the built-in manifest with the recurrent models shrunk
// to the given hidden size and a single layer, so tests stay fast.
func Manifest(hidden int) *manifest.Manifest {
	m := manifest.Default()
	for i := range m.Models {
		if m.Models[i].Kind == manifest.KindRNN {
			m.Models[i].Hidden = hidden
			m.Models[i].Layers = 1
		}
	}
	return m
}

// WriteDir writes one asset per model of m into dir.
func WriteDir(dir string, m *manifest.Manifest) error {
	for i, md := range m.Models {
		b, err := Blob(md, float64(i+1))
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, md.Asset), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Blob encodes a deterministic model for md; seed varies the weights.
func Blob(md manifest.Model, seed float64) ([]byte, error) {
	var buf bytes.Buffer
	switch md.Kind {
	case manifest.KindLinear:
		width := regionWidth(md.Region) * residue.Size
		if md.Encoding == manifest.EncodingKmer {
			v, err := encode.NewKmerVocabulary(md.K)
			if err != nil {
				return nil, err
			}
			width = v.Size()
		}
		err := model.EncodeLinear(&buf, &model.Linear{Coef: weights(width, seed), Intercept: 0.1 * seed})
		return buf.Bytes(), err
	case manifest.KindCNN:
		k := md.Kernel
		if k == 0 {
			k = 3
		}
		const f = 3
		return checkpoint(model.ArchCNN, md.MaxLen, map[string]model.Tensor{
			"conv.weight": tensor(seed, f, residue.Size, k),
			"conv.bias":   tensor(seed+1, f),
			"fc.weight":   tensor(seed+2, 1, f),
			"fc.bias":     tensor(seed+3, 1),
		})
	case manifest.KindRNN:
		h, layers := md.Hidden, md.Layers
		if h == 0 {
			h = 4
		}
		if layers == 0 {
			layers = 1
		}
		sd := map[string]model.Tensor{
			"fc.weight": tensor(seed, 1, h),
			"fc.bias":   tensor(seed+1, 1),
		}
		for l := 0; l < layers; l++ {
			in := h
			if l == 0 {
				in = residue.Size
			}
			s := seed + float64(10*(l+1))
			sd[fmt.Sprintf("lstm.weight_ih_l%d", l)] = tensor(s, 4*h, in)
			sd[fmt.Sprintf("lstm.weight_hh_l%d", l)] = tensor(s+1, 4*h, h)
			sd[fmt.Sprintf("lstm.bias_ih_l%d", l)] = tensor(s+2, 4*h)
			sd[fmt.Sprintf("lstm.bias_hh_l%d", l)] = tensor(s+3, 4*h)
		}
		return checkpoint(model.ArchRNN, md.MaxLen, sd)
	}
	return nil, fmt.Errorf("assettest: unsupported kind %q", md.Kind)
}

func checkpoint(arch string, maxLen int, sd map[string]model.Tensor) ([]byte, error) {
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(model.Checkpoint{Arch: arch, MaxLen: maxLen, StateDict: sd})
	return buf.Bytes(), err
}

func regionWidth(region string) int {
	switch region {
	case cdr.ColCDRSWithGaps:
		return cdr.CDRSGappedWidth
	case cdr.ColCDRSWithGapsFull:
		return cdr.CDRSGappedWidth + 1
	case cdr.ColCDR1WithGaps:
		return cdr.CDR1GappedWidth
	case cdr.ColCDR2WithGaps:
		return cdr.CDR2GappedWidth
	case cdr.ColCDR2WithGapsFull:
		return cdr.CDR2FullGapWidth
	case cdr.ColCDR3WithGaps:
		return cdr.CDR3Width
	}
	return cdr.CDRSGappedWidth + 1
}

func tensor(seed float64, shape ...int) model.Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return model.Tensor{Shape: shape, Data: weights(n, seed)}
}

func weights(n int, seed float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.3 * math.Sin(0.37*float64(i)+seed)
	}
	return out
}

// WriteManifest saves m as YAML at path.
func WriteManifest(path string, m *manifest.Manifest) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
