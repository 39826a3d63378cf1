// core/encode/onehot.go
package encode

import (
	"gonum.org/v1/gonum/mat"

	"polyreact/core/residue"
)

// OneHot flattens each sequence into len*20 columns, one block of 20 per
// position. The width comes from the first sequence; any sequence of a
// different length yields an all-zero row. Characters outside the alphabet
// (gaps included) leave their block zero.
func OneHot(seqs []string) *mat.Dense {
	if len(seqs) == 0 {
		return &mat.Dense{}
	}
	return OneHotWidth(seqs, len(seqs[0]))
}

// OneHotWidth is OneHot with the sequence length fixed by the caller, so
// every chunk of a batch is encoded against the same width.
func OneHotWidth(seqs []string, length int) *mat.Dense {
	if len(seqs) == 0 || length <= 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(seqs), length*residue.Size, nil)
	for i, s := range seqs {
		if len(s) != length {
			continue
		}
		for p := 0; p < len(s); p++ {
			if ix := residue.Index(s[p]); ix >= 0 {
				out.Set(i, p*residue.Size+ix, 1)
			}
		}
	}
	return out
}

// OneHotMatrix encodes one sequence as a maxLen x 20 position matrix for the
// sequence networks. Shorter sequences are zero-padded at the end, longer
// ones truncated.
func OneHotMatrix(seq string, maxLen int) *mat.Dense {
	m := mat.NewDense(maxLen, residue.Size, nil)
	for p := 0; p < len(seq) && p < maxLen; p++ {
		if ix := residue.Index(seq[p]); ix >= 0 {
			m.Set(p, ix, 1)
		}
	}
	return m
}

// OneHotTensor packs seqs into a row-major [n, maxLen, 20] float32 buffer,
// padded and truncated like OneHotMatrix.
func OneHotTensor(seqs []string, maxLen int) []float32 {
	stride := maxLen * residue.Size
	buf := make([]float32, len(seqs)*stride)
	for i, s := range seqs {
		base := i * stride
		for p := 0; p < len(s) && p < maxLen; p++ {
			if ix := residue.Index(s[p]); ix >= 0 {
				buf[base+p*residue.Size+ix] = 1
			}
		}
	}
	return buf
}
