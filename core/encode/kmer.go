// core/encode/kmer.go
package encode

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"polyreact/core/errs"
	"polyreact/core/residue"
)

// Framework selects the anchor residues added around a CDR string before
// k-mer windowing.
type Framework uint8

const (
	// FrameworkLeading prepends the conserved C preceding CDR1.
	FrameworkLeading Framework = 1 << iota
	// FrameworkTrailing appends the conserved W following CDR3.
	FrameworkTrailing
)

// Anchor residues.
const (
	LeadingAnchor  = 'C'
	TrailingAnchor = 'W'
)

// ParseFramework reads the "include framework" flag: any string containing
// "C" requests the leading anchor and any containing "W" the trailing one.
func ParseFramework(s string) Framework {
	var f Framework
	if strings.ContainsRune(s, LeadingAnchor) {
		f |= FrameworkLeading
	}
	if strings.ContainsRune(s, TrailingAnchor) {
		f |= FrameworkTrailing
	}
	return f
}

// String renders the flag back in ParseFramework form.
func (f Framework) String() string {
	s := ""
	if f&FrameworkLeading != 0 {
		s += string(LeadingAnchor)
	}
	if f&FrameworkTrailing != 0 {
		s += string(TrailingAnchor)
	}
	return s
}

// Apply adds the requested anchors to seq.
func (f Framework) Apply(seq string) string {
	if f&FrameworkLeading != 0 {
		seq = string(LeadingAnchor) + seq
	}
	if f&FrameworkTrailing != 0 {
		seq += string(TrailingAnchor)
	}
	return seq
}

// KmerVocabulary indexes every string of length 1..K over residue.Alphabet.
// Unigrams come first, then bigrams, and so on; within a level the order is
// the Cartesian expansion of the previous level (first residue most
// significant). Only the level-K slots are ever populated by Kmer.
type KmerVocabulary struct {
	k       int
	offsets []int // offsets[l] is the first column of level l
	size    int
}

// NewKmerVocabulary builds the index space for order k.
func NewKmerVocabulary(k int) (*KmerVocabulary, error) {
	if k < 1 {
		return nil, fmt.Errorf("k-mer order must be >= 1, got %d", k)
	}
	v := &KmerVocabulary{k: k, offsets: make([]int, k+2)}
	level := 1
	for l := 1; l <= k; l++ {
		level *= residue.Size
		v.offsets[l+1] = v.offsets[l] + level
	}
	v.size = v.offsets[k+1]
	return v, nil
}

// K returns the order.
func (v *KmerVocabulary) K() int { return v.k }

// Size is the feature width: 20 + 20^2 + ... + 20^K.
func (v *KmerVocabulary) Size() int { return v.size }

// Index returns the column of word (length 1..K).
func (v *KmerVocabulary) Index(word string) (int, bool) {
	if len(word) < 1 || len(word) > v.k {
		return 0, false
	}
	h := 0
	for i := 0; i < len(word); i++ {
		ix := residue.Index(word[i])
		if ix < 0 {
			return 0, false
		}
		h = h*residue.Size + ix
	}
	return v.offsets[len(word)] + h, true
}

// Word is the inverse of Index.
func (v *KmerVocabulary) Word(idx int) string {
	if idx < 0 || idx >= v.size {
		return ""
	}
	l := 1
	for idx >= v.offsets[l+1] {
		l++
	}
	h := idx - v.offsets[l]
	b := make([]byte, l)
	for i := l - 1; i >= 0; i-- {
		b[i] = residue.Alphabet[h%residue.Size]
		h /= residue.Size
	}
	return string(b)
}

// Kmer encodes seqs as L1-normalised counts of their length-k windows.
// Sequences shorter than k (after anchoring) give an all-zero row. Values
// are rounded through float32, the precision of the training features.
func Kmer(seqs []string, fw Framework, k int) (*mat.Dense, error) {
	v, err := NewKmerVocabulary(k)
	if err != nil {
		return nil, err
	}
	return v.Encode(seqs, fw)
}

// Encode is Kmer with a prebuilt vocabulary.
func (v *KmerVocabulary) Encode(seqs []string, fw Framework) (*mat.Dense, error) {
	if len(seqs) == 0 {
		return &mat.Dense{}, nil
	}
	out := mat.NewDense(len(seqs), v.size, nil)
	counts := make(map[int]int)
	for i, raw := range seqs {
		s := fw.Apply(raw)
		windows := len(s) - v.k + 1
		if windows <= 0 {
			continue
		}
		clear(counts)
		for j := 0; j < windows; j++ {
			idx, ok := v.Index(s[j : j+v.k])
			if !ok {
				return nil, fmt.Errorf("%w: k-mer %q of sequence %d outside the amino-acid alphabet",
					errs.ErrMalformedInput, s[j:j+v.k], i)
			}
			counts[idx]++
		}
		total := float64(windows)
		for idx, c := range counts {
			out.Set(i, idx, float64(float32(float64(c)/total)))
		}
	}
	return out, nil
}
