// core/physchem/pi.go
package physchem

import (
	"fmt"
	"math"

	"polyreact/core/errs"
)

// Bjellqvist pK values as used by the common peptide pI solvers. Slices
// keep the summation order fixed so results are bit-for-bit reproducible.
type pkGroup struct {
	residue byte // 0 for the terminus
	pK      float64
}

var (
	positivePK = []pkGroup{{0, 7.5}, {'K', 10.0}, {'R', 12.0}, {'H', 5.98}}
	negativePK = []pkGroup{{0, 3.55}, {'D', 4.05}, {'E', 4.45}, {'C', 9.0}, {'Y', 10.0}}
	// terminal residue corrections
	nTermPK = map[byte]float64{'A': 7.59, 'M': 7.0, 'S': 6.93, 'P': 8.36, 'T': 6.82, 'V': 7.44, 'E': 7.7}
	cTermPK = map[byte]float64{'D': 4.55, 'E': 4.75}
)

const (
	piStart     = 7.775
	piLow       = 4.05
	piHigh      = 12.0
	piTolerance = 1e-4
)

type chargeModel struct {
	pos, neg []pkGroup
	count    [256]float64
}

func newChargeModel(seq string) *chargeModel {
	m := &chargeModel{
		pos: append([]pkGroup(nil), positivePK...),
		neg: append([]pkGroup(nil), negativePK...),
	}
	if v, ok := nTermPK[seq[0]]; ok {
		m.pos[0].pK = v
	}
	if v, ok := cTermPK[seq[len(seq)-1]]; ok {
		m.neg[0].pK = v
	}
	m.count[0] = 1 // one N- and one C-terminus
	for i := 0; i < len(seq); i++ {
		switch c := seq[i]; c {
		case 'K', 'R', 'H', 'D', 'E', 'C', 'Y':
			m.count[c]++
		}
	}
	return m
}

func (m *chargeModel) chargeAt(pH float64) float64 {
	positive := 0.0
	for _, g := range m.pos {
		positive += m.count[g.residue] / (math.Pow(10, pH-g.pK) + 1)
	}
	negative := 0.0
	for _, g := range m.neg {
		negative += m.count[g.residue] / (math.Pow(10, g.pK-pH) + 1)
	}
	return positive - negative
}

// IsoelectricPoint returns the pH at which the peptide seq carries no net
// charge, found by bisection between pH 4.05 and 12.
func IsoelectricPoint(seq string) (float64, error) {
	if len(seq) == 0 {
		return 0, fmt.Errorf("%w: isoelectric point of empty sequence", errs.ErrDegenerateInput)
	}
	m := newChargeModel(seq)
	pH, lo, hi := piStart, piLow, piHigh
	for hi-lo > piTolerance {
		if m.chargeAt(pH) > 0 {
			lo = pH
		} else {
			hi = pH
		}
		pH = (lo + hi) / 2
	}
	return pH, nil
}

// ChargeAt returns the net charge of seq at pH.
func ChargeAt(seq string, pH float64) (float64, error) {
	if len(seq) == 0 {
		return 0, fmt.Errorf("%w: charge of empty sequence", errs.ErrDegenerateInput)
	}
	return newChargeModel(seq).chargeAt(pH), nil
}
