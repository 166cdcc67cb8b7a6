package kernel

import (
	"math"

	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/lane"
)

// coulombModel evaluates the electrostatics of a chunk. fscal is the
// scalar force divided by r; v is only valid when energy is set.
type coulombModel[W lane.Width] interface {
	enabled() bool
	eval(p *pairData[W], energy bool) (fscal, v lane.Real[W])
}

// coulNone skips electrostatics for i-clusters without charges.
type coulNone[W lane.Width] struct{}

func (coulNone[W]) enabled() bool { return false }

func (coulNone[W]) eval(*pairData[W], bool) (fscal, v lane.Real[W]) {
	return fscal, v
}

// coulRF is reaction-field electrostatics.
type coulRF[W lane.Width] struct {
	krf float64
	crf float64
}

func (coulRF[W]) enabled() bool { return true }

func (m coulRF[W]) eval(p *pairData[W], energy bool) (fscal, v lane.Real[W]) {
	rinvex := lane.Mul(p.interact, p.rinv)
	fscal = lane.Mul(p.qq, lane.Sub(lane.Mul(rinvex, p.rinvsq), lane.Set1[W](2*m.krf)))
	if energy {
		v = lane.FMA(lane.Set1[W](m.krf), p.rsq, rinvex)
		v = lane.Mul(p.qq, lane.Sub(v, lane.Set1[W](m.crf)))
	}
	return fscal, v
}

// coulTable interpolates the tabulated Ewald correction.
type coulTable[W lane.Width] struct {
	tab *interaction.Table
	sh  float64
}

func (coulTable[W]) enabled() bool { return true }

func (m coulTable[W]) eval(p *pairData[W], energy bool) (fscal, v lane.Real[W]) {
	rs := lane.Mul(lane.Mul(p.rsq, p.rinv), lane.Set1[W](m.tab.Scale))
	ri, frac := lane.Floor(rs)

	var fexcl, vexcl lane.Real[W]
	n := lane.Lanes[W]()
	for l := 0; l < n; l++ {
		fexcl[l], vexcl[l] = m.tab.Lookup(ri[l], frac[l])
	}

	fscal = lane.Sub(lane.Mul(p.interact, p.rinvsq), fexcl)
	fscal = lane.Mul(lane.Mul(p.qq, fscal), p.rinv)
	if energy {
		v = lane.Mul(p.interact, lane.Sub(p.rinv, lane.Set1[W](m.sh)))
		v = lane.Mul(p.qq, lane.Sub(v, vexcl))
	}
	return fscal, v
}

const twoOverSqrtPi = 2 / math.SqrtPi

// coulEwald evaluates the Ewald correction analytically. Lanes inside the
// series range of the screening function take the scalar path.
type coulEwald[W lane.Width] struct {
	beta float64
	sh   float64
}

func (coulEwald[W]) enabled() bool { return true }

func (m coulEwald[W]) eval(p *pairData[W], energy bool) (fscal, v lane.Real[W]) {
	r := lane.Mul(p.rsq, p.rinv)
	x := lane.Mul(r, lane.Set1[W](m.beta))
	y := lane.Mul(x, x)

	erf := lane.Erf(x)
	vlr := lane.Mul(erf, p.rinv)
	flr := lane.FNMA(lane.Set1[W](twoOverSqrtPi), lane.Mul(x, lane.Exp(lane.Neg(y))), erf)
	flr = lane.Mul(flr, lane.Mul(p.rinv, p.rinvsq))
	if short := lane.CmpLT(y, lane.Set1[W](interaction.EwaldSeriesLimit)); lane.Any(short) {
		n := lane.Lanes[W]()
		for l := 0; l < n; l++ {
			if short[l] {
				vlr[l], flr[l] = interaction.EwaldCorrection(m.beta, r[l])
			}
		}
	}

	fscal = lane.Sub(lane.Mul(lane.Mul(p.interact, p.rinv), p.rinvsq), flr)
	fscal = lane.Mul(p.qq, fscal)
	if energy {
		v = lane.Mul(p.interact, lane.Sub(p.rinv, lane.Set1[W](m.sh)))
		v = lane.Mul(p.qq, lane.Sub(v, vlr))
	}
	return fscal, v
}
