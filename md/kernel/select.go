package kernel

import (
	"github.com/cwbudde/algo-nbnxm/md/atomdata"
	"github.com/cwbudde/algo-nbnxm/md/interaction"
	"github.com/cwbudde/algo-nbnxm/md/lane"
)

// newRunner instantiates the pair loop for the lane width, the LJ model,
// the Coulomb model and the energy output mode.
func newRunner(p *interaction.Params, layout atomdata.Layout, lanes int, cfg Config) runner {
	st := newSetup(p, layout, lanes, cfg)
	switch lanes {
	case 1:
		return selectLJ[lane.W1](st, p, cfg)
	case 2:
		return selectLJ[lane.W2](st, p, cfg)
	case 4:
		return selectLJ[lane.W4](st, p, cfg)
	case 8:
		return selectLJ[lane.W8](st, p, cfg)
	}
	return nil
}

func selectLJ[W lane.Width](st *setup, p *interaction.Params, cfg Config) runner {
	switch p.VdW {
	case interaction.VdWPotSwitch:
		return selectCoulomb[W](st, p, cfg, ljPotSwitch[W]{rsw: p.RVdWSwitch, sw: p.Switch})
	case interaction.VdWForceSwitch:
		return selectCoulomb[W](st, p, cfg, ljForceSwitch[W]{rsw: p.RVdWSwitch, disp: p.Dispersion, rep: p.Repulsion})
	case interaction.VdWEwald:
		return selectCoulomb[W](st, p, cfg, ljEwald[W]{cut: newLJCut[W](p), beta: p.BetaLJ, shGrid: p.ShLJEwald})
	default:
		return selectCoulomb[W](st, p, cfg, newLJCut[W](p))
	}
}

func selectCoulomb[W lane.Width, L ljModel[W]](st *setup, p *interaction.Params, cfg Config, lj L) runner {
	switch p.Coulomb {
	case interaction.CoulombTable:
		return selectSink[W](st, cfg, lj, coulTable[W]{tab: p.Table, sh: p.ShEwald})
	case interaction.CoulombEwald:
		return selectSink[W](st, cfg, lj, coulEwald[W]{beta: p.BetaQ, sh: p.ShEwald})
	default:
		return selectSink[W](st, cfg, lj, coulRF[W]{krf: p.KRF, crf: p.CRF})
	}
}

func selectSink[W lane.Width, L ljModel[W], C coulombModel[W]](st *setup, cfg Config, lj L, coul C) runner {
	switch {
	case cfg.EnergyGroups:
		return newDriver[W](st, lj, coul, groupEnergy[W]{})
	case cfg.Energies:
		return newDriver[W](st, lj, coul, totalEnergy[W]{})
	default:
		return newDriver[W](st, lj, coul, noEnergy[W]{})
	}
}
