package model

// PreRunCheck validates the assembled domain before the loop starts. All
// failures are DataPreparationError: bad input, never an engine fault.
func (dom *Domain) PreRunCheck() error {
	gd, par := dom.GD, dom.Par
	if par == nil {
		return dataPrepErrf("no parameter grids")
	}
	if dom.Groups == nil || len(dom.Groups.Groups) == 0 {
		return dataPrepErrf("no infiltration groups")
	}
	if dom.Rain == nil {
		return dataPrepErrf("no rainfall series")
	}
	if dom.Cfg.EndTime <= 0. {
		return dataPrepErrf("end time must be positive, got %g", dom.Cfg.EndTime)
	}
	if dom.Cfg.MaxDt <= 0. {
		return dataPrepErrf("max step must be positive, got %g", dom.Cfg.MaxDt)
	}
	switch dom.Cfg.TypeComp {
	case "", CompSheetOnly, CompRill, CompStreamRill:
	default:
		return dataPrepErrf("unknown computation type %q", dom.Cfg.TypeComp)
	}

	for _, m := range []struct {
		name string
		m    [][]float64
	}{
		{"slope", par.Slope}, {"a", par.A}, {"aa", par.AA}, {"b", par.B},
		{"n", par.N}, {"reten", par.Reten}, {"hcrit", par.Hcrit},
	} {
		if len(m.m) != gd.Nrow {
			return dataPrepErrf("grid %s: %d rows, need %d", m.name, len(m.m), gd.Nrow)
		}
		for i := range m.m {
			if len(m.m[i]) != gd.Ncol {
				return dataPrepErrf("grid %s row %d: %d columns, need %d", m.name, i, len(m.m[i]), gd.Ncol)
			}
		}
	}

	ngrp := len(dom.Groups.Groups)
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if s := par.Slope[i][j]; s != gd.Nodata && s < 0. {
				return dataPrepErrf("negative slope %g at cell (%d,%d)", s, i, j)
			}
			if g := par.InfIdx[i][j]; g < 0 || g >= ngrp {
				return dataPrepErrf("infiltration group %d at cell (%d,%d) outside table of %d", g, i, j, ngrp)
			}
			if sid := par.Stream[i][j]; sid > 0 {
				if _, ok := dom.Net.Reaches[sid]; !ok {
					return dataPrepErrf("cell (%d,%d) assigned to undefined reach %d", i, j, sid)
				}
			} else if _, ok := d8[par.FD[i][j]]; !ok {
				return dataPrepErrf("invalid flow-direction code %d at cell (%d,%d)", par.FD[i][j], i, j)
			}
		}
	}
	return nil
}
