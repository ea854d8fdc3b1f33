package model

import (
	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

// RunSettings is the engine's run configuration, built once at run start and
// never shared between concurrent runs.
type RunSettings struct {
	EndTime  float64 // [s]
	MaxDt    float64 // [s]
	Mfda     bool    // multiple flow direction routing
	TypeComp string  // CompSheetOnly | CompRill | CompStreamRill; empty = stream_rill
	Verbose  bool
}

// Domain holds all data of one simulation: geometry, parameter grids,
// infiltration groups, stream network and forcing. It is the parent of the
// run and exclusively owns its arrays for the run's lifetime.
type Domain struct {
	GD      *grid.Definition
	Par     *Params
	Groups  *InfGroups
	Net     *StreamNet
	Rain    *Rainfall
	Cfg     RunSettings
	Moniton []Monitor // hydrograph points
}

// NewDomain assembles and validates a domain. Reaches may be empty for
// hillslope-only runs.
func NewDomain(gd *grid.Definition, par *Params, groups *InfGroups, reaches []*Reach, rain *Rainfall, cfg RunSettings) (*Domain, error) {
	net, err := NewStreamNet(reaches)
	if err != nil {
		return nil, err
	}
	dom := Domain{GD: gd, Par: par, Groups: groups, Net: net, Rain: rain, Cfg: cfg}
	if err := dom.PreRunCheck(); err != nil {
		return nil, err
	}
	return &dom, nil
}

// UniformParams describes a constant-parameter planar domain, the no-GIS
// input path: one slope, one parameter set, one infiltration group, a single
// flow direction everywhere.
type UniformParams struct {
	Nr, Nc         int
	Dx, Dy         float64
	Slope          float64
	FD             int
	A, Y, B, N     float64
	RetMM          float64 // surface retention [mm]
	TauCrit, VCrit float64
	Ks, S          float64
}

// NewUniformDomain builds a synthetic domain from one parameter set.
func NewUniformDomain(u UniformParams, rain *Rainfall, cfg RunSettings) (*Domain, error) {
	gd, err := grid.NewDefinition(u.Nr, u.Nc, u.Dx, u.Dy, 0., 0., -9999., nil)
	if err != nil {
		return nil, &DataPreparationError{Msg: err.Error()}
	}
	par := NewParams(gd)
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			par.Slope[i][j] = u.Slope
			par.A[i][j] = u.A
			par.B[i][j] = u.B
			par.N[i][j] = u.N
			par.Reten[i][j] = u.RetMM / 1000.
			par.TauCrit[i][j] = u.TauCrit
			par.VCrit[i][j] = u.VCrit
			par.FD[i][j] = u.FD
			par.InfIdx[i][j] = 0
		}
	}
	par.AA = DeriveAA(gd, par.A, par.Slope, u.Y)
	par.Hcrit = CritWaterLevel(gd, par.Slope, par.AA, par.B, par.TauCrit, par.VCrit)
	groups := NewInfGroups([][2]float64{{u.Ks, u.S}})
	return NewDomain(gd, par, groups, nil, rain, cfg)
}
