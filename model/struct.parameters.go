package model

import (
	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

// Params holds the per-cell parameter grids, built once before simulation and
// read-only during integration. Matrices are Nrow x Ncol; values outside the
// active region are the no-data sentinel.
type Params struct {
	Slope   [][]float64 // cell gradient [-]
	A       [][]float64 // sheet resistance coefficient
	AA      [][]float64 // slope-adjusted sheet coefficient, a*slope^y
	B       [][]float64 // sheet stage-discharge exponent
	N       [][]float64 // Manning-type roughness (rill flow)
	Reten   [][]float64 // surface retention capacity [m]
	Hcrit   [][]float64 // sheet-to-rill transition depth [m]
	TauCrit [][]float64 // critical shear stress [Pa]
	VCrit   [][]float64 // critical velocity [m/s]
	FD      [][]int     // D8 flow-direction code (1 E, 2 SE, 4 S, ... 128 NE)
	InfIdx  [][]int     // infiltration group id
	Stream  [][]int     // reach id draining the cell; 0 = hillslope cell
}

// NewParams allocates nodata-filled parameter grids for gd.
func NewParams(gd *grid.Definition) *Params {
	intMatrix := func(v int) [][]int {
		m := make([][]int, gd.Nrow)
		for i := range m {
			m[i] = make([]int, gd.Ncol)
			for j := range m[i] {
				m[i][j] = v
			}
		}
		return m
	}
	return &Params{
		Slope:   gd.NullMatrix(gd.Nodata),
		A:       gd.NullMatrix(gd.Nodata),
		AA:      gd.NullMatrix(gd.Nodata),
		B:       gd.NullMatrix(gd.Nodata),
		N:       gd.NullMatrix(gd.Nodata),
		Reten:   gd.NullMatrix(gd.Nodata),
		Hcrit:   gd.NullMatrix(gd.Nodata),
		TauCrit: gd.NullMatrix(gd.Nodata),
		VCrit:   gd.NullMatrix(gd.Nodata),
		FD:      intMatrix(0),
		InfIdx:  intMatrix(-1),
		Stream:  intMatrix(0),
	}
}
