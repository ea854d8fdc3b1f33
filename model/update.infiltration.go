package model

import (
	"math"

	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

// InfGroup collects all cells sharing one (conductivity, sorptivity) pair.
// PotInf is the group's infiltration capacity for the current step, refilled
// each step by the Philip two-term law; CumInf integrates what the group's
// cells actually took.
type InfGroup struct {
	ID     int
	K      float64 // saturated conductivity [m/s]
	S      float64 // sorptivity [m/s^0.5]
	PotInf float64 // step capacity [m]
	CumInf float64 // cumulative infiltrated depth [m]
}

// InfGroups is the infiltration model state, owned by the Domain for the
// lifetime of a run and mutated only inside Infiltrate.
type InfGroups struct {
	Groups []InfGroup
	TotalT float64 // simulated time already infiltrated [s]
}

// NewInfGroups builds the group table from (k, s) pairs indexed by group id.
func NewInfGroups(pairs [][2]float64) *InfGroups {
	ig := InfGroups{Groups: make([]InfGroup, len(pairs))}
	for i, p := range pairs {
		ig.Groups[i] = InfGroup{ID: i, K: p[0], S: p[1]}
	}
	return &ig
}

// GroupsFromGrids scans per-cell conductivity and sorptivity grids and
// assigns every active cell to a group: lookup by exact equality of the
// (k, s) pair, creating a new dense id on first occurrence, in row-major scan
// order. Returns the group table and the per-cell group-id grid.
func GroupsFromGrids(gd *grid.Definition, ks, ss [][]float64) (*InfGroups, [][]int, error) {
	seen := make(map[[2]float64]int)
	var pairs [][2]float64
	idx := make([][]int, gd.Nrow)
	for i := range idx {
		idx[i] = make([]int, gd.Ncol)
		for j := range idx[i] {
			idx[i][j] = -1
		}
	}
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			k, s := ks[i][j], ss[i][j]
			if k == gd.Nodata || s == gd.Nodata {
				return nil, nil, dataPrepErrf("no-data infiltration parameter at active cell (%d,%d)", i, j)
			}
			pair := [2]float64{k, s}
			g, ok := seen[pair]
			if !ok {
				g = len(pairs)
				seen[pair] = g
				pairs = append(pairs, pair)
			}
			idx[i][j] = g
		}
	}
	return NewInfGroups(pairs), idx, nil
}

// philip returns the infiltration capacity increment over a step of deltaT
// seconds, totalT seconds into the event. Sentinel parameters yield the
// sentinel, never combined with real values.
func philip(k, s, deltaT, totalT, nodata float64) float64 {
	if k == nodata || s == nodata {
		return nodata
	}
	return (.5*s/math.Sqrt(totalT+deltaT) + k) * deltaT
}

// Infiltrate runs one infiltration pass: refills every group's capacity for
// the step, then lowers the surface water level of each active cell by
// min(group capacity, available depth), in ascending group-id order. Each
// group pass rewrites only its own cells; later groups never clobber earlier
// ones. The returned grid holds the infiltrated depth per cell.
//
// Every active cell must carry a non-negative water level before the pass
// begins; a negative entry aborts the step with NegativeWaterLevel before any
// group is processed.
func (ig *InfGroups) Infiltrate(gd *grid.Definition, infIdx [][]int, hsur [][]float64, deltaT float64) ([][]float64, error) {
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if hsur[i][j] < 0. {
				return nil, &NegativeWaterLevel{Row: i, Col: j, H: hsur[i][j]}
			}
		}
	}

	for g := range ig.Groups {
		ig.Groups[g].PotInf = philip(ig.Groups[g].K, ig.Groups[g].S, deltaT, ig.TotalT, gd.Nodata)
	}

	infl := gd.NullMatrix(0.)
	for g := range ig.Groups {
		grp := &ig.Groups[g]
		for _, i := range gd.Rows() {
			for _, j := range gd.Cols(i) {
				if infIdx[i][j] != grp.ID {
					continue
				}
				f := grp.PotInf
				if hsur[i][j] < f {
					f = hsur[i][j]
				}
				infl[i][j] = f
				hsur[i][j] -= f
				grp.CumInf += f
			}
		}
	}
	ig.TotalT += deltaT
	return infl, nil
}
