package model

import (
	"sort"

	"github.com/maseology/objfunc"
)

// ReachRecord is one row of the reach result table.
type ReachRecord struct {
	FID       int
	B         float64
	M         float64
	Roughness float64
	Q365      float64
	VolOutCum float64
	QMax      float64
}

// Results carries the finalized outputs of a completed run: named rasters
// with their output category, the reach table and the outlet hydrograph.
type Results struct {
	Rasters  map[string][][]float64
	Category map[string]string
	Reaches  []ReachRecord
	OutletT  []float64
	OutletQ  []float64
	Nstep    int
}

// FitStats summarizes the goodness of fit of the simulated outlet hydrograph
// against an observed series.
type FitStats struct {
	KGE, NSE, RMSE, Bias float64
}

func (dom *Domain) postprocess(sf *surface, cum *Cumulative, outlet hydrograph, nstep int) (*Results, error) {
	gd := dom.GD
	res := Results{
		Rasters:  make(map[string][][]float64),
		Category: make(map[string]string),
		OutletT:  outlet.T,
		OutletQ:  outlet.Q,
		Nstep:    nstep,
	}
	for _, f := range cum.Fields() {
		res.Rasters[f.Def.Name] = gd.MaskOut(f.M)
		res.Category[f.Def.Name] = f.Def.Category
	}

	res.Rasters["massbalance"] = dom.MassBalance(sf, cum)
	res.Category["massbalance"] = CatControl
	res.Rasters["volrest_m3"] = dom.volRest(sf)
	res.Category["volrest_m3"] = CatControl

	finState := gd.NullMatrix(gd.Nodata)
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			finState[i][j] = float64(sf.state[i][j])
		}
	}
	res.Rasters["surfacestate"] = finState
	res.Category["surfacestate"] = CatControl

	tbl, err := dom.ReachTable()
	if err != nil {
		return nil, err
	}
	res.Reaches = tbl
	return &res, nil
}

// volRest maps the water volume remaining on each hillslope cell at run end;
// stream cells carry the sentinel, their storage belongs to the reach table.
func (dom *Domain) volRest(sf *surface) [][]float64 {
	gd, area := dom.GD, dom.GD.CellArea()
	out := gd.NullMatrix(gd.Nodata)
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if sf.state[i][j] >= stateStream {
				continue
			}
			out[i][j] = sf.htot[i][j] * area
		}
	}
	return out
}

// MassBalance computes the closing balance raster [m³] over the final state:
//
//	balance = (precipitation + inflow) - (infiltration + outflow)
//	          - retention - remaining storage
//
// Pure over its inputs: calling it twice on an unchanged final state yields a
// bit-identical raster. Stream cells are excluded (sentinel); their water is
// accounted for by the reach table.
func (dom *Domain) MassBalance(sf *surface, cum *Cumulative) [][]float64 {
	gd, area := dom.GD, dom.GD.CellArea()
	bil := gd.NullMatrix(gd.Nodata)
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if sf.state[i][j] >= stateStream {
				continue
			}
			bil[i][j] = (cum.Precipitation[i][j]-cum.SurRet[i][j]-cum.Infiltration[i][j])*area +
				cum.InflowSur[i][j] - cum.VolSurTot[i][j] - sf.htot[i][j]*area
		}
	}
	return bil
}

// ReachTable reduces every reach to one record. Construction fails with
// ConsistencyError when a reach's recorded cumulative-volume or
// peak-discharge samples do not collapse to a single value: that is a routing
// fault, never to be averaged away.
func (dom *Domain) ReachTable() ([]ReachRecord, error) {
	ids := make([]int, 0, len(dom.Net.Reaches))
	for id := range dom.Net.Reaches {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	tbl := make([]ReachRecord, 0, len(ids))
	for _, id := range ids {
		r := dom.Net.Reaches[id]
		v, err := uniqueValue(r.ID, "V_out_cum", r.VolOutCum)
		if err != nil {
			return nil, err
		}
		q, err := uniqueValue(r.ID, "Q_max", r.QMax)
		if err != nil {
			return nil, err
		}
		tbl = append(tbl, ReachRecord{
			FID: r.ID, B: r.B, M: r.M, Roughness: r.Roughness, Q365: r.Q365,
			VolOutCum: v, QMax: q,
		})
	}
	return tbl, nil
}

func uniqueValue(reachID int, field string, vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0., nil
	}
	distinct := []float64{vals[0]}
	for _, v := range vals[1:] {
		seen := false
		for _, d := range distinct {
			if v == d {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, v)
		}
	}
	if len(distinct) > 1 {
		return 0., &ConsistencyError{ReachID: reachID, Field: field, Values: distinct}
	}
	return distinct[0], nil
}

// Fit evaluates the simulated outlet hydrograph against an observed series
// given as (time [s], discharge [m³/s]) pairs; the observation is
// interpolated onto the simulation times.
func (r *Results) Fit(obsT, obsQ []float64) (*FitStats, error) {
	if len(obsT) < 2 || len(obsT) != len(obsQ) {
		return nil, dataPrepErrf("observed series: %d times, %d values", len(obsT), len(obsQ))
	}
	obs := make([]float64, len(r.OutletT))
	for k, t := range r.OutletT {
		obs[k] = interp(obsT, obsQ, t)
	}
	return &FitStats{
		KGE:  objfunc.KGE(obs, r.OutletQ),
		NSE:  objfunc.NSE(obs, r.OutletQ),
		RMSE: objfunc.RMSE(obs, r.OutletQ),
		Bias: objfunc.Bias(obs, r.OutletQ),
	}, nil
}

func interp(xs, ys []float64, x float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	k := sort.SearchFloat64s(xs, x)
	x0, x1 := xs[k-1], xs[k]
	return ys[k-1] + (ys[k]-ys[k-1])*(x-x0)/(x1-x0)
}
