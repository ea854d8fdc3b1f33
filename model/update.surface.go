package model

import (
	"math"

	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

// d8 maps an ESRI flow-direction code to its (row, col) offset.
var d8 = map[int][2]int{
	1: {0, 1}, 2: {1, 1}, 4: {1, 0}, 8: {1, -1},
	16: {0, -1}, 32: {-1, -1}, 64: {-1, 0}, 128: {-1, 1},
}

// d8adj gives the two codes 45 degrees either side of a code, candidates for
// multiple-flow-direction splitting.
var d8adj = map[int][2]int{
	1: {128, 2}, 2: {1, 4}, 4: {2, 8}, 8: {4, 16},
	16: {8, 32}, 32: {16, 64}, 64: {32, 128}, 128: {64, 1},
}

// target is one downslope receiver of a cell with its discharge share.
type target struct {
	i, j int
	w    float64
}

// surface advances the per-cell overland state: total water level, hydraulic
// regime and discharge. The sheet-to-rill transition is permanent for the
// event; stream cells never hold overland water, their share is handed to the
// reach router.
type surface struct {
	gd  *grid.Definition
	par *Params

	htot  [][]float64 // total surface water level [m]
	state [][]int
	q     [][]float64 // last committed total discharge [m³/s]

	rill bool         // sheet-to-rill transition enabled
	tgt  [][][]target // downslope receivers; nil = drains off-domain

	domainOut     float64 // cumulative volume leaving over the boundary [m³]
	lastBoundaryQ float64 // boundary discharge of the last step [m³/s]
}

func newSurface(gd *grid.Definition, par *Params, cfg RunSettings) (*surface, error) {
	sf := surface{
		gd:    gd,
		par:   par,
		htot:  gd.NullMatrix(0.),
		q:     gd.NullMatrix(0.),
		rill:  cfg.TypeComp != CompSheetOnly,
		state: make([][]int, gd.Nrow),
		tgt:   make([][][]target, gd.Nrow),
	}
	for i := 0; i < gd.Nrow; i++ {
		sf.state[i] = make([]int, gd.Ncol)
		sf.tgt[i] = make([][]target, gd.Ncol)
	}
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if par.Stream[i][j] > 0 {
				sf.state[i][j] = stateStream
				continue
			}
			tt, err := sf.buildTargets(i, j, cfg.Mfda)
			if err != nil {
				return nil, err
			}
			sf.tgt[i][j] = tt
		}
	}
	return &sf, nil
}

// buildTargets resolves the receivers of cell (i,j) from its flow-direction
// code. Single direction: the one D8 neighbor. Multiple direction: the D8
// neighbor plus its two 45-degree flanks, weighted by receiver slope.
func (sf *surface) buildTargets(i, j int, mfda bool) ([]target, error) {
	code := sf.par.FD[i][j]
	off, ok := d8[code]
	if !ok {
		return nil, dataPrepErrf("invalid flow-direction code %d at cell (%d,%d)", code, i, j)
	}
	ti, tj := i+off[0], j+off[1]
	if !sf.gd.IsActive(ti, tj) {
		return nil, nil // drains over the domain boundary
	}
	if !mfda {
		return []target{{ti, tj, 1.}}, nil
	}

	cand := []target{{ti, tj, math.Max(sf.par.Slope[ti][tj], nearzero)}}
	for _, ac := range d8adj[code] {
		aoff := d8[ac]
		ai, aj := i+aoff[0], j+aoff[1]
		if !sf.gd.IsActive(ai, aj) {
			continue
		}
		if s := sf.par.Slope[ai][aj]; s != sf.gd.Nodata && s > 0. {
			cand = append(cand, target{ai, aj, s})
		}
	}
	var ws float64
	for _, t := range cand {
		ws += t.w
	}
	for k := range cand {
		cand[k].w /= ws
	}
	return cand, nil
}

// addRain raises the water level of every hillslope cell by p meters, filling
// surface retention first; rain on stream cells becomes direct lateral inflow
// to their reaches. Gross rainfall is accumulated regardless.
func (sf *surface) addRain(p, dt float64, net *StreamNet, cum *Cumulative) {
	area := sf.gd.CellArea()
	for _, i := range sf.gd.Rows() {
		for _, j := range sf.gd.Cols(i) {
			cum.Precipitation[i][j] += p
			if sf.state[i][j] >= stateStream {
				net.addLateral(sf.par.Stream[i][j], p*area)
				continue
			}
			eff := p
			if cap := sf.par.Reten[i][j]; cap != sf.gd.Nodata && cap > 0. {
				room := cap - cum.SurRet[i][j]
				if room > 0. {
					ret := math.Min(eff, room)
					cum.SurRet[i][j] += ret
					eff -= ret
				}
			}
			sf.htot[i][j] += eff
		}
	}
}

// maxCelerity estimates the fastest kinematic wave speed over the current
// state; the controller uses it to bound the next step length.
func (sf *surface) maxCelerity() float64 {
	vmax := 0.
	for _, i := range sf.gd.Rows() {
		for _, j := range sf.gd.Cols(i) {
			if sf.state[i][j] >= stateStream {
				continue
			}
			h := sf.htot[i][j]
			if h <= nearzero {
				continue
			}
			_, _, v := sf.cellDischarge(i, j, h)
			if v > vmax {
				vmax = v
			}
		}
	}
	return vmax
}

// cellDischarge computes the sheet and rill discharge of a cell at level h,
// returning (qSheet, qRill) in m³/s and the governing velocity in m/s.
func (sf *surface) cellDischarge(i, j int, h float64) (qSheet, qRill, vel float64) {
	aa, b := sf.par.AA[i][j], sf.par.B[i][j]
	hcrit := sf.par.Hcrit[i][j]
	nodata := sf.gd.Nodata
	if aa == nodata || b == nodata || aa <= 0. {
		return 0., 0., 0.
	}

	hsh, hr := h, 0.
	if sf.state[i][j] == stateRill && hcrit != nodata && h > hcrit {
		hsh, hr = hcrit, h-hcrit
	}

	// power-law stage-discharge per unit width, scaled to the cell width
	qu := aa * math.Pow(hsh, b) // [m²/s]
	qSheet = qu * sf.gd.Dx
	if hsh > nearzero {
		vel = qu / hsh
	}

	if hr > nearzero {
		n, slope := sf.par.N[i][j], sf.par.Slope[i][j]
		if n != nodata && n > 0. && slope != nodata && slope > 0. {
			br := hr / rillRatio
			ar := br * hr
			rr := ar / (br + 2.*hr)
			vr := math.Sqrt(slope) / n * math.Pow(rr, 2./3.)
			qRill = vr * ar
			if vr > vel {
				vel = vr
			}
		}
	}
	return
}

// step advances the overland state by dt seconds. All outflow volumes are
// computed from the committed state, then the deltas are applied at once: a
// step either fully commits or not at all. Outflow never exceeds the water
// stored on the cell; any shortfall stays for the next step.
func (sf *surface) step(dt float64, net *StreamNet, cum *Cumulative) {
	gd, area := sf.gd, sf.gd.CellArea()
	dvol := gd.NullMatrix(0.)
	vBoundary := 0.

	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if sf.state[i][j] >= stateStream {
				continue
			}
			h := sf.htot[i][j]
			if h <= nearzero {
				sf.q[i][j] = 0.
				continue
			}

			hcrit := sf.par.Hcrit[i][j]
			if sf.rill && sf.state[i][j] == stateSheet && hcrit != gd.Nodata && h > hcrit {
				sf.state[i][j] = stateRill
			}

			qs, qr, _ := sf.cellDischarge(i, j, h)
			vOut := (qs + qr) * dt
			if avail := h * area; vOut > avail {
				// volume-limited: never drain more than is stored
				f := avail / vOut
				qs *= f
				qr *= f
				vOut = avail
			}
			q := qs + qr
			sf.q[i][j] = q
			dvol[i][j] -= vOut

			for _, t := range sf.tgt[i][j] {
				v := vOut * t.w
				if sf.state[t.i][t.j] >= stateStream {
					net.addLateral(sf.par.Stream[t.i][t.j], v)
				} else {
					dvol[t.i][t.j] += v
					cum.InflowSur[t.i][t.j] += v
				}
			}
			if sf.tgt[i][j] == nil {
				sf.domainOut += vOut
				vBoundary += vOut
			}

			// time-integrated accounting
			hsh := h
			if sf.state[i][j] == stateRill && hcrit != gd.Nodata && h > hcrit {
				hsh = hcrit
			}
			hr := h - hsh
			cum.VolSurTot[i][j] += vOut
			cum.VolSheet[i][j] += qs * dt
			cum.VolRill[i][j] += qr * dt
			if q > cum.QSurTot[i][j] {
				cum.QSurTot[i][j] = q
			}
			if qs > cum.QSheetTot[i][j] {
				cum.QSheetTot[i][j] = qs
			}
			if qr > cum.QRillTot[i][j] {
				cum.QRillTot[i][j] = qr
			}
			if h > cum.HSurTot[i][j] {
				cum.HSurTot[i][j] = h
			}
			if hr > cum.HRill[i][j] {
				cum.HRill[i][j] = hr
			}
			if br := hr / rillRatio; br > cum.BRill[i][j] {
				cum.BRill[i][j] = br
			}
			if hsh > cum.hSheetMax[i][j] {
				cum.hSheetMax[i][j] = hsh
			}
			if qs > cum.qSheetMax[i][j] {
				cum.qSheetMax[i][j] = qs
			}
		}
	}

	sf.lastBoundaryQ = vBoundary / dt

	// commit
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			sf.htot[i][j] += dvol[i][j] / area
			if sf.htot[i][j] < 0. && sf.htot[i][j] > -nearzero {
				sf.htot[i][j] = 0. // clip accumulated round-off
			}
		}
	}
}
