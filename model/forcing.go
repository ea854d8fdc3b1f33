package model

import (
	"strconv"
	"strings"

	"github.com/maseology/mmio"
)

// Rainfall is the event hyetograph: ordered (time offset [s], intensity
// [m/s]) pairs, piecewise constant from each offset to the next; the final
// intensity holds until the end of the event.
type Rainfall struct {
	T []float64 // [s], strictly increasing, T[0] == 0
	I []float64 // [m/s]
}

// NewRainfall validates an ordered offset/intensity series.
func NewRainfall(t, i []float64) (*Rainfall, error) {
	if len(t) == 0 || len(t) != len(i) {
		return nil, dataPrepErrf("rainfall series: %d offsets, %d intensities", len(t), len(i))
	}
	if t[0] != 0. {
		return nil, dataPrepErrf("rainfall series must start at offset 0, got %g", t[0])
	}
	for k := 1; k < len(t); k++ {
		if t[k] <= t[k-1] {
			return nil, dataPrepErrf("rainfall offsets not increasing at row %d", k)
		}
	}
	for k, v := range i {
		if v < 0. {
			return nil, dataPrepErrf("negative rainfall intensity at row %d", k)
		}
	}
	return &Rainfall{T: t, I: i}, nil
}

// LoadRainfall reads a rainfall file: '#' comments, then rows of
// "time [min]  cumulative depth [mm]" converted to interval intensities.
func LoadRainfall(fp string) (*Rainfall, error) {
	lns, err := mmio.ReadTextLines(fp)
	if err != nil {
		return nil, dataPrepErrf("rainfall file %s: %v", fp, err)
	}
	var tmin, pmm []float64
	for k, ln := range lns {
		s := strings.TrimSpace(ln)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		flds := strings.Fields(s)
		if len(flds) < 2 {
			return nil, dataPrepErrf("rainfall file %s line %d: need 2 columns", fp, k+1)
		}
		t, err := strconv.ParseFloat(flds[0], 64)
		if err != nil {
			return nil, dataPrepErrf("rainfall file %s line %d: %v", fp, k+1, err)
		}
		p, err := strconv.ParseFloat(flds[1], 64)
		if err != nil {
			return nil, dataPrepErrf("rainfall file %s line %d: %v", fp, k+1, err)
		}
		tmin = append(tmin, t)
		pmm = append(pmm, p)
	}
	if len(tmin) < 2 {
		return nil, dataPrepErrf("rainfall file %s: need at least 2 rows", fp)
	}

	ts := make([]float64, len(tmin))
	is := make([]float64, len(tmin))
	for k := range tmin {
		ts[k] = tmin[k] * 60.
		if k < len(tmin)-1 {
			dp, dt := (pmm[k+1]-pmm[k])/1000., (tmin[k+1]-tmin[k])*60.
			if dp < 0. {
				return nil, dataPrepErrf("rainfall file %s: cumulative depth decreases at row %d", fp, k+1)
			}
			is[k] = dp / dt
		}
	}
	if ts[0] != 0. { // pad to the event start
		ts = append([]float64{0.}, ts...)
		is = append([]float64{0.}, is...)
	}
	return NewRainfall(ts, is)
}

// Depth integrates the hyetograph over [t0, t1), returning rainfall depth in
// meters.
func (rf *Rainfall) Depth(t0, t1 float64) float64 {
	if t1 <= t0 {
		return 0.
	}
	d := 0.
	for k := range rf.T {
		a := rf.T[k]
		b := t1
		if k < len(rf.T)-1 {
			b = rf.T[k+1]
		} else if rf.I[k] == 0. {
			break
		}
		lo, hi := a, b
		if lo < t0 {
			lo = t0
		}
		if hi > t1 {
			hi = t1
		}
		if hi > lo {
			d += rf.I[k] * (hi - lo)
		}
	}
	return d
}
