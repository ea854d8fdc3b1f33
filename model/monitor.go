package model

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/maseology/mmio"

	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

var gwg sync.WaitGroup

// WaitMonitors blocks until all asynchronous monitor writes complete.
func WaitMonitors() { gwg.Wait() }

// Monitor samples the simulated water level and discharge at one cell every
// step, producing a point hydrograph.
type Monitor struct {
	Label      string
	I, J       int
	T, P, H, Q []float64
}

func (m *Monitor) reset() { m.T, m.P, m.H, m.Q = nil, nil, nil, nil }

func (m *Monitor) record(t, p float64, sf *surface) {
	m.T = append(m.T, t)
	m.P = append(m.P, p)
	m.H = append(m.H, sf.htot[m.I][m.J])
	m.Q = append(m.Q, sf.q[m.I][m.J])
}

// print writes the hydrograph as a .mon CSV, asynchronously.
func (m *Monitor) print(dir string) {
	gwg.Add(1)
	go func() {
		defer gwg.Done()
		csvw := mmio.NewCSVwriter(fmt.Sprintf("%s/%s.mon", dir, m.Label))
		defer csvw.Close()
		if err := csvw.WriteHead("t_s,rain_m,h_m,q_m3s"); err != nil {
			log.Printf("monitor %s: %v", m.Label, err)
			return
		}
		for k, t := range m.T {
			csvw.WriteLine(t, m.P[k], m.H[k], m.Q[k])
		}
	}()
}

// LoadPoints reads hydrograph points: '#' comments, then rows of
// "label  easting  northing". Coordinates are snapped to the containing
// cell; a point outside the active domain is rejected.
func LoadPoints(fp string, gd *grid.Definition) ([]Monitor, error) {
	lns, err := mmio.ReadTextLines(fp)
	if err != nil {
		return nil, dataPrepErrf("points file %s: %v", fp, err)
	}
	var mons []Monitor
	for k, ln := range lns {
		s := strings.TrimSpace(ln)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		flds := strings.Fields(s)
		if len(flds) < 3 {
			return nil, dataPrepErrf("points file %s line %d: need 'label x y'", fp, k+1)
		}
		x, err := strconv.ParseFloat(flds[1], 64)
		if err != nil {
			return nil, dataPrepErrf("points file %s line %d: %v", fp, k+1, err)
		}
		y, err := strconv.ParseFloat(flds[2], 64)
		if err != nil {
			return nil, dataPrepErrf("points file %s line %d: %v", fp, k+1, err)
		}
		j := int(math.Floor((x - gd.Xll) / gd.Dx))
		i := gd.Nrow - 1 - int(math.Floor((y-gd.Yll)/gd.Dy))
		if !gd.IsActive(i, j) {
			return nil, dataPrepErrf("points file %s line %d: point %s (%.1f, %.1f) outside active domain", fp, k+1, flds[0], x, y)
		}
		mons = append(mons, Monitor{Label: flds[0], I: i, J: j})
	}
	return mons, nil
}

// LoadObservation reads an observed outlet series: '#' comments, then rows
// of "time [s]  discharge [m³/s]".
func LoadObservation(fp string) (t, q []float64, err error) {
	lns, err := mmio.ReadTextLines(fp)
	if err != nil {
		return nil, nil, dataPrepErrf("observation file %s: %v", fp, err)
	}
	for k, ln := range lns {
		s := strings.TrimSpace(ln)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		flds := strings.Fields(s)
		if len(flds) < 2 {
			return nil, nil, dataPrepErrf("observation file %s line %d: need 2 columns", fp, k+1)
		}
		tv, err := strconv.ParseFloat(flds[0], 64)
		if err != nil {
			return nil, nil, dataPrepErrf("observation file %s line %d: %v", fp, k+1, err)
		}
		qv, err := strconv.ParseFloat(flds[1], 64)
		if err != nil {
			return nil, nil, dataPrepErrf("observation file %s line %d: %v", fp, k+1, err)
		}
		t = append(t, tv)
		q = append(q, qv)
	}
	return t, q, nil
}

// hydrograph is the domain-outlet time series kept for reporting.
type hydrograph struct {
	T, Q []float64
}

func (h *hydrograph) record(t, q float64) {
	h.T = append(h.T, t)
	h.Q = append(h.Q, q)
}
