package model

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/maseology/mmio"
)

// Token is the engine/observer boundary: the observer requests cancellation,
// the engine publishes progress. Both are single-word atomics, each written
// from one side only; no locks.
type Token struct {
	cancelled atomic.Bool
	progress  atomic.Uint64 // float64 bits, [0,100]
}

// NewToken returns a fresh run token.
func NewToken() *Token { return &Token{} }

// Cancel requests cooperative cancellation; the engine honors it at the next
// step boundary.
func (tok *Token) Cancel() { tok.cancelled.Store(true) }

// Cancelled reports whether cancellation was requested.
func (tok *Token) Cancelled() bool { return tok.cancelled.Load() }

// Progress returns the published run progress in [0,100]. Monotone.
func (tok *Token) Progress() float64 {
	return math.Float64frombits(tok.progress.Load())
}

func (tok *Token) setProgress(p float64) {
	if p > tok.Progress() { // engine is the only writer; no race
		tok.progress.Store(math.Float64bits(p))
	}
}

// Run integrates the event from t=0 to the configured end time and returns
// the finalized results. The step length adapts to the kinematic celerity of
// the current state, bounded above by the configured maximum and the
// remaining time. Cancellation is polled at step boundaries only; on
// detection the run returns ErrComputationAborted and no output is produced.
func (dom *Domain) Run(tok *Token) (*Results, error) {
	if tok == nil {
		tok = NewToken()
	}
	if err := dom.PreRunCheck(); err != nil {
		return nil, err
	}
	gd := dom.GD
	sf, err := newSurface(gd, dom.Par, dom.Cfg)
	if err != nil {
		return nil, err
	}
	cum := NewCumulative(gd)
	for k := range dom.Moniton {
		dom.Moniton[k].reset()
	}

	var tt *mmio.Timer
	if dom.Cfg.Verbose {
		t0 := mmio.NewTimer()
		tt = &t0
		fmt.Printf(" running event: %.0f s end time, %s active cells, %d reaches\n",
			dom.Cfg.EndTime, mmio.Thousands(int64(gd.Nact())), len(dom.Net.Reaches))
	}

	outlet := hydrograph{}
	t, nstep := 0., 0
	for t < dom.Cfg.EndTime-nearzero {
		if tok.Cancelled() {
			return nil, ErrComputationAborted
		}

		dt := dom.Cfg.MaxDt
		if vmax := sf.maxCelerity(); vmax > nearzero {
			if ds := courant * gd.Dx / vmax; ds < dt {
				dt = ds
			}
		}
		if dt < dtmin {
			dt = dtmin
		}
		if rem := dom.Cfg.EndTime - t; dt > rem {
			dt = rem
		}

		dom.Net.beginStep()
		p := dom.Rain.Depth(t, t+dt)
		sf.addRain(p, dt, dom.Net, cum)

		infl, err := dom.Groups.Infiltrate(gd, dom.Par.InfIdx, sf.htot, dt)
		if err != nil {
			return nil, err
		}
		for _, i := range gd.Rows() {
			for _, j := range gd.Cols(i) {
				cum.Infiltration[i][j] += infl[i][j]
			}
		}

		sf.step(dt, dom.Net, cum)
		dom.Net.step(dt)

		t += dt
		nstep++
		for k := range dom.Moniton {
			dom.Moniton[k].record(t, p, sf)
		}
		outlet.record(t, dom.outletDischarge(sf))
		tok.setProgress(100. * t / dom.Cfg.EndTime)
	}

	cum.finalize(gd, dom.Par.Slope, gd.Dx)
	res, err := dom.postprocess(sf, cum, outlet, nstep)
	if err != nil {
		return nil, err
	}
	if tt != nil {
		tt.Lap(fmt.Sprintf(" event complete: %d steps", nstep))
	}
	tok.setProgress(100.)
	return res, nil
}

// outletDischarge sums the discharge leaving the domain this step: reach
// outlets plus hillslope cells draining over the boundary.
func (dom *Domain) outletDischarge(sf *surface) float64 {
	q := 0.
	for _, id := range dom.Net.order {
		if r := dom.Net.Reaches[id]; r.DownID == -1 {
			q += r.lastQ
		}
	}
	return q + sf.lastBoundaryQ
}
