package model

import (
	"errors"
	"math"
	"testing"

	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

// testParams fills a constant hillslope parameterization.
func testParams(gd *grid.Definition, slope float64, fd int) *Params {
	par := NewParams(gd)
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			par.Slope[i][j] = slope
			par.A[i][j] = 1.
			par.B[i][j] = 2.
			par.N[i][j] = .05
			par.Reten[i][j] = 0.
			par.TauCrit[i][j] = 50.
			par.VCrit[i][j] = .8
			par.FD[i][j] = fd
			par.InfIdx[i][j] = 0
		}
	}
	par.AA = DeriveAA(gd, par.A, par.Slope, .5)
	par.Hcrit = CritWaterLevel(gd, par.Slope, par.AA, par.B, par.TauCrit, par.VCrit)
	return par
}

func TestBuildTargetsD8(t *testing.T) {
	gd := mustGrid(t, 3, 3)
	par := testParams(gd, .05, 4) // all cells drain due south
	sf, err := newSurface(gd, par, RunSettings{})
	if err != nil {
		t.Fatal(err)
	}

	tt := sf.tgt[1][1]
	if len(tt) != 1 || tt[0].i != 2 || tt[0].j != 1 || tt[0].w != 1. {
		t.Errorf("interior cell targets %v, want [{2 1 1}]", tt)
	}
	for j := 0; j < 3; j++ {
		if sf.tgt[2][j] != nil {
			t.Errorf("bottom-row cell (2,%d) must drain over the boundary", j)
		}
	}
}

func TestBuildTargetsInvalidCode(t *testing.T) {
	gd := mustGrid(t, 2, 2)
	par := testParams(gd, .05, 4)
	par.FD[0][0] = 3 // not a D8 power of two
	_, err := newSurface(gd, par, RunSettings{})
	var dp *DataPreparationError
	if !errors.As(err, &dp) {
		t.Fatalf("got %v, want DataPreparationError", err)
	}
}

func TestBuildTargetsMfdaWeights(t *testing.T) {
	gd := mustGrid(t, 3, 3)
	par := testParams(gd, .05, 4)
	sf, err := newSurface(gd, par, RunSettings{Mfda: true})
	if err != nil {
		t.Fatal(err)
	}

	tt := sf.tgt[0][1] // south flanked by SW and SE, all active and sloped
	if len(tt) != 3 {
		t.Fatalf("got %d receivers, want 3", len(tt))
	}
	ws := 0.
	for _, tg := range tt {
		if tg.w <= 0. {
			t.Errorf("receiver (%d,%d) weight %g, want positive", tg.i, tg.j, tg.w)
		}
		ws += tg.w
	}
	if math.Abs(ws-1.) > 1e-12 {
		t.Errorf("weights sum to %g, want 1", ws)
	}
}

func TestStepMassConservation(t *testing.T) {
	gd := mustGrid(t, 3, 3)
	par := testParams(gd, .05, 4)
	sf, err := newSurface(gd, par, RunSettings{})
	if err != nil {
		t.Fatal(err)
	}
	net, _ := NewStreamNet(nil)
	cum := NewCumulative(gd)

	const p, dt = .01, 10.
	area := gd.CellArea()
	sf.addRain(p, dt, net, cum)
	vin := p * area * float64(gd.Nact())

	for k := 0; k < 5; k++ {
		sf.step(dt, net, cum)
	}

	stored := 0.
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if h := sf.htot[i][j]; h < 0. {
				t.Errorf("negative level %g at (%d,%d)", h, i, j)
			} else {
				stored += h * area
			}
		}
	}
	if d := math.Abs(stored + sf.domainOut - vin); d > 1e-9 {
		t.Errorf("mass error %g m3: stored %g + out %g != in %g", d, stored, sf.domainOut, vin)
	}
}

func TestRegimeTransitionPermanent(t *testing.T) {
	gd := mustGrid(t, 1, 1)
	par := testParams(gd, .05, 4)
	par.Hcrit[0][0] = .005
	sf, err := newSurface(gd, par, RunSettings{})
	if err != nil {
		t.Fatal(err)
	}
	net, _ := NewStreamNet(nil)
	cum := NewCumulative(gd)

	sf.htot[0][0] = .02 // above the transition depth
	sf.step(1., net, cum)
	if sf.state[0][0] != stateRill {
		t.Fatalf("state %d after exceeding hcrit, want rill", sf.state[0][0])
	}

	sf.htot[0][0] = .001 // receded well below hcrit
	sf.step(1., net, cum)
	if sf.state[0][0] != stateRill {
		t.Errorf("rill state must persist for the event, got %d", sf.state[0][0])
	}
}

func TestSheetOnlySuppressesRill(t *testing.T) {
	gd := mustGrid(t, 1, 1)
	par := testParams(gd, .05, 4)
	par.Hcrit[0][0] = .005
	sf, err := newSurface(gd, par, RunSettings{TypeComp: CompSheetOnly})
	if err != nil {
		t.Fatal(err)
	}
	net, _ := NewStreamNet(nil)
	cum := NewCumulative(gd)

	sf.htot[0][0] = .02 // far above hcrit; must still route as sheet
	sf.step(1., net, cum)
	if sf.state[0][0] != stateSheet {
		t.Errorf("state %d under sheet-only computation, want sheet", sf.state[0][0])
	}
	if cum.VolRill[0][0] != 0. {
		t.Errorf("rill volume %g under sheet-only computation", cum.VolRill[0][0])
	}
}

func TestStepVolumeLimited(t *testing.T) {
	gd := mustGrid(t, 1, 1)
	par := testParams(gd, .05, 4)
	par.AA[0][0] = 1e6 // absurdly conveyant: demand far exceeds storage
	sf, err := newSurface(gd, par, RunSettings{})
	if err != nil {
		t.Fatal(err)
	}
	net, _ := NewStreamNet(nil)
	cum := NewCumulative(gd)

	const h, dt = .01, 10.
	sf.htot[0][0] = h
	sf.step(dt, net, cum)

	if sf.htot[0][0] != 0. {
		t.Errorf("level %g after volume-limited step, want 0", sf.htot[0][0])
	}
	if want := h * gd.CellArea() / dt; math.Abs(sf.q[0][0]-want) > 1e-12 {
		t.Errorf("discharge %g, want storage-limited %g", sf.q[0][0], want)
	}
	if d := math.Abs(sf.domainOut - h*gd.CellArea()); d > 1e-12 {
		t.Errorf("boundary outflow %g, want %g", sf.domainOut, h*gd.CellArea())
	}
}

func TestStreamCellLateral(t *testing.T) {
	gd := mustGrid(t, 1, 2)
	par := testParams(gd, .05, 1) // due east, into the stream cell
	par.Stream[0][1] = 1
	net, err := NewStreamNet([]*Reach{NewReach(1, .6, 1., .05, 0., .01, 1., -1, 1)})
	if err != nil {
		t.Fatal(err)
	}
	sf, err := newSurface(gd, par, RunSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if sf.state[0][1] != stateStream {
		t.Fatalf("stream cell state %d, want %d", sf.state[0][1], stateStream)
	}
	cum := NewCumulative(gd)

	const p, dt = .01, 10.
	area := gd.CellArea()
	net.beginStep()
	sf.addRain(p, dt, net, cum)
	if d := math.Abs(net.LateralIn() - p*area); d > 1e-12 {
		t.Fatalf("rain on stream cell: lateral %g, want %g", net.LateralIn(), p*area)
	}
	if sf.htot[0][1] != 0. {
		t.Errorf("stream cell holds overland water: %g", sf.htot[0][1])
	}

	sf.step(dt, net, cum)
	qs, qr, _ := sf.cellDischarge(0, 0, p)
	// hillslope outflow must arrive as the same volume of lateral inflow
	if want := p*area + (qs+qr)*dt; math.Abs(net.LateralIn()-want) > 1e-9 {
		t.Errorf("lateral after step %g, want %g", net.LateralIn(), want)
	}
}

func TestRetentionFillsFirst(t *testing.T) {
	gd := mustGrid(t, 1, 1)
	par := testParams(gd, .05, 4)
	par.Reten[0][0] = .004
	sf, err := newSurface(gd, par, RunSettings{})
	if err != nil {
		t.Fatal(err)
	}
	net, _ := NewStreamNet(nil)
	cum := NewCumulative(gd)

	sf.addRain(.003, 1., net, cum) // entirely retained
	if sf.htot[0][0] != 0. || cum.SurRet[0][0] != .003 {
		t.Fatalf("after 3 mm: h %g ret %g, want 0 and 0.003", sf.htot[0][0], cum.SurRet[0][0])
	}
	sf.addRain(.003, 1., net, cum) // 1 mm tops off the store, 2 mm ponds
	if math.Abs(cum.SurRet[0][0]-.004) > 1e-12 {
		t.Errorf("retention %g, want capacity 0.004", cum.SurRet[0][0])
	}
	if math.Abs(sf.htot[0][0]-.002) > 1e-12 {
		t.Errorf("ponded %g, want 0.002", sf.htot[0][0])
	}
	if math.Abs(cum.Precipitation[0][0]-.006) > 1e-12 {
		t.Errorf("gross precipitation %g, want 0.006", cum.Precipitation[0][0])
	}
}
