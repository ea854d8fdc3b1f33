package model

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestReachTable(t *testing.T) {
	net, err := NewStreamNet([]*Reach{NewReach(1, .6, 1., .05, 0., .01, 10., -1, 3)})
	if err != nil {
		t.Fatal(err)
	}
	dom := &Domain{Net: net}
	r := net.Reaches[1]

	copy(r.VolOutCum, []float64{12.5, 12.5, 12.5})
	copy(r.QMax, []float64{.4, .4, .4})
	tbl, err := dom.ReachTable()
	if err != nil {
		t.Fatal(err)
	}
	if tbl[0].VolOutCum != 12.5 || tbl[0].QMax != .4 {
		t.Errorf("record %+v, want VolOutCum 12.5 QMax 0.4", tbl[0])
	}

	copy(r.QMax, []float64{.4, .5, .4})
	_, err = dom.ReachTable()
	var ce *ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConsistencyError", err)
	}
	if ce.ReachID != 1 || ce.Field != "Q_max" || len(ce.Values) != 2 {
		t.Errorf("reported %+v, want reach 1 Q_max with 2 distinct values", ce)
	}
}

func TestMassBalanceIdempotent(t *testing.T) {
	gd := mustGrid(t, 2, 2)
	dom := &Domain{
		GD: gd, Par: testParams(gd, .05, 4),
		Groups: NewInfGroups([][2]float64{{1e-6, 1e-4}}),
		Rain:   &Rainfall{T: []float64{0.}, I: []float64{1e-5}},
		Cfg:    RunSettings{EndTime: 30., MaxDt: 10.},
	}
	net, _ := NewStreamNet(nil)
	dom.Net = net
	sf, err := newSurface(gd, dom.Par, RunSettings{})
	if err != nil {
		t.Fatal(err)
	}
	cum := NewCumulative(gd)

	const dt = 10.
	net.beginStep()
	sf.addRain(1e-4, dt, net, cum)
	infl, err := dom.Groups.Infiltrate(gd, dom.Par.InfIdx, sf.htot, dt)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			cum.Infiltration[i][j] += infl[i][j]
		}
	}
	sf.step(dt, net, cum)

	b1 := dom.MassBalance(sf, cum)
	b2 := dom.MassBalance(sf, cum)
	if !reflect.DeepEqual(b1, b2) {
		t.Error("repeated evaluation over an unchanged state must be bit-identical")
	}
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if math.Abs(b1[i][j]) > 1e-9 {
				t.Errorf("balance %g m3 at (%d,%d)", b1[i][j], i, j)
			}
		}
	}
}

func TestInterp(t *testing.T) {
	xs := []float64{0., 10., 20.}
	ys := []float64{0., 1., 3.}
	tests := []struct {
		x, want float64
	}{
		{-5., 0.},  // clamp left
		{0., 0.},   //
		{5., .5},   //
		{15., 2.},  //
		{25., 3.},  // clamp right
	}
	for _, tc := range tests {
		if got := interp(xs, ys, tc.x); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("interp(%g) = %g, want %g", tc.x, got, tc.want)
		}
	}
}

func TestFitRejectsBadSeries(t *testing.T) {
	res := &Results{OutletT: []float64{1., 2.}, OutletQ: []float64{0., 0.}}
	_, err := res.Fit([]float64{0.}, []float64{1.})
	var dp *DataPreparationError
	if !errors.As(err, &dp) {
		t.Fatalf("got %v, want DataPreparationError", err)
	}
	_, err = res.Fit([]float64{0., 1.}, []float64{1.})
	if !errors.As(err, &dp) {
		t.Fatalf("got %v, want DataPreparationError", err)
	}
}
