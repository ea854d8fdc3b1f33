package model

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRainfallValidation(t *testing.T) {
	tests := []struct {
		name string
		t, i []float64
		ok   bool
	}{
		{"valid", []float64{0., 600.}, []float64{1e-5, 0.}, true},
		{"single", []float64{0.}, []float64{1e-5}, true},
		{"empty", nil, nil, false},
		{"length mismatch", []float64{0., 600.}, []float64{1e-5}, false},
		{"nonzero start", []float64{60., 600.}, []float64{1e-5, 0.}, false},
		{"not increasing", []float64{0., 600., 600.}, []float64{1e-5, 1e-5, 0.}, false},
		{"negative intensity", []float64{0., 600.}, []float64{-1e-5, 0.}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRainfall(tc.t, tc.i)
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok {
				var dp *DataPreparationError
				if !errors.As(err, &dp) {
					t.Errorf("got %v, want DataPreparationError", err)
				}
			}
		})
	}
}

func TestRainfallDepth(t *testing.T) {
	rf, err := NewRainfall([]float64{0., 600., 1200.}, []float64{1e-5, 2e-5, 0.})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		t0, t1 float64
		want   float64
	}{
		{"within first interval", 0., 300., 3e-3},
		{"spanning a break", 300., 900., 1e-5*300. + 2e-5*300.},
		{"after the event", 1200., 1800., 0.},
		{"whole event", 0., 1200., 1e-5*600. + 2e-5*600.},
		{"degenerate window", 300., 300., 0.},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := rf.Depth(tc.t0, tc.t1); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Depth(%g,%g) = %g, want %g", tc.t0, tc.t1, got, tc.want)
			}
		})
	}
}

func TestRainfallFinalIntensityHolds(t *testing.T) {
	rf, err := NewRainfall([]float64{0.}, []float64{2e-6})
	if err != nil {
		t.Fatal(err)
	}
	if got := rf.Depth(0., 1000.); math.Abs(got-2e-3) > 1e-12 {
		t.Errorf("Depth = %g, want the single intensity to hold: 2e-3", got)
	}
}

func TestLoadRainfall(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "rain.txt")
	data := "# event of 2026-06-14\n" +
		"# time[min] cum[mm]\n" +
		"0 0\n" +
		"10 5\n" +
		"30 5\n"
	if err := os.WriteFile(fp, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	rf, err := LoadRainfall(fp)
	if err != nil {
		t.Fatal(err)
	}
	// 5 mm over the first 10 min, nothing after
	if got, want := rf.Depth(0., 600.), 5e-3; math.Abs(got-want) > 1e-12 {
		t.Errorf("first interval depth %g, want %g", got, want)
	}
	if got := rf.Depth(600., 1800.); got != 0. {
		t.Errorf("dry interval depth %g, want 0", got)
	}
}

func TestLoadRainfallMissingFile(t *testing.T) {
	_, err := LoadRainfall(filepath.Join(t.TempDir(), "absent.txt"))
	var dp *DataPreparationError
	if !errors.As(err, &dp) {
		t.Fatalf("got %v, want DataPreparationError", err)
	}
}

func TestLoadRainfallDecreasing(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "rain.txt")
	if err := os.WriteFile(fp, []byte("0 0\n10 5\n20 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadRainfall(fp)
	var dp *DataPreparationError
	if !errors.As(err, &dp) {
		t.Fatalf("got %v, want DataPreparationError", err)
	}
}
