// Package config loads run configuration from ini files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// ConfigurationError reports a malformed or missing run configuration. Fatal;
// surfaced before the simulation loop starts.
type ConfigurationError struct {
	File string
	Msg  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config file %s: %s", e.File, e.Msg)
}

// RunConfig is the parsed run configuration. Times are seconds.
type RunConfig struct {
	EndTime  float64 // total simulated time [s]
	MaxDt    float64 // upper bound on the adaptive step [s]
	Outdir   string
	RainFile string
	Mfda     bool   // multiple flow direction routing
	TypeComp string // sheet_only | rill | stream_rill
	ExtraOut bool

	DataFile   string // prepared-domain gob (two-phase workflow); optional
	PointsFile string // hydrograph points; optional
	ObsFile    string // observed outlet discharge; optional

	// uniform-domain fallback when no prepared data file is given
	Domain *UniformDomain
}

// UniformDomain describes a constant-parameter planar domain, the
// no-GIS configuration path.
type UniformDomain struct {
	Nr, Nc         int
	Dx, Dy         float64
	Slope          float64
	FD             int // D8 flow-direction code applied to every cell
	A, Y, B, N     float64
	Ret            float64 // surface retention [mm]
	TauCrit, VCrit float64
	Ks, S          float64 // Philip conductivity [m/s], sorptivity [m/s^0.5]
}

// Load reads an ini run-configuration file.
func Load(fp string) (*RunConfig, error) {
	if _, err := os.Stat(fp); err != nil {
		return nil, &ConfigurationError{File: fp, Msg: "does not exist"}
	}
	f, err := ini.Load(fp)
	if err != nil {
		return nil, &ConfigurationError{File: fp, Msg: err.Error()}
	}

	cfg := RunConfig{
		Mfda:     f.Section("processes").Key("mfda").MustBool(false),
		TypeComp: f.Section("processes").Key("typecomp").MustString("stream_rill"),
		ExtraOut: f.Section("output").Key("extraout").MustBool(false),
	}

	tsec := f.Section("time")
	endmin, err := tsec.Key("endtime").Float64()
	if err != nil {
		return nil, &ConfigurationError{File: fp, Msg: "option 'endtime' missing from section [time]"}
	}
	cfg.EndTime = endmin * 60. // minutes in the file, seconds internally
	cfg.MaxDt, err = tsec.Key("maxdt").Float64()
	if err != nil {
		return nil, &ConfigurationError{File: fp, Msg: "option 'maxdt' missing from section [time]"}
	}
	if cfg.EndTime <= 0. || cfg.MaxDt <= 0. {
		return nil, &ConfigurationError{File: fp, Msg: "endtime and maxdt must be positive"}
	}

	cfg.Outdir = f.Section("output").Key("outdir").String()
	if cfg.Outdir == "" {
		return nil, &ConfigurationError{File: fp, Msg: "option 'outdir' missing from section [output]"}
	}
	cfg.RainFile = f.Section("rainfall").Key("file").String()
	if cfg.RainFile == "" {
		return nil, &ConfigurationError{File: fp, Msg: "option 'file' missing from section [rainfall]"}
	}
	cfg.DataFile = f.Section("data").Key("indata").String()
	cfg.PointsFile = f.Section("points").Key("file").String()
	cfg.ObsFile = f.Section("observation").Key("file").String()

	// relative paths resolve against the config file location
	dir := filepath.Dir(fp)
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	cfg.RainFile = rel(cfg.RainFile)
	cfg.DataFile = rel(cfg.DataFile)
	cfg.PointsFile = rel(cfg.PointsFile)
	cfg.ObsFile = rel(cfg.ObsFile)

	if cfg.DataFile == "" {
		ud, err := loadUniform(f, fp)
		if err != nil {
			return nil, err
		}
		cfg.Domain = ud
	}
	return &cfg, nil
}

func loadUniform(f *ini.File, fp string) (*UniformDomain, error) {
	dsec := f.Section("domain")
	psec := f.Section("parameters")
	fail := func(opt, sec string) (*UniformDomain, error) {
		return nil, &ConfigurationError{File: fp, Msg: fmt.Sprintf("option '%s' missing from section [%s] (no prepared data file given)", opt, sec)}
	}

	var ud UniformDomain
	var err error
	if ud.Nr, err = dsec.Key("nr").Int(); err != nil {
		return fail("nr", "domain")
	}
	if ud.Nc, err = dsec.Key("nc").Int(); err != nil {
		return fail("nc", "domain")
	}
	if ud.Dx, err = dsec.Key("dx").Float64(); err != nil {
		return fail("dx", "domain")
	}
	ud.Dy = dsec.Key("dy").MustFloat64(ud.Dx)
	if ud.Slope, err = psec.Key("slope").Float64(); err != nil {
		return fail("slope", "parameters")
	}
	ud.FD = dsec.Key("fd").MustInt(4) // default: due south
	if ud.A, err = psec.Key("X").Float64(); err != nil {
		return fail("X", "parameters")
	}
	if ud.Y, err = psec.Key("Y").Float64(); err != nil {
		return fail("Y", "parameters")
	}
	if ud.B, err = psec.Key("b").Float64(); err != nil {
		return fail("b", "parameters")
	}
	if ud.N, err = psec.Key("n").Float64(); err != nil {
		return fail("n", "parameters")
	}
	if ud.Ret, err = psec.Key("ret").Float64(); err != nil {
		return fail("ret", "parameters")
	}
	if ud.TauCrit, err = psec.Key("tau").Float64(); err != nil {
		return fail("tau", "parameters")
	}
	if ud.VCrit, err = psec.Key("v").Float64(); err != nil {
		return fail("v", "parameters")
	}
	if ud.Ks, err = psec.Key("k").Float64(); err != nil {
		return fail("k", "parameters")
	}
	if ud.S, err = psec.Key("s").Float64(); err != nil {
		return fail("s", "parameters")
	}
	return &ud, nil
}
