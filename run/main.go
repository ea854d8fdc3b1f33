package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/maseology/mmio"

	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/config"
	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/model"
)

func main() {
	cfgfp := flag.String("cfg", "", "run configuration (ini)")
	savefp := flag.String("save", "", "save the prepared domain here and exit")
	quiet := flag.Bool("quiet", false, "suppress the progress bar")
	flag.Parse()
	if *cfgfp == "" {
		fmt.Fprintln(os.Stderr, "usage: run -cfg <config.ini> [-save <domain.gob>] [-quiet]")
		os.Exit(2)
	}

	fmt.Println("")
	tt := mmio.NewTimer()

	cfg, err := config.Load(*cfgfp)
	if err != nil {
		fail(err)
	}

	rain, err := model.LoadRainfall(cfg.RainFile)
	if err != nil {
		fail(err)
	}

	rs := model.RunSettings{
		EndTime:  cfg.EndTime,
		MaxDt:    cfg.MaxDt,
		Mfda:     cfg.Mfda,
		TypeComp: cfg.TypeComp,
		Verbose:  cfg.ExtraOut,
	}
	var dom *model.Domain
	if cfg.DataFile != "" {
		dom, err = model.LoadDpre(cfg.DataFile, rain, rs)
	} else {
		dom, err = model.NewUniformDomain(model.UniformParams{
			Nr: cfg.Domain.Nr, Nc: cfg.Domain.Nc,
			Dx: cfg.Domain.Dx, Dy: cfg.Domain.Dy,
			Slope: cfg.Domain.Slope, FD: cfg.Domain.FD,
			A: cfg.Domain.A, Y: cfg.Domain.Y, B: cfg.Domain.B, N: cfg.Domain.N,
			RetMM: cfg.Domain.Ret, TauCrit: cfg.Domain.TauCrit, VCrit: cfg.Domain.VCrit,
			Ks: cfg.Domain.Ks, S: cfg.Domain.S,
		}, rain, rs)
	}
	if err != nil {
		fail(err)
	}
	tt.Print("domain load complete")

	if *savefp != "" {
		if err := model.SaveDpre(*savefp, dom); err != nil {
			fail(err)
		}
		fmt.Printf(" prepared domain saved to %s\n", *savefp)
		return
	}

	if cfg.PointsFile != "" {
		mons, err := model.LoadPoints(cfg.PointsFile, dom.GD)
		if err != nil {
			fail(err)
		}
		dom.Moniton = mons
	}

	tok := model.NewToken()
	type runout struct {
		res *model.Results
		err error
	}
	done := make(chan runout, 1)
	go func() {
		res, err := dom.Run(tok)
		done <- runout{res, err}
	}()

	var out runout
	if *quiet {
		out = <-done
	} else {
		uiprogress.Start()
		bar := uiprogress.AddBar(100).AppendCompleted()
	poll:
		for {
			select {
			case out = <-done:
				break poll
			case <-time.After(200 * time.Millisecond):
				bar.Set(int(tok.Progress()))
			}
		}
		bar.Set(int(tok.Progress()))
		uiprogress.Stop()
	}
	if out.err != nil {
		fail(out.err)
	}

	if err := dom.WriteOutputs(cfg.Outdir, out.res); err != nil {
		fail(err)
	}
	if cfg.ObsFile != "" {
		obsT, obsQ, err := model.LoadObservation(cfg.ObsFile)
		if err != nil {
			fail(err)
		}
		fit, err := out.res.Fit(obsT, obsQ)
		if err != nil {
			fail(err)
		}
		fmt.Printf(" fit to %s: KGE %.3f  NSE %.3f  RMSE %.4f  bias %.3f\n",
			cfg.ObsFile, fit.KGE, fit.NSE, fit.RMSE, fit.Bias)
	}

	tt.Lap(fmt.Sprintf("run complete: %d steps, outputs in %s", out.res.Nstep, cfg.Outdir))
}

// fail reports the error and exits with a code identifying its class.
func fail(err error) {
	log.Println(err)
	var cfgErr *config.ConfigurationError
	var prepErr *model.DataPreparationError
	var negErr *model.NegativeWaterLevel
	var conErr *model.ConsistencyError
	switch {
	case errors.As(err, &cfgErr):
		os.Exit(2)
	case errors.As(err, &prepErr):
		os.Exit(3)
	case errors.Is(err, model.ErrComputationAborted):
		os.Exit(4)
	case errors.As(err, &negErr), errors.As(err, &conErr):
		os.Exit(5)
	}
	os.Exit(1)
}
