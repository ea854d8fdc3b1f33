package model

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/maseology/mmio"
)

// WriteOutputs writes the finalized results under dir: core rasters at the
// root, control rasters under control/, the reach table as temp/stream.csv
// and one .mon hydrograph per monitor point. Nothing is written for an
// aborted run; the caller only gets here with complete Results.
func (dom *Domain) WriteOutputs(dir string, res *Results) error {
	mmio.MakeDir(dir)
	mmio.MakeDir(filepath.Join(dir, "control"))

	names := make([]string, 0, len(res.Rasters))
	for nam := range res.Rasters {
		names = append(names, nam)
	}
	sort.Strings(names)
	for _, nam := range names {
		fp := filepath.Join(dir, nam+".asc")
		if res.Category[nam] == CatControl {
			fp = filepath.Join(dir, "control", nam+".asc")
		}
		if err := dom.writeAsc(fp, res.Rasters[nam]); err != nil {
			return err
		}
		if dom.Cfg.Verbose {
			logRasterStats(fp, res.Rasters[nam], dom.GD.Nodata)
		}
	}

	if len(res.Reaches) > 0 {
		mmio.MakeDir(filepath.Join(dir, "temp"))
		if err := writeReachTable(filepath.Join(dir, "temp", "stream.csv"), res.Reaches); err != nil {
			return err
		}
	}

	for k := range dom.Moniton {
		dom.Moniton[k].print(dir)
	}
	WaitMonitors()
	return nil
}

// writeAsc writes an ESRI ASCII grid.
func (dom *Domain) writeAsc(fp string, m [][]float64) error {
	gd := dom.GD
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf("writeAsc: %w", err)
	}
	defer f.Close()
	fmt.Fprintf(f, "ncols %d\n", gd.Ncol)
	fmt.Fprintf(f, "nrows %d\n", gd.Nrow)
	fmt.Fprintf(f, "xllcorner %f\n", gd.Xll)
	fmt.Fprintf(f, "yllcorner %f\n", gd.Yll)
	fmt.Fprintf(f, "cellsize %f\n", gd.Dx)
	fmt.Fprintf(f, "NODATA_value %g\n", gd.Nodata)
	for i := 0; i < gd.Nrow; i++ {
		for j := 0; j < gd.Ncol; j++ {
			if j > 0 {
				fmt.Fprint(f, " ")
			}
			fmt.Fprintf(f, "%.6e", m[i][j])
		}
		fmt.Fprintln(f)
	}
	return nil
}

func writeReachTable(fp string, tbl []ReachRecord) error {
	csvw := mmio.NewCSVwriter(fp)
	defer csvw.Close()
	if err := csvw.WriteHead("FID,b_m,m__,rough_s_m1_3,q365_m3_s,V_out_cum_m3,Q_max_m3_s"); err != nil {
		return fmt.Errorf("writeReachTable: %w", err)
	}
	for _, r := range tbl {
		csvw.WriteLine(r.FID, r.B, r.M, r.Roughness, r.Q365, r.VolOutCum, r.QMax)
	}
	return nil
}

func logRasterStats(fp string, m [][]float64, nodata float64) {
	mn, mx, sum, n := 0., 0., 0., 0
	for i := range m {
		for _, v := range m[i] {
			if v == nodata {
				continue
			}
			if n == 0 || v < mn {
				mn = v
			}
			if n == 0 || v > mx {
				mx = v
			}
			sum += v
			n++
		}
	}
	if n == 0 {
		log.Printf("raster %s saved (all nodata)", fp)
		return
	}
	log.Printf("raster %s saved: min=%.3f max=%.3f mean=%.3f", fp, mn, mx, sum/float64(n))
}
