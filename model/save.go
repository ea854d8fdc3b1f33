package model

import (
	"encoding/gob"
	"os"

	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

// dpreVersion tags the prepared-domain schema. Bump on any layout change: a
// stale file must fail explicitly, never load silently.
const dpreVersion = 2

// dpreData is the gob schema of a prepared domain, the hand-off between the
// data-preparation phase and the runoff phase.
type dpreData struct {
	Version    int
	Nrow, Ncol int
	Dx, Dy     float64
	Xll, Yll   float64
	Nodata     float64
	Mask       [][]bool

	Slope, A, AA, B, N, Reten, Hcrit, TauCrit, VCrit [][]float64
	FD, InfIdx, Stream                               [][]int

	GroupKS [][2]float64
	Reaches []*Reach
}

// SaveDpre persists the prepared domain (geometry, parameter grids, group
// table, reach definitions) for a later runoff-only invocation.
func SaveDpre(fp string, dom *Domain) error {
	gd, par := dom.GD, dom.Par
	mask := make([][]bool, gd.Nrow)
	for i := range mask {
		mask[i] = make([]bool, gd.Ncol)
		for j := range mask[i] {
			mask[i][j] = gd.IsActive(i, j)
		}
	}
	ks := make([][2]float64, len(dom.Groups.Groups))
	for k, g := range dom.Groups.Groups {
		ks[k] = [2]float64{g.K, g.S}
	}
	reaches := make([]*Reach, 0, len(dom.Net.Reaches))
	for _, r := range dom.Net.Reaches {
		reaches = append(reaches, r)
	}
	d := dpreData{
		Version: dpreVersion,
		Nrow:    gd.Nrow, Ncol: gd.Ncol,
		Dx: gd.Dx, Dy: gd.Dy, Xll: gd.Xll, Yll: gd.Yll,
		Nodata: gd.Nodata, Mask: mask,
		Slope: par.Slope, A: par.A, AA: par.AA, B: par.B, N: par.N,
		Reten: par.Reten, Hcrit: par.Hcrit, TauCrit: par.TauCrit, VCrit: par.VCrit,
		FD: par.FD, InfIdx: par.InfIdx, Stream: par.Stream,
		GroupKS: ks, Reaches: reaches,
	}

	f, err := os.Create(fp)
	if err != nil {
		return dataPrepErrf("saving %s: %v", fp, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(&d); err != nil {
		return dataPrepErrf("saving %s: %v", fp, err)
	}
	return nil
}

// LoadDpre restores a prepared domain and binds it to this run's rainfall
// and settings. A schema-version mismatch fails explicitly.
func LoadDpre(fp string, rain *Rainfall, cfg RunSettings) (*Domain, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, dataPrepErrf("loading %s: %v", fp, err)
	}
	defer f.Close()
	var d dpreData
	if err := gob.NewDecoder(f).Decode(&d); err != nil {
		return nil, dataPrepErrf("loading %s: %v", fp, err)
	}
	if d.Version != dpreVersion {
		return nil, dataPrepErrf("%s: prepared data version %d, engine expects %d; re-run data preparation", fp, d.Version, dpreVersion)
	}

	gd, err := grid.NewDefinition(d.Nrow, d.Ncol, d.Dx, d.Dy, d.Xll, d.Yll, d.Nodata, d.Mask)
	if err != nil {
		return nil, &DataPreparationError{Msg: err.Error()}
	}
	par := &Params{
		Slope: d.Slope, A: d.A, AA: d.AA, B: d.B, N: d.N,
		Reten: d.Reten, Hcrit: d.Hcrit, TauCrit: d.TauCrit, VCrit: d.VCrit,
		FD: d.FD, InfIdx: d.InfIdx, Stream: d.Stream,
	}
	return NewDomain(gd, par, NewInfGroups(d.GroupKS), d.Reaches, rain, cfg)
}
