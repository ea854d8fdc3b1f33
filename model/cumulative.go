package model

import (
	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

// Output categories: core rasters are the primary results, control rasters
// are diagnostics written to the control subdirectory.
const (
	CatCore    = "core"
	CatControl = "control"
)

// OutputDef tags a cumulative field with its output name and target category.
type OutputDef struct {
	Name     string
	Category string
}

// Cumulative time-integrates the fluxes of a run. Created at run start,
// mutated once per step by the routers, finalized once at run end.
type Cumulative struct {
	// core
	Infiltration  [][]float64 // cumulative infiltrated depth [m]
	Precipitation [][]float64 // cumulative gross rainfall [m]
	VSheet        [][]float64 // peak sheet velocity [m/s] (finalized)
	ShearSheet    [][]float64 // peak sheet shear stress [Pa] (finalized)
	QSurTot       [][]float64 // peak total discharge [m³/s]
	VolSurTot     [][]float64 // cumulative outflow volume [m³]

	// control
	HSurTot   [][]float64 // peak total water level [m]
	QSheetTot [][]float64 // peak sheet discharge [m³/s]
	VolSheet  [][]float64 // cumulative sheet outflow volume [m³]
	HRill     [][]float64 // peak rill depth [m]
	QRillTot  [][]float64 // peak rill discharge [m³/s]
	VolRill   [][]float64 // cumulative rill outflow volume [m³]
	BRill     [][]float64 // peak rill width [m]
	InflowSur [][]float64 // cumulative run-on volume from upslope [m³]
	SurRet    [][]float64 // cumulative surface retention [m]

	hSheetMax [][]float64 // helper for VSheet/ShearSheet finalization
	qSheetMax [][]float64
}

// NewCumulative allocates zeroed accumulators for gd.
func NewCumulative(gd *grid.Definition) *Cumulative {
	z := func() [][]float64 { return gd.NullMatrix(0.) }
	return &Cumulative{
		Infiltration: z(), Precipitation: z(), VSheet: z(), ShearSheet: z(),
		QSurTot: z(), VolSurTot: z(),
		HSurTot: z(), QSheetTot: z(), VolSheet: z(), HRill: z(), QRillTot: z(),
		VolRill: z(), BRill: z(), InflowSur: z(), SurRet: z(),
		hSheetMax: z(), qSheetMax: z(),
	}
}

// Fields enumerates the output rasters in their write order.
func (c *Cumulative) Fields() []struct {
	Def OutputDef
	M   [][]float64
} {
	return []struct {
		Def OutputDef
		M   [][]float64
	}{
		{OutputDef{"infiltration", CatCore}, c.Infiltration},
		{OutputDef{"precipitation", CatCore}, c.Precipitation},
		{OutputDef{"v_sheet", CatCore}, c.VSheet},
		{OutputDef{"shear_sheet", CatCore}, c.ShearSheet},
		{OutputDef{"q_sur_tot", CatCore}, c.QSurTot},
		{OutputDef{"vol_sur_tot", CatCore}, c.VolSurTot},
		{OutputDef{"h_sur_tot", CatControl}, c.HSurTot},
		{OutputDef{"q_sheet_tot", CatControl}, c.QSheetTot},
		{OutputDef{"vol_sheet", CatControl}, c.VolSheet},
		{OutputDef{"h_rill", CatControl}, c.HRill},
		{OutputDef{"q_rill_tot", CatControl}, c.QRillTot},
		{OutputDef{"vol_rill", CatControl}, c.VolRill},
		{OutputDef{"b_rill", CatControl}, c.BRill},
		{OutputDef{"inflow_sur", CatControl}, c.InflowSur},
		{OutputDef{"sur_ret", CatControl}, c.SurRet},
	}
}

// finalize derives peak sheet velocity and shear stress from the recorded
// depth and discharge maxima.
func (c *Cumulative) finalize(gd *grid.Definition, slope [][]float64, flowWidth float64) {
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			h := c.hSheetMax[i][j]
			if h <= 0. {
				continue
			}
			c.VSheet[i][j] = c.qSheetMax[i][j] / flowWidth / h
			if s := slope[i][j]; s != gd.Nodata && s > 0. {
				c.ShearSheet[i][j] = rhoWater * gravAcc * h * s
			}
		}
	}
}
