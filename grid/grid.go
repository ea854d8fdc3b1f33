package grid

import (
	"fmt"
)

// Definition describes a uniform raster model domain: extent, cell size,
// no-data sentinel and the active-cell region. Immutable once built; the
// engine owns one Definition for the lifetime of a run.
type Definition struct {
	Nrow, Ncol int
	Dx, Dy     float64
	Xll, Yll   float64 // lower-left corner of the grid
	Nodata     float64
	mask       [][]bool
	rr         []int   // rows intersecting the active region
	rc         [][]int // active columns per row, indexed by row
	nact       int
}

// NewDefinition builds a domain definition. A nil mask activates every cell.
func NewDefinition(nrow, ncol int, dx, dy, xll, yll, nodata float64, mask [][]bool) (*Definition, error) {
	if nrow <= 0 || ncol <= 0 {
		return nil, fmt.Errorf("grid.NewDefinition: invalid dimension %d x %d", nrow, ncol)
	}
	if dx <= 0. || dy <= 0. {
		return nil, fmt.Errorf("grid.NewDefinition: invalid cell size %f x %f", dx, dy)
	}
	if mask == nil {
		mask = make([][]bool, nrow)
		for i := range mask {
			mask[i] = make([]bool, ncol)
			for j := range mask[i] {
				mask[i][j] = true
			}
		}
	}
	if len(mask) != nrow {
		return nil, fmt.Errorf("grid.NewDefinition: mask has %d rows, need %d", len(mask), nrow)
	}
	gd := Definition{
		Nrow: nrow, Ncol: ncol,
		Dx: dx, Dy: dy,
		Xll: xll, Yll: yll,
		Nodata: nodata,
	}
	gd.mask = make([][]bool, nrow)
	gd.rc = make([][]int, nrow)
	for i := 0; i < nrow; i++ {
		if len(mask[i]) != ncol {
			return nil, fmt.Errorf("grid.NewDefinition: mask row %d has %d columns, need %d", i, len(mask[i]), ncol)
		}
		gd.mask[i] = make([]bool, ncol)
		copy(gd.mask[i], mask[i])
		var cols []int
		for j := 0; j < ncol; j++ {
			if mask[i][j] {
				cols = append(cols, j)
			}
		}
		if len(cols) > 0 {
			gd.rr = append(gd.rr, i)
			gd.rc[i] = cols
			gd.nact += len(cols)
		}
	}
	if gd.nact == 0 {
		return nil, fmt.Errorf("grid.NewDefinition: no active cells")
	}
	return &gd, nil
}

// Nact returns the number of active cells.
func (gd *Definition) Nact() int { return gd.nact }

// Ncells returns the total cell count, active or not.
func (gd *Definition) Ncells() int { return gd.Nrow * gd.Ncol }

// CellArea returns the plan area of one cell.
func (gd *Definition) CellArea() float64 { return gd.Dx * gd.Dy }

// IsActive reports whether cell (i,j) lies in the active region. Out-of-range
// indices are inactive.
func (gd *Definition) IsActive(i, j int) bool {
	if i < 0 || j < 0 || i >= gd.Nrow || j >= gd.Ncol {
		return false
	}
	return gd.mask[i][j]
}

// Rows returns the ordered rows that intersect the active region.
func (gd *Definition) Rows() []int { return gd.rr }

// Cols returns the ordered active columns of row i.
func (gd *Definition) Cols(i int) []int { return gd.rc[i] }

// Actives returns the ordered (row, col) pairs of the active region,
// row-major.
func (gd *Definition) Actives() [][2]int {
	out := make([][2]int, 0, gd.nact)
	for _, i := range gd.rr {
		for _, j := range gd.rc[i] {
			out = append(out, [2]int{i, j})
		}
	}
	return out
}

// NullMatrix allocates an Nrow x Ncol matrix filled with v.
func (gd *Definition) NullMatrix(v float64) [][]float64 {
	m := make([][]float64, gd.Nrow)
	for i := range m {
		m[i] = make([]float64, gd.Ncol)
		for j := range m[i] {
			m[i][j] = v
		}
	}
	return m
}

// MaskOut returns a copy of m with every cell outside the active region set
// to the no-data sentinel.
func (gd *Definition) MaskOut(m [][]float64) [][]float64 {
	out := gd.NullMatrix(gd.Nodata)
	for _, i := range gd.rr {
		for _, j := range gd.rc[i] {
			out[i][j] = m[i][j]
		}
	}
	return out
}
