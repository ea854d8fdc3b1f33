package grid

import (
	"fmt"

	ghgrid "github.com/maseology/goHydro/grid"
)

// FromGDEF imports a goHydro grid definition file (*.gdef) and converts it to
// an engine Definition. GDEF active cells are row-major cell ids.
func FromGDEF(fp string, nodata float64) (*Definition, error) {
	gd, err := ghgrid.ReadGDEF(fp, true)
	if err != nil {
		return nil, fmt.Errorf("grid.FromGDEF: %w", err)
	}
	if len(gd.Sactives) == 0 {
		return nil, fmt.Errorf("grid.FromGDEF: %s has no active cells", fp)
	}
	nr, nc := gd.Nrow, gd.Ncol
	mask := make([][]bool, nr)
	for i := range mask {
		mask[i] = make([]bool, nc)
	}
	for _, cid := range gd.Sactives {
		if cid < 0 || cid >= nr*nc {
			return nil, fmt.Errorf("grid.FromGDEF: cell id %d out of range", cid)
		}
		mask[cid/nc][cid%nc] = true
	}
	return NewDefinition(nr, nc, gd.Cwidth, gd.Cwidth, gd.Eorig, gd.Norig-float64(nr)*gd.Cwidth, nodata, mask)
}
