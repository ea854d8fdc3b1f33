package model

import (
	"math"

	"github.com/storm-fsv-cvut/smoderp2d-implicit-new-fork/grid"
)

// DeriveAA computes the slope-adjusted sheet resistance coefficient
// aa = a*slope^y for every active cell. No-data a or slope propagates.
func DeriveAA(gd *grid.Definition, a, slope [][]float64, y float64) [][]float64 {
	aa := gd.NullMatrix(gd.Nodata)
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			if a[i][j] == gd.Nodata || slope[i][j] == gd.Nodata {
				continue
			}
			aa[i][j] = a[i][j] * math.Pow(slope[i][j], y)
		}
	}
	return aa
}

// CritWaterLevel computes the adopted critical depth per active cell as the
// minimum of three independent estimates: from critical shear stress, from
// critical velocity and from critical unit discharge (shear*velocity). The
// regime transitions at whichever criterion is reached first. Flat cells get
// hcritFlat; no-data slope or shear yields the sentinel.
func CritWaterLevel(gd *grid.Definition, slope, aa, b, tauCrit, vCrit [][]float64) [][]float64 {
	hc := gd.NullMatrix(gd.Nodata)
	for _, i := range gd.Rows() {
		for _, j := range gd.Cols(i) {
			hc[i][j] = critDepth(slope[i][j], aa[i][j], b[i][j], tauCrit[i][j], vCrit[i][j], gd.Nodata)
		}
	}
	return hc
}

func critDepth(slope, aa, b, tauCrit, vCrit, nodata float64) float64 {
	if slope == nodata || tauCrit == nodata {
		return nodata
	}
	if slope <= 0. {
		return hcritFlat
	}

	// shear criterion: tau = rho*g*h*S
	hTau := tauCrit / (rhoWater * gravAcc * slope)

	// velocity criterion: v = q/h = aa*h^(b-1)
	hVel := hcritFlat
	if aa != nodata && b != nodata && vCrit != nodata && aa > 0. && b > 1.+nearzero {
		hVel = math.Pow(vCrit/aa, 1./(b-1.))
	}

	// flux criterion: q_crit = tau_crit*v_crit/(rho*g*S), q = aa*h^b
	hFlux := hcritFlat
	if aa != nodata && b != nodata && vCrit != nodata && aa > 0. && b > nearzero {
		qCrit := tauCrit * vCrit / (rhoWater * gravAcc * slope)
		hFlux = math.Pow(qCrit/aa, 1./b)
	}

	return math.Min(hTau, math.Min(hVel, hFlux))
}
