package model

const (
	nearzero = 1e-8
	rhoWater = 1000. // [kg/m³]
	gravAcc  = 9.81  // [m/s²]

	// zero-slope cells get a critical depth no event will ever reach;
	// flow on flat ground stays in the sheet regime
	hcritFlat = 1000.

	// rill geometry: rectangular section, width = depth/rillRatio
	rillRatio = .7

	// adaptive stepping
	courant = .5 // kinematic CFL target
	dtmin   = .1 // [s] smallest step the controller will take

	// hydraulic regime per cell; stream cells carry the large offset so a
	// final-state raster distinguishes them at a glance
	stateSheet  = 0
	stateRill   = 1
	stateStream = 1000
)

// Computation types: which hydraulic regimes the run may enter.
const (
	CompSheetOnly  = "sheet_only"
	CompRill       = "rill"
	CompStreamRill = "stream_rill"
)
