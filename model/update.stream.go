package model

import (
	"math"

	"github.com/maseology/mmaths/topology"
)

// Reach is one discretized channel segment: trapezoidal section of bottom
// width B and side slope M, Manning-type roughness, baseflow Q365. The
// cumulative outflow volume and peak discharge are carried per component cell
// so the result table can verify they reduce to a single scalar.
type Reach struct {
	ID        int
	B         float64 // bottom width [m]
	M         float64 // side slope [-]
	Roughness float64 // Manning n
	Q365      float64 // baseflow [m³/s]
	Slope     float64 // longitudinal gradient [-]
	Length    float64 // [m]
	DownID    int     // downstream reach id; -1 = network outlet

	Vol       float64   // stored volume [m³]
	VolOutCum []float64 // cumulative outflow volume per component cell [m³]
	QMax      []float64 // peak discharge per component cell [m³/s]

	latIn float64 // lateral inflow gathered during the current step [m³]
	lastQ float64 // discharge of the last routed step [m³/s]
}

// NewReach builds a reach spanning ncells grid cells.
func NewReach(id int, b, m, roughness, q365, slope, length float64, downID, ncells int) *Reach {
	if ncells < 1 {
		ncells = 1
	}
	return &Reach{
		ID: id, B: b, M: m, Roughness: roughness, Q365: q365,
		Slope: slope, Length: length, DownID: downID,
		VolOutCum: make([]float64, ncells),
		QMax:      make([]float64, ncells),
	}
}

// stage returns the trapezoidal flow depth holding volume v over the reach
// length.
func (r *Reach) stage(v float64) float64 {
	if v <= 0. {
		return 0.
	}
	a := v / r.Length
	if r.M <= nearzero {
		return a / r.B // rectangular section
	}
	// (B + M*h)*h = A
	return (-r.B + math.Sqrt(r.B*r.B+4.*r.M*a)) / (2. * r.M)
}

// discharge evaluates the Manning relation at depth h.
func (r *Reach) discharge(h float64) float64 {
	if h <= 0. || r.Slope <= 0. || r.Roughness <= 0. {
		return 0.
	}
	a := (r.B + r.M*h) * h
	p := r.B + 2.*h*math.Sqrt(1.+r.M*r.M)
	return a / r.Roughness * math.Pow(a/p, 2./3.) * math.Sqrt(r.Slope)
}

// route advances the reach one step: stored volume takes this step's lateral
// inflow and baseflow, outflow follows the stage-discharge relation, bounded
// by what is stored. Every component cell records the same cumulative value.
func (r *Reach) route(dt float64) (outVol float64) {
	r.Vol += r.latIn + r.Q365*dt
	r.latIn = 0.

	q := r.discharge(r.stage(r.Vol))
	outVol = q * dt
	if outVol > r.Vol {
		outVol = r.Vol
		q = outVol / dt
	}
	r.Vol -= outVol
	r.lastQ = q

	for k := range r.VolOutCum {
		r.VolOutCum[k] += outVol
		if q > r.QMax[k] {
			r.QMax[k] = q
		}
	}
	return outVol
}

// StreamNet owns the reaches of a run and the step ordering. Reaches are
// routed upstream-to-downstream so a routed network drains within one step.
type StreamNet struct {
	Reaches map[int]*Reach
	order   []int

	stepLateral float64 // lateral inflow received during the current step [m³]
	outVol      float64 // cumulative volume leaving the network outlet(s) [m³]
}

// NewStreamNet indexes the reaches and resolves the topological routing
// order from the downstream links.
func NewStreamNet(reaches []*Reach) (*StreamNet, error) {
	net := StreamNet{Reaches: make(map[int]*Reach, len(reaches))}
	if len(reaches) == 0 {
		return &net, nil
	}
	ft := make(map[int]int, len(reaches))
	for _, r := range reaches {
		if r.ID <= 0 {
			return nil, dataPrepErrf("reach id %d must be positive", r.ID)
		}
		if _, ok := net.Reaches[r.ID]; ok {
			return nil, dataPrepErrf("duplicate reach id %d", r.ID)
		}
		if r.B <= 0. || r.Length <= 0. || r.Roughness <= 0. {
			return nil, dataPrepErrf("reach %d: nonpositive geometry or roughness", r.ID)
		}
		net.Reaches[r.ID] = r
		ft[r.ID] = r.DownID
	}
	for _, r := range reaches {
		if r.DownID != -1 {
			if _, ok := net.Reaches[r.DownID]; !ok {
				return nil, dataPrepErrf("reach %d drains to unknown reach %d", r.ID, r.DownID)
			}
		}
	}
	net.order = topology.OrderFromToTree(ft, -1)
	return &net, nil
}

// addLateral queues lateral inflow volume for reach id, to be taken at the
// next route call.
func (net *StreamNet) addLateral(id int, vol float64) {
	if r, ok := net.Reaches[id]; ok {
		r.latIn += vol
		net.stepLateral += vol
	}
}

// beginStep clears the per-step lateral inflow tally.
func (net *StreamNet) beginStep() { net.stepLateral = 0. }

// LateralIn returns the lateral inflow volume received since beginStep.
func (net *StreamNet) LateralIn() float64 { return net.stepLateral }

// step routes every reach in topological order; outflow of an upstream reach
// becomes lateral inflow of its downstream neighbor within the same step.
func (net *StreamNet) step(dt float64) {
	for _, id := range net.order {
		r := net.Reaches[id]
		out := r.route(dt)
		if r.DownID == -1 {
			net.outVol += out
		} else {
			net.Reaches[r.DownID].latIn += out
		}
	}
}
