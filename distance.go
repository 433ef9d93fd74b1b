package clusterpoints

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DistanceOracle measures the length of the segment between two plane
// coordinates. Implementations may be planar or geodesic but must be
// deterministic and symmetric. The engines only ever read from it.
type DistanceOracle interface {
	Measure(a, b r2.Vec) float64
}

// OracleFunc adapts a plain function into a DistanceOracle.
type OracleFunc func(a, b r2.Vec) float64

func (f OracleFunc) Measure(a, b r2.Vec) float64 { return f(a, b) }

// PlanarOracle measures straight-line Cartesian length in the plane.
type PlanarOracle struct{}

func (PlanarOracle) Measure(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// DistanceType selects how the planar leg of the metric is computed.
type DistanceType string

const (
	DistanceEuclidean DistanceType = "euclidean"
	DistanceManhattan DistanceType = "manhattan"
)

// Metric blends planar distance with attribute distance.
//
// In Euclidean mode the distance is
//
//	(1 - 0.01·pz)·planar(a,b) + 0.01·pz·|a.Z - b.Z|
//
// In Manhattan mode the planar leg is the sum of the four axis-aligned legs
// from both endpoints to the two corner points (b.X, a.Y) and (a.X, b.Y).
// Measuring from both ends evens out any asymmetry of the oracle on curved
// or projected surfaces. The sum is about twice a plain Manhattan distance,
// so the attribute term is doubled too:
//
//	(1 - 0.01·pz)·(four legs) + 2·0.01·pz·|a.Z - b.Z|
//
// Z values must already be standardized (see Standardize).
type Metric struct {
	// Oracle measures planar segment lengths. Nil means PlanarOracle.
	Oracle DistanceOracle

	// AttributePercent is the blend weight pz in [0, 100]. With 0 the
	// metric is pure planar distance.
	AttributePercent float64

	// Manhattan selects the four-leg planar estimate.
	Manhattan bool
}

// NewMetric builds a Metric for the given distance type.
func NewMetric(oracle DistanceOracle, distanceType DistanceType, attributePercent float64) Metric {
	return Metric{
		Oracle:           oracle,
		AttributePercent: attributePercent,
		Manhattan:        distanceType == DistanceManhattan,
	}
}

func (m Metric) oracle() DistanceOracle {
	if m.Oracle == nil {
		return PlanarOracle{}
	}
	return m.Oracle
}

// Distance returns the blended distance between a and b.
func (m Metric) Distance(a, b Point) float64 {
	o := m.oracle()
	pa, pb := a.XY(), b.XY()
	if m.Manhattan {
		legs := o.Measure(pa, r2.Vec{X: pb.X, Y: pa.Y}) +
			o.Measure(pa, r2.Vec{X: pa.X, Y: pb.Y}) +
			o.Measure(pb, r2.Vec{X: pb.X, Y: pa.Y}) +
			o.Measure(pb, r2.Vec{X: pa.X, Y: pb.Y})
		return (1-0.01*m.AttributePercent)*legs + 2*0.01*m.AttributePercent*math.Abs(a.Z-b.Z)
	}
	return (1-0.01*m.AttributePercent)*o.Measure(pa, pb) + 0.01*m.AttributePercent*math.Abs(a.Z-b.Z)
}
