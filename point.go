package clusterpoints

import (
	"math"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Point is a clusterable location. ID is the caller's stable key, X and Y
// are plane coordinates and Z is the standardized attribute value (zero when
// no attribute contributes to the distance).
type Point struct {
	ID   int64
	X, Y float64
	Z    float64
}

// XY returns the plane coordinates of p.
func (p Point) XY() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Observation is a raw input record before preparation. Attr is only read
// when HasAttr is set; a record without a usable attribute value is dropped
// when the attribute contributes to the distance.
type Observation struct {
	ID      int64
	X, Y    float64
	Attr    float64
	HasAttr bool
}

// Prepare turns observations into points for a run with cfg. It returns the
// effective attribute percentage, which is reset to zero when no attribute
// field is configured. Z values are raw; call Standardize before clustering
// when the returned percentage is positive.
func Prepare(obs []Observation, cfg Config, logger *zap.Logger) ([]Point, float64, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pz := cfg.AttributePercent
	if pz > 0 && cfg.AttributeField == "" {
		logger.Info("setting percentage attribute contribution to zero", zap.Float64("attribute_percent", pz))
		pz = 0
	}

	points := make([]Point, 0, len(obs))
	dropped := 0
	for _, o := range obs {
		p := Point{ID: o.ID, X: o.X, Y: o.Y}
		if pz > 0 {
			if !o.HasAttr || math.IsNaN(o.Attr) || math.IsInf(o.Attr, 0) {
				dropped++
				continue
			}
			p.Z = o.Attr
		}
		points = append(points, p)
	}
	if dropped > 0 {
		logger.Info("dropped points without attribute value",
			zap.Int("dropped", dropped), zap.String("field", cfg.AttributeField))
	}

	if cfg.Clusters > len(points) {
		return nil, 0, markConfig(errors.Wrapf(ErrTooFewPoints,
			"%d valid points available for %d clusters", len(points), cfg.Clusters))
	}
	return points, pz, nil
}

// Standardize rescales the Z values of points in place so that their spread
// matches the spread of the spatial distances: z' = (z - mean(z))·sd(s)/sd(z).
// In Euclidean mode s is each point's distance to the coordinate mean, in
// Manhattan mode it is x + y - mean(x) - mean(y). Both deviations are the
// unbiased sample estimates.
func Standardize(points []Point, manhattan bool) error {
	if len(points) < 2 {
		return markConfig(errors.Wrapf(ErrTooFewPoints, "standardizing needs at least 2 points, got %d", len(points)))
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	zs := make([]float64, len(points))
	constant := true
	for i, p := range points {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
		if p.Z != points[0].Z {
			constant = false
		}
	}
	if constant {
		return markConfig(errors.WithStack(ErrConstantAttribute))
	}

	xmean, ymean := stat.Mean(xs, nil), stat.Mean(ys, nil)
	spread := make([]float64, len(points))
	for i := range points {
		if manhattan {
			spread[i] = xs[i] + ys[i] - xmean - ymean
		} else {
			spread[i] = math.Sqrt((xs[i]-xmean)*(xs[i]-xmean) + (ys[i]-ymean)*(ys[i]-ymean))
		}
	}

	factor := stat.StdDev(spread, nil) / stat.StdDev(zs, nil)
	zcenter := stat.Mean(zs, nil)
	for i := range points {
		points[i].Z = (points[i].Z - zcenter) * factor
	}
	return nil
}
