// Package pathway implements the tube-shaped corridors followed by the path
// behaviours. A Polyline is immutable once built and may be queried from any
// number of goroutines.
package pathway

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/steerlab/steering/pkg/vecmath"
)

// ErrInvalidPath is returned when a polyline cannot be built from its inputs.
var ErrInvalidPath = errors.New("invalid pathway")

// PathPoint is the result of mapping an arbitrary point onto a pathway.
// Outside is negative when the point lies inside the tube.
type PathPoint struct {
	OnPath  mgl64.Vec3
	Tangent mgl64.Vec3
	Outside float64
}

// Pathway is the query surface the path behaviours need.
type Pathway interface {
	MapPointToPath(point mgl64.Vec3) PathPoint
	MapPointToPathDistance(point mgl64.Vec3) float64
	MapPathDistanceToPoint(pathDistance float64) mgl64.Vec3
	IsInsidePath(point mgl64.Vec3) bool
	HowFarOutsidePath(point mgl64.Vec3) float64
}

// SegmentProjection describes the nearest point on a segment.
// Projection is the distance from the segment start to Nearest, clamped to
// the segment.
type SegmentProjection struct {
	Distance   float64
	Projection float64
	Nearest    mgl64.Vec3
}

// Polyline is a series of segments between control points, thickened by Radius.
// When cyclic, the last segment closes back onto the first point.
type Polyline struct {
	points      []mgl64.Vec3
	lengths     []float64    // lengths[0] unused
	normals     []mgl64.Vec3 // normals[0] unused
	radius      float64
	cyclic      bool
	totalLength float64
}

var _ Pathway = (*Polyline)(nil)

// New builds a polyline from the first pointCount points.
func New(pointCount int, points []mgl64.Vec3, radius float64, cyclic bool) (*Polyline, error) {
	if pointCount < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidPath, pointCount)
	}
	if pointCount > len(points) {
		return nil, fmt.Errorf("%w: point count %d exceeds %d supplied points", ErrInvalidPath, pointCount, len(points))
	}
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: radius %v", ErrInvalidPath, radius)
	}

	n := pointCount
	if cyclic {
		n++
	}

	p := &Polyline{
		points:  make([]mgl64.Vec3, n),
		lengths: make([]float64, n),
		normals: make([]mgl64.Vec3, n),
		radius:  radius,
		cyclic:  cyclic,
	}

	for i := 0; i < n; i++ {
		j := i
		if cyclic && i == n-1 {
			j = 0
		}
		p.points[i] = points[j]

		if i == 0 {
			continue
		}
		seg := p.points[i].Sub(p.points[i-1])
		length := seg.Len()
		if length == 0 {
			return nil, fmt.Errorf("%w: segment %d has zero length", ErrInvalidPath, i)
		}
		p.lengths[i] = length
		p.normals[i] = seg.Mul(1 / length)
		p.totalLength += length
	}

	return p, nil
}

// Radius is the tube thickness.
func (p *Polyline) Radius() float64 { return p.radius }

// Cyclic reports whether the path closes on itself.
func (p *Polyline) Cyclic() bool { return p.cyclic }

// TotalLength is the sum of all segment lengths, including the closing one.
func (p *Polyline) TotalLength() float64 { return p.totalLength }

// SegmentCount is the number of segments, including the closing one.
func (p *Polyline) SegmentCount() int { return len(p.points) - 1 }

// Points returns a copy of the control points without the implicit closing point.
func (p *Polyline) Points() []mgl64.Vec3 {
	n := len(p.points)
	if p.cyclic {
		n--
	}
	out := make([]mgl64.Vec3, n)
	copy(out, p.points[:n])
	return out
}

// PointToSegmentDistance finds the point on segment ep0-ep1 nearest to point.
func PointToSegmentDistance(point, ep0, ep1 mgl64.Vec3) SegmentProjection {
	seg := ep1.Sub(ep0)
	length := seg.Len()
	if length == 0 {
		return SegmentProjection{Distance: vecmath.Distance(point, ep0), Nearest: ep0}
	}
	return projectOntoSegment(point, ep0, ep1, seg.Mul(1/length), length)
}

func projectOntoSegment(point, ep0, ep1, normal mgl64.Vec3, length float64) SegmentProjection {
	projection := normal.Dot(point.Sub(ep0))

	if projection < 0 {
		return SegmentProjection{Distance: vecmath.Distance(point, ep0), Projection: 0, Nearest: ep0}
	}
	if projection > length {
		return SegmentProjection{Distance: vecmath.Distance(point, ep1), Projection: length, Nearest: ep1}
	}

	nearest := ep0.Add(normal.Mul(projection))
	return SegmentProjection{Distance: vecmath.Distance(point, nearest), Projection: projection, Nearest: nearest}
}

func (p *Polyline) segment(i int, point mgl64.Vec3) SegmentProjection {
	return projectOntoSegment(point, p.points[i-1], p.points[i], p.normals[i], p.lengths[i])
}

// MapPointToPath returns the nearest point on the centerline, the tangent
// there and how far point lies outside the tube. On exact ties the earliest
// segment wins.
func (p *Polyline) MapPointToPath(point mgl64.Vec3) PathPoint {
	minDistance := math.MaxFloat64
	var result PathPoint

	for i := 1; i < len(p.points); i++ {
		s := p.segment(i, point)
		if s.Distance < minDistance {
			minDistance = s.Distance
			result.OnPath = s.Nearest
			result.Tangent = p.normals[i]
		}
	}

	result.Outside = vecmath.Distance(result.OnPath, point) - p.radius
	return result
}

// MapPointToPathDistance converts point to a distance along the path.
func (p *Polyline) MapPointToPathDistance(point mgl64.Vec3) float64 {
	minDistance := math.MaxFloat64
	segmentLengthTotal := 0.0
	pathDistance := 0.0

	for i := 1; i < len(p.points); i++ {
		s := p.segment(i, point)
		if s.Distance < minDistance {
			minDistance = s.Distance
			pathDistance = segmentLengthTotal + s.Projection
		}
		segmentLengthTotal += p.lengths[i]
	}

	return pathDistance
}

// MapPathDistanceToPoint converts a distance along the path to a point on it.
// Cyclic paths wrap the distance; linear paths clamp to their end points.
func (p *Polyline) MapPathDistanceToPoint(pathDistance float64) mgl64.Vec3 {
	remaining := pathDistance
	if p.cyclic {
		remaining = math.Mod(pathDistance, p.totalLength)
		if remaining < 0 {
			remaining += p.totalLength
		}
	} else {
		if pathDistance < 0 {
			return p.points[0]
		}
		if pathDistance >= p.totalLength {
			return p.points[len(p.points)-1]
		}
	}

	for i := 1; i < len(p.points); i++ {
		length := p.lengths[i]
		if length < remaining {
			remaining -= length
			continue
		}
		return vecmath.Interpolate(remaining/length, p.points[i-1], p.points[i])
	}

	// Rounding left a sliver past the final segment.
	return p.points[len(p.points)-1]
}

// IsInsidePath reports whether point lies inside the tube.
func (p *Polyline) IsInsidePath(point mgl64.Vec3) bool {
	return p.MapPointToPath(point).Outside < 0
}

// HowFarOutsidePath is negative inside the tube.
func (p *Polyline) HowFarOutsidePath(point mgl64.Vec3) float64 {
	return p.MapPointToPath(point).Outside
}
