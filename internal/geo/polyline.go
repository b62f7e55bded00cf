package geo

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePolyline parses a JSON array of coordinates into points.
// Input format: "[[x1,y1,z1],[x2,y2,z2],...]"; a missing z is zero.
func ParsePolyline(input string) ([]mgl64.Vec3, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}
	return PointsFromArrays(coords)
}

// PointsFromArrays converts [x,y] or [x,y,z] arrays into points.
func PointsFromArrays(coords [][]float64) ([]mgl64.Vec3, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("polyline must have at least 2 points, got %d", len(coords))
	}

	points := make([]mgl64.Vec3, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 || len(coord) > 3 {
			return nil, fmt.Errorf("coordinate %d has %d values: %w", i, len(coord), ErrInvalidCoordinates)
		}
		copy(points[i][:], coord)
	}
	return points, nil
}

// ToLineString builds a 3D line string from points. The WKT plane is the
// ground plane: each point is written as (easting, northing, elevation),
// that is (x, z, y) in world space.
func ToLineString(points []mgl64.Vec3) geom.LineString {
	flatCoords := make([]float64, 0, len(points)*3)
	for _, p := range points {
		flatCoords = append(flatCoords, p[0], p[2], p[1])
	}
	seq := geom.NewSequence(flatCoords, geom.DimXYZ)
	return geom.NewLineString(seq)
}

// WKT renders points as a "LINESTRING Z" well-known-text string.
func WKT(points []mgl64.Vec3) string {
	return ToLineString(points).AsText()
}

// ParseWKT reads a LINESTRING (2D or Z) into points. Coordinates are
// (easting, northing[, elevation]), the same order ToLineString writes.
func ParseWKT(wkt string) ([]mgl64.Vec3, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse WKT: %w", err)
	}
	ls, ok := g.AsLineString()
	if !ok {
		return nil, fmt.Errorf("expected LINESTRING, got %s", g.Type())
	}

	seq := ls.Coordinates()
	n := seq.Length()
	if n < 2 {
		return nil, fmt.Errorf("polyline must have at least 2 points, got %d", n)
	}

	points := make([]mgl64.Vec3, n)
	for i := 0; i < n; i++ {
		c := seq.Get(i)
		points[i] = mgl64.Vec3{c.X, c.Z, c.Y}
	}
	return points, nil
}
