package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wroge/wgs84"
)

// World space is Y-up: X is easting, Y is elevation and Z is northing.
// Geographic input is projected to EPSG:3857 metres so that distances along a
// path are roughly metric near the origin.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParseVec parses a string in the format "x,y" or "x,y,z" into a vector.
// A missing z is zero.
func ParseVec(coords string) (mgl64.Vec3, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 || len(coordsSplit) > 3 {
		return mgl64.Vec3{}, ErrInvalidCoordinates
	}
	var v mgl64.Vec3
	for i, part := range coordsSplit {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return mgl64.Vec3{}, ErrInvalidCoordinates
		}
		v[i] = f
	}
	return v, nil
}

// ProjectWGS84 converts [longitude, latitude] or [longitude, latitude,
// elevation] triples to world positions relative to the first coordinate.
func ProjectWGS84(coords [][]float64) ([]mgl64.Vec3, error) {
	if len(coords) == 0 {
		return nil, nil
	}

	transform := wgs84.EPSG().Transform(4326, 3857)

	points := make([]mgl64.Vec3, len(coords))
	var originX, originY float64
	for i, c := range coords {
		if len(c) < 2 || len(c) > 3 {
			return nil, fmt.Errorf("coordinate %d: %w", i, ErrInvalidCoordinates)
		}
		lon, lat := c[0], c[1]
		if math.Abs(lon) > 180 || math.Abs(lat) >= 90 {
			return nil, fmt.Errorf("coordinate %d (%g, %g): %w", i, lon, lat, ErrInvalidCoordinates)
		}
		var elev float64
		if len(c) == 3 {
			elev = c[2]
		}

		x, y, _ := transform(lon, lat, 0)
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("coordinate %d does not project: %w", i, ErrInvalidCoordinates)
		}
		if i == 0 {
			originX, originY = x, y
		}
		points[i] = mgl64.Vec3{x - originX, elev, y - originY}
	}
	return points, nil
}
