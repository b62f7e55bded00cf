package geo

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolyline_Valid(t *testing.T) {
	input := "[[100.5,200.25,1],[300.75,400.5],[500,600,2]]"
	points, err := ParsePolyline(input)

	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, mgl64.Vec3{100.5, 200.25, 1}, points[0])
	assert.Equal(t, mgl64.Vec3{300.75, 400.5, 0}, points[1])
	assert.Equal(t, mgl64.Vec3{500, 600, 2}, points[2])
}

func TestParsePolyline_InvalidJSON(t *testing.T) {
	_, err := ParsePolyline("not valid json")
	require.Error(t, err)
}

func TestParsePolyline_TooFewPoints(t *testing.T) {
	_, err := ParsePolyline("[[100,200]]")
	require.Error(t, err)
}

func TestParsePolyline_InsufficientCoordinates(t *testing.T) {
	_, err := ParsePolyline("[[100],[200,300]]")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
}

func TestWKT_RoundTrip(t *testing.T) {
	points := []mgl64.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 2.5, 10}}

	wkt := WKT(points)
	assert.True(t, strings.HasPrefix(wkt, "LINESTRING Z"), wkt)
	assert.Contains(t, wkt, "10 10 2.5")

	parsed, err := ParseWKT(wkt)
	require.NoError(t, err)
	assert.Equal(t, points, parsed)
}

func TestParseWKT_2D(t *testing.T) {
	points, err := ParseWKT("LINESTRING(0 0, 5 5)")
	require.NoError(t, err)
	assert.Equal(t, []mgl64.Vec3{{0, 0, 0}, {5, 0, 5}}, points)
}

func TestWKT_GroundPlaneAxes(t *testing.T) {
	// Due north on flat ground: only the northing changes.
	north := []mgl64.Vec3{{0, 0, 0}, {0, 0, 40}}

	ls := ToLineString(north)
	end, ok := ls.EndPoint().Coordinates()
	require.True(t, ok)
	assert.Equal(t, 0.0, end.XY.X)
	assert.Equal(t, 40.0, end.XY.Y)
	assert.Equal(t, 0.0, end.Z)

	parsed, err := ParseWKT(WKT(north))
	require.NoError(t, err)
	assert.Equal(t, north, parsed)
}

func TestParseWKT_Errors(t *testing.T) {
	_, err := ParseWKT("garbage")
	require.Error(t, err)

	_, err = ParseWKT("POINT(1 2)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected LINESTRING")

	_, err = ParseWKT("LINESTRING EMPTY")
	require.Error(t, err)
}
