package geo

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestParseVec_ValidWithZ(t *testing.T) {
	v, err := ParseVec("100.5,200.25,50.0")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != (mgl64.Vec3{100.5, 200.25, 50}) {
		t.Errorf("expected (100.5,200.25,50), got %v", v)
	}
}

func TestParseVec_ValidWithoutZ(t *testing.T) {
	v, err := ParseVec(" -1.5, 2 ")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != (mgl64.Vec3{-1.5, 2, 0}) {
		t.Errorf("expected (-1.5,2,0), got %v", v)
	}
}

func TestParseVec_Invalid(t *testing.T) {
	for _, input := range []string{"", "1", "a,b", "1,2,c", "1,2,3,4"} {
		_, err := ParseVec(input)
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("input %q: expected ErrInvalidCoordinates, got %v", input, err)
		}
	}
}

func TestProjectWGS84_RelativeToFirstPoint(t *testing.T) {
	points, err := ProjectWGS84([][]float64{{0, 0, 5}, {1, 0, 10}, {0, 1}})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0] != (mgl64.Vec3{0, 5, 0}) {
		t.Errorf("first point should sit at the origin, got %v", points[0])
	}
	// One degree of longitude on the equator in web mercator.
	if d := points[1].X() - 111319.49; d > 0.01 || d < -0.01 {
		t.Errorf("expected easting ~111319.49, got %f", points[1].X())
	}
	if points[1].Y() != 10 {
		t.Errorf("expected elevation 10, got %f", points[1].Y())
	}
	if points[2].Z() <= 0 {
		t.Errorf("north should map to +Z, got %v", points[2])
	}
}

func TestProjectWGS84_Invalid(t *testing.T) {
	tests := [][][]float64{
		{{0}},
		{{0, 0}, {181, 0}},
		{{0, 90}},
		{{0, 0, 0, 0}},
	}
	for _, coords := range tests {
		_, err := ProjectWGS84(coords)
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("%v: expected ErrInvalidCoordinates, got %v", coords, err)
		}
	}
}

func TestProjectWGS84_Empty(t *testing.T) {
	points, err := ProjectWGS84(nil)
	if err != nil || points != nil {
		t.Errorf("expected nil, nil; got %v, %v", points, err)
	}
}
