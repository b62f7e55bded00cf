package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertOrthonormal(t *testing.T, ls LocalSpace) {
	t.Helper()
	assert.InDelta(t, 1, ls.Forward.Len(), 1e-9)
	assert.InDelta(t, 1, ls.Side.Len(), 1e-9)
	assert.InDelta(t, 1, ls.Up.Len(), 1e-9)
	assert.InDelta(t, 0, ls.Forward.Dot(ls.Side), 1e-9)
	assert.InDelta(t, 0, ls.Forward.Dot(ls.Up), 1e-9)
	assert.InDelta(t, 0, ls.Side.Dot(ls.Up), 1e-9)
}

func TestResetLocalSpace(t *testing.T) {
	var ls LocalSpace
	ls.ResetLocalSpace()

	assert.Equal(t, mgl64.Vec3{0, 0, 1}, ls.Forward)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, ls.Up)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, ls.Side)
	// Right-handed: side must match cross(forward, up).
	assert.Equal(t, ls.Forward.Cross(ls.Up), ls.Side)
	assertOrthonormal(t, ls)
}

func TestSetUnitSideFromForwardAndUp_Handedness(t *testing.T) {
	right := NewLocalSpaceFromUpForward(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})
	assert.True(t, right.Side.ApproxEqual(mgl64.Vec3{0, 0, 1}))

	left := LocalSpace{Up: mgl64.Vec3{0, 1, 0}, Forward: mgl64.Vec3{1, 0, 0}, LeftHanded: true}
	left.SetUnitSideFromForwardAndUp()
	assert.True(t, left.Side.ApproxEqual(mgl64.Vec3{0, 0, -1}))
}

func TestRegenerateOrthonormalBasis(t *testing.T) {
	var ls LocalSpace
	ls.ResetLocalSpace()

	ls.RegenerateOrthonormalBasis(mgl64.Vec3{3, 1, 4})
	assertOrthonormal(t, ls)
	assert.True(t, ls.Forward.ApproxEqual(mgl64.Vec3{3, 1, 4}.Normalize()))

	ls.LeftHanded = true
	ls.RegenerateOrthonormalBasisWithUp(mgl64.Vec3{0, 0, -2}, mgl64.Vec3{0, 1, 0})
	assertOrthonormal(t, ls)
	assert.True(t, ls.Side.ApproxEqual(ls.Up.Cross(ls.Forward)))
}

func TestRegenerateOrthonormalBasis_ZeroKeepsBasis(t *testing.T) {
	var ls LocalSpace
	ls.ResetLocalSpace()
	before := ls

	ls.RegenerateOrthonormalBasis(mgl64.Vec3{})
	assert.Equal(t, before, ls)
}

func TestLocalizeGlobalizeRoundTrip(t *testing.T) {
	ls := NewLocalSpaceFromUpForward(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 1}.Normalize(), mgl64.Vec3{5, 0, -2})
	p := mgl64.Vec3{7, 3, 9}

	local := ls.LocalizePosition(p)
	require.True(t, ls.GlobalizePosition(local).ApproxEqualThreshold(p, 1e-9))

	ahead := ls.LocalizePosition(ls.Position.Add(ls.Forward.Mul(2)))
	assert.True(t, ahead.ApproxEqual(mgl64.Vec3{0, 0, 2}))
}

func TestGlobalRotateForwardToSide(t *testing.T) {
	var ls LocalSpace
	ls.ResetLocalSpace()

	fromForward := ls.GlobalRotateForwardToSide(ls.Forward)
	assert.InDelta(t, 0, fromForward.Dot(ls.Forward), 1e-9)
	assert.InDelta(t, 1, fromForward.Len(), 1e-9)

	rotated := ls.GlobalRotateForwardToSide(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 1, rotated.Len(), 1e-9)
	assert.InDelta(t, 0, rotated.Dot(mgl64.Vec3{1, 0, 0}), 1e-9)
	assert.False(t, math.IsNaN(rotated[0]))
}
