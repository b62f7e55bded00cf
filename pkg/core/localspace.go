// pkg/core/localspace.go
package core

import "github.com/go-gl/mathgl/mgl64"

// LocalSpace is an orthonormal basis {Side, Up, Forward} anchored at Position.
// Forward is the heading. Side and Up are kept unit length and orthogonal to
// Forward by the regenerate methods.
type LocalSpace struct {
	Side     mgl64.Vec3
	Up       mgl64.Vec3
	Forward  mgl64.Vec3
	Position mgl64.Vec3

	// LeftHanded flips the chirality used to derive Side and Up.
	LeftHanded bool
}

// NewLocalSpace uses the given basis as is.
func NewLocalSpace(side, up, forward, position mgl64.Vec3) LocalSpace {
	return LocalSpace{Side: side, Up: up, Forward: forward, Position: position}
}

// NewLocalSpaceFromUpForward derives Side from up and forward.
func NewLocalSpaceFromUpForward(up, forward, position mgl64.Vec3) LocalSpace {
	ls := LocalSpace{Up: up, Forward: forward, Position: position}
	ls.SetUnitSideFromForwardAndUp()
	return ls
}

// ResetLocalSpace puts the basis back to the identity heading (+Z forward, +Y up)
// at the origin.
func (ls *LocalSpace) ResetLocalSpace() {
	ls.Forward = mgl64.Vec3{0, 0, 1}
	ls.Side = ls.LocalRotateForwardToSide(ls.Forward)
	ls.Up = mgl64.Vec3{0, 1, 0}
	ls.Position = mgl64.Vec3{}
}

// SetUnitSideFromForwardAndUp recomputes Side from the current Forward and Up.
func (ls *LocalSpace) SetUnitSideFromForwardAndUp() {
	var side mgl64.Vec3
	if ls.LeftHanded {
		side = ls.Up.Cross(ls.Forward)
	} else {
		side = ls.Forward.Cross(ls.Up)
	}
	if l := side.Len(); l > 0 {
		side = side.Mul(1 / l)
	}
	ls.Side = side
}

// RegenerateOrthonormalBasisUF sets Forward to an already unit-length vector,
// derives Side from it and the old Up, then re-derives Up.
func (ls *LocalSpace) RegenerateOrthonormalBasisUF(newUnitForward mgl64.Vec3) {
	ls.Forward = newUnitForward
	ls.SetUnitSideFromForwardAndUp()

	if ls.LeftHanded {
		ls.Up = ls.Forward.Cross(ls.Side)
	} else {
		ls.Up = ls.Side.Cross(ls.Forward)
	}
}

// RegenerateOrthonormalBasis normalizes newForward before regenerating.
// A zero vector leaves the basis untouched.
func (ls *LocalSpace) RegenerateOrthonormalBasis(newForward mgl64.Vec3) {
	l := newForward.Len()
	if l == 0 {
		return
	}
	ls.RegenerateOrthonormalBasisUF(newForward.Mul(1 / l))
}

// RegenerateOrthonormalBasisWithUp replaces Up before regenerating from newForward.
func (ls *LocalSpace) RegenerateOrthonormalBasisWithUp(newForward, newUp mgl64.Vec3) {
	ls.Up = newUp
	ls.RegenerateOrthonormalBasis(newForward)
}

// LocalizeDirection expresses a global direction in local coordinates
// (x = side, y = up, z = forward).
func (ls LocalSpace) LocalizeDirection(globalDirection mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		globalDirection.Dot(ls.Side),
		globalDirection.Dot(ls.Up),
		globalDirection.Dot(ls.Forward),
	}
}

// LocalizePosition expresses a global point in local coordinates.
func (ls LocalSpace) LocalizePosition(globalPosition mgl64.Vec3) mgl64.Vec3 {
	return ls.LocalizeDirection(globalPosition.Sub(ls.Position))
}

// GlobalizeDirection is the inverse of LocalizeDirection.
func (ls LocalSpace) GlobalizeDirection(localDirection mgl64.Vec3) mgl64.Vec3 {
	return ls.Side.Mul(localDirection[0]).
		Add(ls.Up.Mul(localDirection[1])).
		Add(ls.Forward.Mul(localDirection[2]))
}

// GlobalizePosition is the inverse of LocalizePosition.
func (ls LocalSpace) GlobalizePosition(localPosition mgl64.Vec3) mgl64.Vec3 {
	return ls.Position.Add(ls.GlobalizeDirection(localPosition))
}

// LocalRotateForwardToSide rotates a local-space vector a quarter turn about Up.
func (ls LocalSpace) LocalRotateForwardToSide(v mgl64.Vec3) mgl64.Vec3 {
	x := -v[2]
	if ls.LeftHanded {
		x = v[2]
	}
	return mgl64.Vec3{x, v[1], v[0]}
}

// GlobalRotateForwardToSide rotates a global vector a quarter turn about Up.
func (ls LocalSpace) GlobalRotateForwardToSide(v mgl64.Vec3) mgl64.Vec3 {
	localForward := ls.LocalizeDirection(v)
	localSide := ls.LocalRotateForwardToSide(localForward)
	return ls.GlobalizeDirection(localSide)
}
