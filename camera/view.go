package camera

import (
	"math"

	"github.com/paulmach/orb"
)

// Lens describes the perspective projection.
type Lens struct {
	// FOV is the vertical field of view in radians.
	FOV float64
	// Aspect is width / height.
	Aspect float64
	// Far caps how far (ground distance from the camera) the view reaches.
	Far float64
}

// DefaultLens is a 60 degree square lens.
func DefaultLens() Lens {
	return Lens{FOV: math.Pi / 3, Aspect: 1, Far: 1e6}
}

// horizonMargin keeps rays strictly below the horizon.
const horizonMargin = 1e-3

// ViewRect returns the bounding rectangle of the ground area visible through
// lens from the camera described by c.
//
// The visible ground area is a trapezoid: its near and far edges are where
// the bottom and top frustum planes meet the ground, and each edge is as
// wide as the frustum at that depth. Rays at or above the horizon are
// clamped to lens.Far.
func ViewRect(c Controls, lens Lens) orb.Bound {
	target := c.Target()
	s := c.PSphere()

	half := lens.FOV / 2
	tanHalfW := math.Tan(half) * lens.Aspect
	height := s.Radius * math.Cos(s.Phi)
	back := s.Radius * math.Sin(s.Phi)

	// edge returns the forward offset from the target and the half width of
	// the ground edge hit by a ray tilted alpha from vertical.
	edge := func(alpha float64) (forward, halfWidth float64) {
		var dist float64
		if height <= 0 || alpha >= math.Pi/2-horizonMargin {
			dist = lens.Far
		} else {
			dist = math.Min(height*math.Tan(alpha), lens.Far)
		}
		depth := math.Hypot(height, dist) * math.Cos(half)
		return dist - back, depth * tanHalfW
	}

	nearF, nearW := edge(s.Phi - half)
	farF, farW := edge(s.Phi + half)

	sin, cos := math.Sincos(s.Theta)
	right := orb.Point{cos, -sin}
	fwd := orb.Point{sin, cos}
	at := func(x, y float64) orb.Point {
		return orb.Point{
			target[0] + x*right[0] + y*fwd[0],
			target[1] + x*right[1] + y*fwd[1],
		}
	}

	return orb.MultiPoint{
		at(-nearW, nearF), at(nearW, nearF),
		at(-farW, farF), at(farW, farF),
	}.Bound()
}
