// Package camera defines what the tile engine reads from the interactive
// camera controls and derives the ground rectangle the camera can see.
package camera

import (
	"math"
	"sync"

	"github.com/paulmach/orb"
)

// Spherical is the camera offset from the controls target: distance Radius,
// polar angle Phi from straight down (0 = top-down) and azimuth Theta
// (0 = looking toward +Y).
type Spherical struct {
	Radius, Phi, Theta float64
}

// Controls is the camera-control widget as seen by the engine.
type Controls interface {
	// ZoomLevel is the LOD the view currently asks for.
	ZoomLevel() int
	// Target is the ground point the view is centered on.
	Target() orb.Point
	// PSphere is the camera position around Target.
	PSphere() Spherical
	// SetMaxPolarAngle constrains tilting; 0 forces a top-down view.
	SetMaxPolarAngle(rad float64)
	// OnChange registers fn to be called after every camera change.
	OnChange(fn func())
}

// Orbit is a staged-zoom orbit control: the zoom level steps by one every
// time the camera distance halves.
//
// Orbit is safe for concurrent use; listeners run on the goroutine that
// made the change.
type Orbit struct {
	mu            sync.Mutex
	target        orb.Point
	sphere        Spherical
	minDist       float64
	maxDist       float64
	maxZoom       int
	maxPolarAngle float64
	listeners     []func()
}

// NewOrbit returns controls looking straight down at target from radius,
// with the distance kept inside [minDist, maxDist].
func NewOrbit(target orb.Point, radius, minDist, maxDist float64, maxZoom int) *Orbit {
	o := &Orbit{
		target:        target,
		minDist:       minDist,
		maxDist:       maxDist,
		maxZoom:       maxZoom,
		maxPolarAngle: math.Pi / 2,
	}
	o.sphere.Radius = o.clampRadius(radius)
	return o
}

// ZoomLevel returns round(log2(maxDist / radius)) clamped to [0, maxZoom].
func (o *Orbit) ZoomLevel() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sphere.Radius <= 0 {
		return o.maxZoom
	}
	z := int(math.Round(math.Log2(o.maxDist / o.sphere.Radius)))
	return min(max(z, 0), o.maxZoom)
}

func (o *Orbit) Target() orb.Point {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.target
}

func (o *Orbit) PSphere() Spherical {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sphere
}

// MaxPolarAngle returns the current tilt limit.
func (o *Orbit) MaxPolarAngle() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxPolarAngle
}

// SetMaxPolarAngle implements Controls. The current tilt is clamped to the
// new limit.
func (o *Orbit) SetMaxPolarAngle(rad float64) {
	o.update(func() {
		o.maxPolarAngle = max(rad, 0)
		o.sphere.Phi = min(o.sphere.Phi, o.maxPolarAngle)
	})
}

// OnChange implements Controls.
func (o *Orbit) OnChange(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// SetRadius moves the camera toward or away from the target.
func (o *Orbit) SetRadius(r float64) {
	o.update(func() { o.sphere.Radius = o.clampRadius(r) })
}

// SetPhi tilts the camera, within the max polar angle.
func (o *Orbit) SetPhi(phi float64) {
	o.update(func() { o.sphere.Phi = min(max(phi, 0), o.maxPolarAngle) })
}

// SetTheta rotates the camera around the target.
func (o *Orbit) SetTheta(theta float64) {
	o.update(func() { o.sphere.Theta = theta })
}

// Pan moves the target on the ground plane.
func (o *Orbit) Pan(dx, dy float64) {
	o.update(func() { o.target = orb.Point{o.target[0] + dx, o.target[1] + dy} })
}

// update applies fn under the lock and notifies listeners outside of it.
func (o *Orbit) update(fn func()) {
	o.mu.Lock()
	fn()
	listeners := make([]func(), len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}

func (o *Orbit) clampRadius(r float64) float64 {
	return min(max(r, o.minDist), o.maxDist)
}
