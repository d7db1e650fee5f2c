package cdc

import (
	"math"

	"github.com/banshee-data/cdc.tracking/internal/geometry"
)

// Trajectory2D is a fitted circle expressed relative to a local origin,
// usually the first hit of the track. Arc lengths are measured from the
// perigee with respect to that origin.
type Trajectory2D struct {
	LocalOrigin geometry.Vector2D
	Circle      geometry.UncertainPerigeeCircle
}

// NewTrajectory2D wraps a circle given relative to the global origin and
// re-expresses it relative to localOrigin.
func NewTrajectory2D(global geometry.UncertainPerigeeCircle, localOrigin geometry.Vector2D) Trajectory2D {
	return Trajectory2D{
		LocalOrigin: localOrigin,
		Circle:      global.PassiveMovedBy(localOrigin),
	}
}

// GlobalCircle is the circle relative to the detector origin.
func (t Trajectory2D) GlobalCircle() geometry.PerigeeCircle {
	return t.Circle.PerigeeCircle.PassiveMovedBy(t.LocalOrigin.Reversed())
}

// ArcLength2D is the signed arc length from the local perigee to the point
// closest to point.
func (t Trajectory2D) ArcLength2D(point geometry.Vector2D) float64 {
	return t.Circle.ArcLengthTo(point.Sub(t.LocalOrigin))
}

// Distance is the signed distance of point from the trajectory.
func (t Trajectory2D) Distance(point geometry.Vector2D) float64 {
	return t.Circle.Distance(point.Sub(t.LocalOrigin))
}

// Closest is the trajectory point closest to point, in global coordinates.
func (t Trajectory2D) Closest(point geometry.Vector2D) geometry.Vector2D {
	return t.Circle.Closest(point.Sub(t.LocalOrigin)).Add(t.LocalOrigin)
}

// Tangential is the direction of travel near point.
func (t Trajectory2D) Tangential(point geometry.Vector2D) geometry.Vector2D {
	return t.Circle.Tangential(point.Sub(t.LocalOrigin))
}

// AbsRadius is +Inf for straight trajectories.
func (t Trajectory2D) AbsRadius() float64 { return t.Circle.AbsRadius() }

func (t Trajectory2D) Err() error { return t.Circle.Err() }

// Trajectory3D adds the linear sz dependence z = Z0 + TanLambda * s.
type Trajectory3D struct {
	Trajectory2D
	TanLambda float64
	Z0        float64
}

// ZAt is the z coordinate after arc length s.
func (t Trajectory3D) ZAt(s float64) float64 {
	if math.IsNaN(t.TanLambda) {
		return t.Z0
	}
	return t.Z0 + t.TanLambda*s
}
