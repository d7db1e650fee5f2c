// Package geometry owns the 2D trajectory geometry used by CDC tracking.
//
// Responsibilities: vector algebra, perigee-parametrised circles and lines,
// their covariance transport under changes of the reference point, and the
// numerically stable distance/arc-length formulas that stay accurate as the
// curvature approaches zero.
// Key types: Vector2D, PerigeeCircle, UncertainPerigeeCircle,
// ParameterLine2D, UncertainParameterLine2D.
//
// Conventions used throughout:
//   - Positive curvature means counterclockwise travel.
//   - Signed distances are positive to the right of the direction of travel.
//   - The impact parameter is the signed distance of the origin.
//
// Degenerate inputs propagate NaN through the value types. Every
// construction that can fail also reports the failure explicitly through
// Validity/Err or an error return, so callers never have to rely on NaN
// inspection alone.
package geometry
