package geometry

import "math"

// NormalizeAngle maps phi into (-pi, pi].
func NormalizeAngle(phi float64) float64 {
	if phi > -math.Pi && phi <= math.Pi {
		return phi
	}
	phi = math.Remainder(phi, 2*math.Pi)
	if phi <= -math.Pi {
		phi += 2 * math.Pi
	}
	return phi
}

// ReverseAngle turns phi by pi and normalises the result.
func ReverseAngle(phi float64) float64 {
	return NormalizeAngle(phi + math.Pi)
}
