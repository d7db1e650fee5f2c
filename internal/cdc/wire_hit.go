package cdc

import (
	"math"

	"github.com/banshee-data/cdc.tracking/internal/geometry"
)

// WireHit is a single drift time measurement on a sense wire.
type WireHit struct {
	ID                  int
	WirePos             geometry.Vector2D // reference position of the wire
	DriftLength         float64           // unsigned distance of the track from the wire
	DriftLengthVariance float64
	SuperLayer          int
	Layer               int
	// RLInfo is a left/right hint from upstream; UnknownRL when ambiguous.
	RLInfo geometry.ERightLeft
}

// IsAmbiguous reports whether no left/right hint is available.
func (h *WireHit) IsAmbiguous() bool {
	return h.RLInfo != geometry.Left && h.RLInfo != geometry.Right
}

// RLWireHit binds a wire hit to a left/right passage hypothesis. It is a
// derived value and is rebuilt whenever the hypothesis changes.
type RLWireHit struct {
	Hit *WireHit
	RL  geometry.ERightLeft
}

// NewRLWireHit pairs hit with rl.
func NewRLWireHit(hit *WireHit, rl geometry.ERightLeft) RLWireHit {
	return RLWireHit{Hit: hit, RL: rl}
}

// Pos is the wire position.
func (h RLWireHit) Pos() geometry.Vector2D { return h.Hit.WirePos }

// SignedDriftLength is the signed distance of the wire from the track,
// positive when the wire lies on the right. Unknown passage gives zero.
func (h RLWireHit) SignedDriftLength() float64 {
	switch h.RL {
	case geometry.Right:
		return h.Hit.DriftLength
	case geometry.Left:
		return -h.Hit.DriftLength
	default:
		return 0
	}
}

// DriftLengthVariance widens to the full drift circle for unknown passage.
func (h RLWireHit) DriftLengthVariance() float64 {
	if h.RL == geometry.Right || h.RL == geometry.Left {
		return h.Hit.DriftLengthVariance
	}
	return h.Hit.DriftLengthVariance + h.Hit.DriftLength*h.Hit.DriftLength
}

// Weight is the inverse drift length variance.
func (h RLWireHit) Weight() float64 {
	v := h.DriftLengthVariance()
	if v <= 0 {
		return math.Inf(1)
	}
	return 1 / v
}

// Reversed is the same hit with the opposite passage.
func (h RLWireHit) Reversed() RLWireHit {
	return RLWireHit{Hit: h.Hit, RL: h.RL.Reversed()}
}

// ReconstructOn returns the point where a trajectory with local direction
// dir passes the wire under this passage hypothesis.
func (h RLWireHit) ReconstructOn(dir geometry.Vector2D) geometry.Vector2D {
	right := dir.OrthogonalTo(geometry.Clockwise).Unit()
	return h.Pos().Sub(right.Scale(h.SignedDriftLength()))
}
