package eventio

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported event file format")
	ErrInvalidRL         = errors.New("invalid left/right passage")
	ErrDuplicateWireHit  = errors.New("duplicate wire hit id")
	ErrUnknownWireHit    = errors.New("unknown wire hit id")
	ErrNoTrajectory      = errors.New("track has no trajectory and too few hits to fit one")
)
