package geometry

// ERotation is the sense of rotation of a circular trajectory.
type ERotation int

const (
	Clockwise        ERotation = -1
	CounterClockwise ERotation = 1
)

// Reversed returns the opposite rotation.
func (r ERotation) Reversed() ERotation { return -r }

// ERightLeft says on which side of the trajectory a wire lies.
type ERightLeft int

const (
	Left      ERightLeft = -1
	UnknownRL ERightLeft = 0
	Right     ERightLeft = 1
	InvalidRL ERightLeft = -999
)

// Reversed swaps left and right.
func (rl ERightLeft) Reversed() ERightLeft {
	if rl == InvalidRL {
		return rl
	}
	return -rl
}

func (rl ERightLeft) String() string {
	switch rl {
	case Left:
		return "left"
	case Right:
		return "right"
	case UnknownRL:
		return "unknown"
	default:
		return "invalid"
	}
}

// EForwardBackward orders two points along a trajectory.
type EForwardBackward int

const (
	Backward  EForwardBackward = -1
	UnknownFB EForwardBackward = 0
	Forward   EForwardBackward = 1
	InvalidFB EForwardBackward = -999
)

// forwardBackwardFromSign maps the sign of a length to an ordering.
func forwardBackwardFromSign(x float64) EForwardBackward {
	switch {
	case x > 0:
		return Forward
	case x < 0:
		return Backward
	case x == 0:
		return UnknownFB
	default:
		return InvalidFB
	}
}
