package session

import "errors"

// RejectKind classifies why a command was not carried out.
type RejectKind int

const (
	// RejectedAction means the command was invalid here or the engine declined it.
	RejectedAction RejectKind = iota
	// UnknownFixture means no position has the requested name.
	UnknownFixture
	// CapabilityUnavailable means the engine lacks the optional operation.
	CapabilityUnavailable
	// GameFinished means the game is over and only a reset is accepted.
	GameFinished
)

func (k RejectKind) String() string {
	switch k {
	case UnknownFixture:
		return "unknown fixture"
	case CapabilityUnavailable:
		return "capability unavailable"
	case GameFinished:
		return "game finished"
	default:
		return "rejected"
	}
}

var (
	ErrGameOver              = errors.New("game is over")
	ErrUnknownFixture        = errors.New("unknown fixture")
	ErrCapabilityUnavailable = errors.New("engine capability unavailable")
)

// RejectedError is returned by every session command that did not change the game.
// Reason is the text shown as status.
type RejectedError struct {
	Kind   RejectKind
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// Is matches the package sentinels against the rejection kind.
func (e *RejectedError) Is(target error) bool {
	switch target {
	case ErrGameOver:
		return e.Kind == GameFinished
	case ErrUnknownFixture:
		return e.Kind == UnknownFixture
	case ErrCapabilityUnavailable:
		return e.Kind == CapabilityUnavailable
	}
	return false
}

// IsRejected reports whether err is a session rejection.
func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}
