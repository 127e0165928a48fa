package scanner

import "sync/atomic"

// TokenState is the state of a cancellation token.
type TokenState int32

const (
	Running TokenState = iota
	CancelRequested
	Cancelled
)

func (s TokenState) String() string {
	switch s {
	case Running:
		return "running"
	case CancelRequested:
		return "cancel-requested"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Token is a tri-state cancellation switch shared by a session and its
// walker. The zero value is Running.
type Token struct {
	state atomic.Int32
}

// NewToken returns a token in the Running state.
func NewToken() *Token {
	return &Token{}
}

// RequestCancel moves Running to CancelRequested. It is idempotent and safe
// to call from any goroutine.
func (t *Token) RequestCancel() {
	t.state.CompareAndSwap(int32(Running), int32(CancelRequested))
}

// IsCancelRequested reports whether cancellation was requested or already
// acknowledged.
func (t *Token) IsCancelRequested() bool {
	return TokenState(t.state.Load()) != Running
}

// Acknowledge moves CancelRequested to Cancelled. Only the walker calls it.
// It reports whether this call made the transition.
func (t *Token) Acknowledge() bool {
	return t.state.CompareAndSwap(int32(CancelRequested), int32(Cancelled))
}

// State returns the current state.
func (t *Token) State() TokenState {
	return TokenState(t.state.Load())
}
