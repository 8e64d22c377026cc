package mandel

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrInvalidTransition is returned when a session is asked to move to a state
// that is not reachable from its current one.
var ErrInvalidTransition = errors.New("mandel: invalid session transition")

// State is the lifecycle position of a Session.
type State uint8

const (
	// StateIdle means no pass has run yet or the last pass was aborted.
	StateIdle State = iota
	// StateRendering means a pass is in flight.
	StateRendering
	// StateAborting means the in-flight pass was abandoned and its waiter
	// has not yet settled.
	StateAborting
	// StateDone means the last pass completed.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateAborting:
		return "aborting"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Session tracks the render pass lifecycle and the render generation.
//
//	Idle, Done --Begin--> Rendering --Finish--> Done
//	                      Rendering --Abort---> Aborting --Settle--> Idle
//
// Begin and Abort both advance the generation. Row tasks compare the
// generation they were created with against Generation and skip their work
// once it has moved on, so a superseded pass stops consuming workers.
//
// Thread safety: Session is safe for concurrent use. Generation is lock-free.
type Session struct {
	mu         sync.Mutex
	state      State
	generation atomic.Uint64
	aborted    chan struct{}
}

// Begin starts a pass. It returns the pass generation and a channel that is
// closed if the pass is aborted.
func (s *Session) Begin() (uint64, <-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle && s.state != StateDone {
		return 0, nil, fmt.Errorf("%w: begin from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateRendering
	s.aborted = make(chan struct{})
	return s.generation.Add(1), s.aborted, nil
}

// Finish marks pass gen complete. It fails if gen is no longer current or
// the session is not rendering.
func (s *Session) Finish(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRendering || s.generation.Load() != gen {
		return fmt.Errorf("%w: finish generation %d from %s", ErrInvalidTransition, gen, s.state)
	}
	s.state = StateDone
	return nil
}

// Abort abandons the in-flight pass: the state becomes Aborting, the
// generation advances and the pass's abort channel is closed.
func (s *Session) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRendering {
		return fmt.Errorf("%w: abort from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateAborting
	s.generation.Add(1)
	close(s.aborted)
	return nil
}

// Settle returns an aborted session to Idle.
func (s *Session) Settle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAborting {
		return fmt.Errorf("%w: settle from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateIdle
	return nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the current render generation.
func (s *Session) Generation() uint64 {
	return s.generation.Load()
}

// Current reports whether gen is still the active generation.
func (s *Session) Current(gen uint64) bool {
	return s.generation.Load() == gen
}
