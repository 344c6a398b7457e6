package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores the current step and the typed form data for one user.
// The zero value of T is a fresh, empty form.
type Session[T any] struct {
	State     State
	Data      T
	CreatedAt time.Time
}

// Manager orchestrates user sessions and FSM state transitions.
// Sessions are owned by the manager: callers read snapshots via Get and
// mutate through Update, so exactly one writer touches a session per turn.
type Manager[T any] interface {
	// Get returns a snapshot of the user's session, or an idle session if none exists.
	Get(userID int64) Session[T]
	// Begin replaces any existing session with a fresh one positioned at st.
	Begin(userID int64, st State)
	// Update applies fn to the live session under the manager's lock.
	// It reports false when the user has no session.
	Update(userID int64, fn func(*Session[T])) bool
	// Clear removes the entire session for a user.
	Clear(userID int64)

	SetState(userID int64, st State)
	GetState(userID int64) State

	// InProgress reports whether the user currently has an active FSM state.
	InProgress(userID int64) bool

	// RegisterHandler associates a state with the handler invoked for incoming
	// text while the user is in that state.
	RegisterHandler(st State, h tele.HandlerFunc)
	// ManagerHandler executes the handler registered for the user's current state.
	ManagerHandler(c tele.Context) error
}
