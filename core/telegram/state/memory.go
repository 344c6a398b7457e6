package state

import (
	"sync"
	"time"

	"github.com/m3rciful/econbot/core/logger"
	tghelpers "github.com/m3rciful/econbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

type memoryManager[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]*Session[T]

	handlersMu sync.RWMutex
	handlers   map[State]tele.HandlerFunc
}

// NewMemoryManager constructs an in-memory Manager implementation.
func NewMemoryManager[T any]() Manager[T] {
	return &memoryManager[T]{
		sessions: make(map[int64]*Session[T]),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// Get returns a snapshot of the user's session, or a default idle session.
func (m *memoryManager[T]) Get(userID int64) Session[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.sessions[userID]; ok {
		return *session
	}
	return Session[T]{State: StateIdle}
}

// Begin discards any previous session and starts a fresh one at st.
// Old form data never leaks into the new session.
func (m *memoryManager[T]) Begin(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &Session[T]{State: st, CreatedAt: time.Now()}
}

// Update applies fn to the live session while holding the manager lock.
func (m *memoryManager[T]) Update(userID int64, fn func(*Session[T])) bool {
	if fn == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	if !ok {
		return false
	}
	fn(session)
	return true
}

// Clear removes the entire session for a user.
func (m *memoryManager[T]) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SetState sets the FSM state for the given user, creating a session if needed.
func (m *memoryManager[T]) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	if !ok {
		session = &Session[T]{CreatedAt: time.Now()}
		m.sessions[userID] = session
	}
	session.State = st
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager[T]) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if session, ok := m.sessions[userID]; ok {
		return session.State
	}
	return StateIdle
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager[T]) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[userID]
	return ok && session.State != StateIdle
}

// RegisterHandler associates a state with its handler.
func (m *memoryManager[T]) RegisterHandler(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers[st] = h
}

// ManagerHandler executes the handler registered for the user's current state, if any.
func (m *memoryManager[T]) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	m.handlersMu.RLock()
	handler, ok := m.handlers[current]
	m.handlersMu.RUnlock()
	if ok {
		return handler(c)
	}
	return nil
}
