// Package session implements the per-game concurrency model: one goroutine
// per game draining a mailbox of intents in arrival order, no shared
// mutable state across games.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/logger"
	"go.uber.org/zap"
)

// Applier is the subset of the engine's Game type a session drives: apply
// one intent, producing a snapshot or an error (the concrete Game lives in
// the top-level engine package; session only depends on this interface to
// avoid a cycle).
type Applier interface {
	Apply(intent eventlog.Intent) (Snapshot, error)
}

// Viewer is an optional capability an Applier can implement to hand back a
// read-only, viewer-scoped snapshot without going through Apply (so a
// websocket stream can poll state for hidden-information filtering without
// appending a spurious intent to the log). Building the view still runs on
// the session's own goroutine, so it never races with a concurrent Apply.
type Viewer interface {
	View(viewerID string) Snapshot
}

// Snapshot is an opaque per-tick state view; session does not interpret it,
// only delivers it to the request that submitted the intent.
type Snapshot interface{}

// request pairs a submitted intent with the channel its result is
// delivered on.
type request struct {
	intent eventlog.Intent
	reply  chan result
}

type result struct {
	snapshot Snapshot
	err      error
}

// viewRequest asks the session's goroutine for a read-only, viewer-scoped
// snapshot between ticks.
type viewRequest struct {
	viewerID string
	reply    chan Snapshot
}

// Session owns one game's mailbox and its draining goroutine.
type Session struct {
	gameID  string
	mailbox chan request
	views   chan viewRequest
	done    chan struct{}
	log     *zap.Logger
}

// NewSession starts a session's tick loop goroutine over applier. Cancel
// ctx to tear the session down; after that, Submit and View return an
// error reporting that the game is no longer running.
func NewSession(ctx context.Context, gameID string, applier Applier) *Session {
	s := &Session{
		gameID:  gameID,
		mailbox: make(chan request),
		views:   make(chan viewRequest),
		done:    make(chan struct{}),
		log:     logger.WithGameContext(gameID, ""),
	}
	go s.run(ctx, applier)
	return s
}

func (s *Session) run(ctx context.Context, applier Applier) {
	defer close(s.done)
	s.log.Info("session started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("session shutting down")
			return
		case req := <-s.mailbox:
			snap, err := applier.Apply(req.intent)
			select {
			case req.reply <- result{snapshot: snap, err: err}:
			case <-ctx.Done():
				return
			}
		case v := <-s.views:
			var snap Snapshot
			if viewer, ok := applier.(Viewer); ok {
				snap = viewer.View(v.viewerID)
			}
			select {
			case v.reply <- snap:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Submit enqueues an intent and blocks for its resulting snapshot. Intents
// from multiple callers are serialized through the mailbox in arrival
// order ("the tick loop drains it in arrival order").
func (s *Session) Submit(ctx context.Context, intent eventlog.Intent) (Snapshot, error) {
	reply := make(chan result, 1)
	select {
	case s.mailbox <- request{intent: intent, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, fmt.Errorf("session: game %q is no longer running", s.gameID)
	}

	select {
	case r := <-reply:
		return r.snapshot, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// View requests a read-only, viewer-scoped snapshot without submitting an
// intent. It is served by the same goroutine that runs Apply, so it never
// observes a torn mid-tick state.
func (s *Session) View(ctx context.Context, viewerID string) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case s.views <- viewRequest{viewerID: viewerID, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, fmt.Errorf("session: game %q is no longer running", s.gameID)
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Manager owns every running game's Session, keyed by game ID. There is no
// shared mutable game state across games: each Session's goroutine only
// ever touches its own game.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cancels  map[string]context.CancelFunc
	log      *zap.Logger
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		cancels:  map[string]context.CancelFunc{},
		log:      logger.Get(),
	}
}

// Start registers a new session for gameID backed by applier, deriving its
// lifetime from parent. It returns an error if a session for this game is
// already running.
func (m *Manager) Start(parent context.Context, gameID string, applier Applier) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[gameID]; exists {
		return nil, fmt.Errorf("session: game %q already running", gameID)
	}
	ctx, cancel := context.WithCancel(parent)
	s := NewSession(ctx, gameID, applier)
	m.sessions[gameID] = s
	m.cancels[gameID] = cancel
	return s, nil
}

// Get returns the running session for gameID, if any.
func (m *Manager) Get(gameID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[gameID]
	return s, ok
}

// Stop tears down a game's session and removes it from the manager.
func (m *Manager) Stop(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.cancels[gameID]; ok {
		cancel()
		delete(m.cancels, gameID)
	}
	delete(m.sessions, gameID)
	m.log.Info("session stopped", zap.String("game_id", gameID))
}

// Count returns the number of currently running sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns the game IDs of every currently running session, sorted for
// a stable listing order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
