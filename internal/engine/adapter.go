package engine

import (
	"context"

	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/session"
)

// SessionApplier adapts a *Game to session.Applier: session's interface
// returns its own opaque Snapshot type to avoid importing this package, so
// the adapter is the one place that bridges the two.
type SessionApplier struct {
	Game *Game
}

// NewSessionApplier wraps g for use by a session.Session.
func NewSessionApplier(g *Game) *SessionApplier {
	return &SessionApplier{Game: g}
}

func (a *SessionApplier) Apply(intent eventlog.Intent) (session.Snapshot, error) {
	return a.Game.Apply(context.Background(), intent)
}

// View satisfies session.Viewer: a read-only, viewer-scoped snapshot for
// the websocket stream endpoint.
func (a *SessionApplier) View(viewerID string) session.Snapshot {
	return a.Game.Snapshot(viewerID)
}
