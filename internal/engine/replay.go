package engine

import (
	"context"
	"fmt"

	"github.com/forgewright/mtgcore/internal/engine/cards"
	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/logger"
)

// Replay reconstructs a game's live state by loading its full intent stream
// from store and feeding each intent back through the tick loop in order
// (the restart-recovery contract: "create fresh initial state, feed each
// intent in order through the tick loop, assert post-condition that seq
// matches"). The game is built with no store attached while catching up, so
// replayed intents are not re-appended; store is wired in afterward so the
// game persists normally from this point on.
func Replay(ctx context.Context, gameID string, store eventlog.Store, registry *cards.Registry) (*Game, error) {
	records, err := store.Load(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("engine: load event log for %s: %w", gameID, err)
	}

	logger.WithReplayContext(gameID, len(records)).Info("replaying event log")

	g := NewGame(gameID, nil, registry)
	for _, rec := range records {
		if _, err := g.Apply(ctx, rec.Intent); err != nil {
			return nil, fmt.Errorf("engine: replay %s at seq %d: %w", gameID, rec.Seq, err)
		}
		if g.clock.Seq() != rec.Seq {
			return nil, fmt.Errorf("engine: replay %s: sequence mismatch, got %d want %d", gameID, g.clock.Seq(), rec.Seq)
		}
	}

	g.store = store
	return g, nil
}
