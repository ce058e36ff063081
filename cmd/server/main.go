// @title mtgcore engine host
// @version 1.0
// @description Thin HTTP + websocket host around the mtgcore game engine.

// @host localhost:3001
// @BasePath /

// @schemes http https
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/forgewright/mtgcore/internal/config"
	"github.com/forgewright/mtgcore/internal/engine"
	"github.com/forgewright/mtgcore/internal/engine/cards"
	"github.com/forgewright/mtgcore/internal/engine/eventlog"
	"github.com/forgewright/mtgcore/internal/engine/session"
	engerr "github.com/forgewright/mtgcore/internal/errors"
	"github.com/forgewright/mtgcore/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// server wires the session manager, card registry, and event log together
// behind the two endpoints the engine's external interface carves out: one
// to submit an intent, one to stream the resulting state view.
type server struct {
	manager  *session.Manager
	registry *cards.Registry
	store    eventlog.Store
	log      *zap.Logger
}

func main() {
	cfg := config.Load()
	if err := logger.Init(&cfg.LogLevel); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	lg := logger.Get()

	var store eventlog.Store
	if cfg.EventLogDir != "" {
		fileStore, err := eventlog.NewFileStore(cfg.EventLogDir)
		if err != nil {
			lg.Fatal("create file store", zap.Error(err))
		}
		store = fileStore
	} else {
		store = eventlog.NewMemoryStore()
	}

	srv := &server{
		manager:  session.NewManager(),
		registry: cards.NewCoreRegistry(),
		store:    store,
		log:      lg,
	}

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "games": srv.manager.Count()})
	})

	r.POST("/games/:id/intents", srv.postIntent)
	r.GET("/games/:id/stream", srv.streamGame)

	go func() {
		lg.Info("mtgcore read-only REST surface starting", zap.String("port", cfg.AdminPort))
		if err := http.ListenAndServe(":"+cfg.AdminPort, srv.restRouter()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("rest surface failed to start", zap.Error(err))
		}
	}()

	lg.Info("mtgcore host starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server failed to start", zap.Error(err))
	}
}

// intentRequest is the wire shape of POST /games/:id/intents: an Intent
// minus GameID, which the URL path already carries.
type intentRequest struct {
	Type     eventlog.IntentType `json:"type"`
	PlayerID string              `json:"playerId"`
	Payload  json.RawMessage     `json:"payload"`
	ReplyTo  string              `json:"replyTo"`
}

func (s *server) sessionFor(ctx context.Context, gameID string) (*session.Session, error) {
	if sess, ok := s.manager.Get(gameID); ok {
		return sess, nil
	}
	g := engine.NewGame(gameID, s.store, s.registry)
	applier := engine.NewSessionApplier(g)
	return s.manager.Start(ctx, gameID, applier)
}

func (s *server) postIntent(c *gin.Context) {
	gameID := c.Param("id")

	var body intentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := s.sessionFor(c.Request.Context(), gameID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	intent := eventlog.Intent{
		ID:        uuid.NewString(),
		GameID:    gameID,
		Type:      body.Type,
		PlayerID:  body.PlayerID,
		Payload:   body.Payload,
		ReplyTo:   body.ReplyTo,
		Timestamp: time.Now(),
	}

	snap, err := sess.Submit(c.Request.Context(), intent)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// statusForError maps the engine's closed error taxonomy onto HTTP status
// codes, a transport detail the engine itself stays agnostic to.
func statusForError(err error) int {
	var coder engerr.Coder
	if !errors.As(err, &coder) {
		return http.StatusInternalServerError
	}
	switch coder.Code() {
	case engerr.CodeIllegalIntent, engerr.CodeMalformedIntent, engerr.CodeUnknownDecision:
		return http.StatusBadRequest
	case engerr.CodeInconsistent:
		return http.StatusConflict
	case engerr.CodeFatal:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamGame pushes one JSON snapshot per tick, filtered to the connecting
// player's hidden information: hidden-information filtering is the
// engine's responsibility, not the transport's, so this handler only polls
// Session.View and forwards whatever it returns.
func (s *server) streamGame(c *gin.Context) {
	gameID := c.Param("id")
	viewerID := c.Query("playerId")

	sess, ok := s.manager.Get(gameID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such game"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastSeq int64 = -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := sess.View(ctx, viewerID)
			if err != nil {
				return
			}
			view, ok := snap.(*engine.Snapshot)
			if !ok || view == nil || view.Seq == lastSeq {
				continue
			}
			lastSeq = view.Seq
			if err := conn.WriteJSON(view); err != nil {
				return
			}
		}
	}
}
