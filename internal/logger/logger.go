package logger

import (
	"os"

	"go.uber.org/zap"
)

var globalLogger *zap.Logger

// Init initializes the global logger
func Init(logLevel *string) error {
	var err error

	// Create config based on GO_ENV for formatting
	env := os.Getenv("GO_ENV")
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	var appliedLogLevel string
	if logLevel != nil {
		appliedLogLevel = *logLevel
	} else {
		appliedLogLevel = "info"
	}

	// Set the log level based on TM_LOG_LEVEL
	switch appliedLogLevel {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	globalLogger, err = config.Build()
	if err != nil {
		return err
	}

	return nil
}

// Get returns the global logger
func Get() *zap.Logger {
	if globalLogger == nil {
		// Fallback to development logger if not initialized
		globalLogger, _ = zap.NewDevelopment()
	}
	return globalLogger
}

// Sync flushes the logger
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// Shutdown properly closes the logger
func Shutdown() error {
	return Sync()
}

// WithContext returns a logger with additional context fields
func WithContext(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// WithGameContext returns a logger with game-related context
func WithGameContext(gameID, playerID string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)

	if gameID != "" {
		fields = append(fields, zap.String("game_id", gameID))
	}

	if playerID != "" {
		fields = append(fields, zap.String("player_id", playerID))
	}

	return Get().With(fields...)
}

// WithClientContext returns a logger with client-related context
func WithClientContext(clientID, playerID, gameID string) *zap.Logger {
	fields := make([]zap.Field, 0, 3)

	if clientID != "" {
		fields = append(fields, zap.String("client_id", clientID))
	}

	if playerID != "" {
		fields = append(fields, zap.String("player_id", playerID))
	}

	if gameID != "" {
		fields = append(fields, zap.String("game_id", gameID))
	}

	return Get().With(fields...)
}

// WithTickContext returns a logger scoped to a single tick of the engine's
// event log, tagged with the game and the sequence number being applied.
func WithTickContext(gameID string, seq int64) *zap.Logger {
	return Get().With(zap.String("game_id", gameID), zap.Int64("seq", seq))
}

// WithIntentContext returns a logger scoped to one intent being applied
// within a tick, tagged with the game, the intent's kind, and its ID so a
// rejected (Illegal/Malformed) intent can be traced back to the submission
// that produced it.
func WithIntentContext(gameID, intentType, intentID string) *zap.Logger {
	fields := make([]zap.Field, 0, 3)

	if gameID != "" {
		fields = append(fields, zap.String("game_id", gameID))
	}

	if intentType != "" {
		fields = append(fields, zap.String("intent_type", intentType))
	}

	if intentID != "" {
		fields = append(fields, zap.String("intent_id", intentID))
	}

	return Get().With(fields...)
}

// WithReplayContext returns a logger scoped to a replay run, tagged with the
// game being reconstructed and the length of the log being replayed.
func WithReplayContext(gameID string, entryCount int) *zap.Logger {
	return Get().With(zap.String("game_id", gameID), zap.Int("entry_count", entryCount))
}
