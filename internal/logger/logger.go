// Package logger wraps zap with the structured context helpers the server
// and engine packages expect (game/player/connection fields), grounded on
// the teacher's logger.go.
package logger

import (
	"os"

	"go.uber.org/zap"
)

var global *zap.Logger

// Init builds the global logger. Level defaults to "info"; format switches
// to JSON production encoding when IMPERIUM_ENV=production.
func Init(level string) error {
	var cfg zap.Config
	if os.Getenv("IMPERIUM_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	global = built
	return nil
}

// Get returns the global logger, falling back to a development logger if
// Init was never called (e.g. in a _test.go file).
func Get() *zap.Logger {
	if global == nil {
		global, _ = zap.NewDevelopment()
	}
	return global
}

func Sync() error {
	if global != nil {
		return global.Sync()
	}
	return nil
}

// WithGame scopes the logger to a game and, optionally, a player within it.
func WithGame(gameID string, player int, hasPlayer bool) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if gameID != "" {
		fields = append(fields, zap.String("game_id", gameID))
	}
	if hasPlayer {
		fields = append(fields, zap.Int("player", player))
	}
	return Get().With(fields...)
}

// WithConnection scopes the logger to a websocket connection.
func WithConnection(connID, gameID string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if connID != "" {
		fields = append(fields, zap.String("conn_id", connID))
	}
	if gameID != "" {
		fields = append(fields, zap.String("game_id", gameID))
	}
	return Get().With(fields...)
}
