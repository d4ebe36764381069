// Package config loads the server binary's configuration surface (§6 CLI /
// environment) via viper, grounded on the teacher's env-prefixed viper
// wiring in cmd/cli/cmd/root.go, generalized from CLI flags to a server
// config struct consumed by cmd/server.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config mirrors §6's documented IMPERIUM_* environment surface.
type Config struct {
	BindAddr string

	MinPlayers   int
	MaxPlayers   int
	MaxObservers int
	GameCode     string

	TurnBaseSeconds    int
	TurnMinSeconds     int
	TurnMaxSeconds     int
	TurnPerUnitSeconds int
	TurnPerCitySeconds int

	RulesPath string

	DisconnectGraceSeconds int
	LogLevel               string

	ReplayStorePath string
	HorizWrap       bool
	MapSeed         uint64
	TurnLimit       int
	CultureThresholdPct int
}

// Load reads .env (if present, local dev only) then environment variables
// prefixed IMPERIUM_, falling back to sensible defaults for anything unset.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("IMPERIUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("bind_addr", ":8080")
	v.SetDefault("min_players", 2)
	v.SetDefault("max_players", 8)
	v.SetDefault("max_observers", 8)
	v.SetDefault("game_code", "")
	v.SetDefault("turn_base_seconds", 30)
	v.SetDefault("turn_min_seconds", 15)
	v.SetDefault("turn_max_seconds", 180)
	v.SetDefault("turn_per_unit_seconds", 1)
	v.SetDefault("turn_per_city_seconds", 3)
	v.SetDefault("rules_path", "")
	v.SetDefault("disconnect_grace_seconds", 60)
	v.SetDefault("log_level", "info")
	v.SetDefault("replay_store_path", "imperium-replays.db")
	v.SetDefault("horiz_wrap", true)
	v.SetDefault("map_seed", 0)
	v.SetDefault("turn_limit", 0)
	v.SetDefault("culture_threshold_pct", 60)

	return Config{
		BindAddr:               v.GetString("bind_addr"),
		MinPlayers:             v.GetInt("min_players"),
		MaxPlayers:             v.GetInt("max_players"),
		MaxObservers:           v.GetInt("max_observers"),
		GameCode:               v.GetString("game_code"),
		TurnBaseSeconds:        v.GetInt("turn_base_seconds"),
		TurnMinSeconds:         v.GetInt("turn_min_seconds"),
		TurnMaxSeconds:         v.GetInt("turn_max_seconds"),
		TurnPerUnitSeconds:     v.GetInt("turn_per_unit_seconds"),
		TurnPerCitySeconds:     v.GetInt("turn_per_city_seconds"),
		RulesPath:              v.GetString("rules_path"),
		DisconnectGraceSeconds: v.GetInt("disconnect_grace_seconds"),
		LogLevel:               v.GetString("log_level"),
		ReplayStorePath:        v.GetString("replay_store_path"),
		HorizWrap:              v.GetBool("horiz_wrap"),
		MapSeed:                uint64(v.GetInt64("map_seed")),
		TurnLimit:              v.GetInt("turn_limit"),
		CultureThresholdPct:    v.GetInt("culture_threshold_pct"),
	}
}
