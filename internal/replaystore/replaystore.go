// Package replaystore persists finished games' replay.File exports to a
// durable sqlite archive (§4.F: "servers should persist completed replays
// somewhere durable"), grounded on the teacher's postgres repository shape
// (GameRepo/PhaseRepo: one struct wrapping *sql.DB, one method per query)
// adapted from postgres placeholders to sqlite's and from a relational
// schema to a single blob column, since a replay.File is opaque outside
// the engine that produced it. The blob is JSON-encoded then lz4-framed
// to keep archived games small without pulling in a full columnar schema
// for data nothing but replay.Import ever reads back.
package replaystore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pierrec/lz4/v4"
	_ "modernc.org/sqlite"

	"github.com/backbay/imperium/internal/replay"
)

const schema = `
CREATE TABLE IF NOT EXISTS replays (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	game_code    TEXT NOT NULL,
	turn_count   INTEGER NOT NULL,
	rules_hash   INTEGER NOT NULL,
	finished_at  DATETIME NOT NULL,
	payload      BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_replays_game_code ON replays(game_code);
CREATE INDEX IF NOT EXISTS idx_replays_finished_at ON replays(finished_at);
`

// Store is a durable archive of completed games' replay tapes.
type Store struct {
	db *sql.DB
}

// Open connects to (creating if absent) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("replaystore open: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid SQLITE_BUSY under concurrent access
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("replaystore migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Summary describes an archived replay without its full command tape.
type Summary struct {
	ID         int64
	GameCode   string
	TurnCount  int
	RulesHash  uint64
	FinishedAt time.Time
}

// Save archives f under gameCode, returning the new row's id.
func (s *Store) Save(ctx context.Context, gameCode string, f replay.File, finishedAt time.Time) (int64, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return 0, fmt.Errorf("marshal replay: %w", err)
	}
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return 0, fmt.Errorf("compress replay: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("compress replay: %w", err)
	}

	turnCount := 0
	for _, rec := range f.Commands {
		if rec.Turn+1 > turnCount {
			turnCount = rec.Turn + 1
		}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO replays (game_code, turn_count, rules_hash, finished_at, payload) VALUES (?, ?, ?, ?, ?)`,
		gameCode, turnCount, f.RulesHash, finishedAt, buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("insert replay: %w", err)
	}
	return res.LastInsertId()
}

// Load decompresses and decodes the replay archived under id.
func (s *Store) Load(ctx context.Context, id int64) (replay.File, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM replays WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return replay.File{}, fmt.Errorf("replay %d not found", id)
	}
	if err != nil {
		return replay.File{}, fmt.Errorf("load replay: %w", err)
	}

	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
	if err != nil {
		return replay.File{}, fmt.Errorf("decompress replay: %w", err)
	}
	var f replay.File
	if err := json.Unmarshal(raw, &f); err != nil {
		return replay.File{}, fmt.Errorf("unmarshal replay: %w", err)
	}
	return f, nil
}

// ListByGameCode returns every archived replay for gameCode, most recent
// first (a game code can be reused across distinct matches).
func (s *Store) ListByGameCode(ctx context.Context, gameCode string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_code, turn_count, rules_hash, finished_at FROM replays
		 WHERE game_code = ? ORDER BY finished_at DESC`, gameCode)
	if err != nil {
		return nil, fmt.Errorf("list replays: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.GameCode, &sm.TurnCount, &sm.RulesHash, &sm.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan replay: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// ListRecent returns the most recently finished replays across all games,
// up to limit.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_code, turn_count, rules_hash, finished_at FROM replays
		 ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent replays: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.GameCode, &sm.TurnCount, &sm.RulesHash, &sm.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan replay: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}
