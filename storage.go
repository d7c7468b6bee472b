// HubBridge - Transition Persistence
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Transition is one persisted activity change of a hub.
type Transition struct {
	ID           int64     `json:"id"`
	Hub          string    `json:"hub"`
	ActivityID   int64     `json:"activity_id"`
	ActivitySlug string    `json:"activity_slug"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
}

// TransitionStore persists activity transitions in a SQLite database so the
// history survives bridge restarts.
type TransitionStore struct {
	db    *sql.DB
	mutex sync.Mutex
}

// NewTransitionStore opens (or creates) the transition database.
func NewTransitionStore(path string) (*TransitionStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS transitions (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		hub           TEXT NOT NULL,
		activity_id   INTEGER NOT NULL,
		activity_slug TEXT NOT NULL,
		state         TEXT NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_transitions_hub ON transitions(hub, created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Printf("Transition store opened: %s", path)
	return &TransitionStore{db: db}, nil
}

// Record appends one transition.
func (ts *TransitionStore) Record(hub string, activityID int64, activitySlug, state string) error {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	_, err := ts.db.Exec(
		`INSERT INTO transitions (hub, activity_id, activity_slug, state, created_at) VALUES (?, ?, ?, ?, ?)`,
		hub, activityID, activitySlug, state, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// History returns the most recent transitions of a hub, newest first.
func (ts *TransitionStore) History(hub string, limit int) ([]Transition, error) {
	if limit < 1 {
		limit = 50
	}

	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	rows, err := ts.db.Query(
		`SELECT id, hub, activity_id, activity_slug, state, created_at
		 FROM transitions WHERE hub = ? ORDER BY id DESC LIMIT ?`,
		hub, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	transitions := make([]Transition, 0, limit)
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.ID, &t.Hub, &t.ActivityID, &t.ActivitySlug, &t.State, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		transitions = append(transitions, t)
	}

	return transitions, rows.Err()
}

// Close closes the database.
func (ts *TransitionStore) Close() error {
	return ts.db.Close()
}
