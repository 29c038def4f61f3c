package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store caps: once the table grows past maxRecords, only the newest
// keepRecords survive the trim.
const (
	maxRecords  = 1000
	keepRecords = 500
)

// ScoreEntry is one player's stored result.
type ScoreEntry struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Score      int       `json:"score"`
	Streak     int       `json:"streak"`
	Multiplier int       `json:"multiplier"`
	Timestamp  time.Time `json:"timestamp"`
}

// Position holds 1-based leaderboard ranks, 0 meaning absent.
type Position struct {
	Daily  int `json:"daily"`
	Weekly int `json:"weekly"`
}

// ScoreStore persists player scores in sqlite, one row per user.
type ScoreStore struct {
	db *sql.DB
}

func OpenScoreStore(path string) (*ScoreStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Single connection: sqlite serializes writers anyway, and a pool
	// would split :memory: databases per connection.
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS scores (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 0,
		streak INTEGER NOT NULL DEFAULT 0,
		multiplier INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP NOT NULL
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, err
	}
	return &ScoreStore{db: db}, nil
}

func (s *ScoreStore) Close() error {
	return s.db.Close()
}

// SaveScore upserts by user id. The incoming score already represents
// the player's lifetime total, so it replaces the stored value; streak
// and multiplier keep their all-time maxima. Returns the record count
// after any trim.
func (s *ScoreStore) SaveScore(e ScoreEntry) (int, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	query := `
	INSERT INTO scores (user_id, username, score, streak, multiplier, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = excluded.username,
		score = excluded.score,
		streak = MAX(streak, excluded.streak),
		multiplier = MAX(multiplier, excluded.multiplier),
		updated_at = excluded.updated_at;
	`
	if _, err := s.db.Exec(query, e.UserID, e.Username, e.Score, e.Streak, e.Multiplier, e.Timestamp); err != nil {
		return 0, err
	}

	count, err := s.Count()
	if err != nil {
		return 0, err
	}
	if count > maxRecords {
		trim := `
		DELETE FROM scores WHERE user_id NOT IN (
			SELECT user_id FROM scores ORDER BY updated_at DESC LIMIT ?
		);
		`
		if _, err := s.db.Exec(trim, keepRecords); err != nil {
			return 0, err
		}
		count = keepRecords
	}
	return count, nil
}

// Daily returns the top records whose timestamp falls on the date of
// now, score descending.
func (s *ScoreStore) Daily(now time.Time, limit int) ([]ScoreEntry, error) {
	start, end := dayBounds(now)
	rows, err := s.db.Query(`
		SELECT user_id, username, score, streak, multiplier, updated_at
		FROM scores
		WHERE updated_at >= ? AND updated_at < ?
		ORDER BY score DESC
		LIMIT ?`, start, end, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Weekly returns the top records of all time, score descending. The
// name is kept for wire compatibility: the reference service's
// "weekly" board has always been cumulative.
func (s *ScoreStore) Weekly(limit int) ([]ScoreEntry, error) {
	rows, err := s.db.Query(`
		SELECT user_id, username, score, streak, multiplier, updated_at
		FROM scores
		ORDER BY score DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// UserPosition returns the user's 1-based ranks in the daily and
// weekly boards, 0 for a board the user is absent from.
func (s *ScoreStore) UserPosition(userID string, now time.Time) (Position, error) {
	var pos Position

	var score int
	var updatedAt time.Time
	err := s.db.QueryRow(
		`SELECT score, updated_at FROM scores WHERE user_id = ?`, userID,
	).Scan(&score, &updatedAt)
	if err == sql.ErrNoRows {
		return pos, nil
	}
	if err != nil {
		return pos, err
	}

	var ahead int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM scores WHERE score > ?`, score,
	).Scan(&ahead); err != nil {
		return pos, err
	}
	pos.Weekly = ahead + 1

	start, end := dayBounds(now)
	if !updatedAt.Before(start) && updatedAt.Before(end) {
		if err := s.db.QueryRow(
			`SELECT COUNT(*) FROM scores WHERE updated_at >= ? AND updated_at < ? AND score > ?`,
			start, end, score,
		).Scan(&ahead); err != nil {
			return pos, err
		}
		pos.Daily = ahead + 1
	}
	return pos, nil
}

// Count reports the number of stored records.
func (s *ScoreStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM scores`).Scan(&n)
	return n, err
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

func scanEntries(rows *sql.Rows) ([]ScoreEntry, error) {
	defer rows.Close()
	entries := make([]ScoreEntry, 0)
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Score, &e.Streak, &e.Multiplier, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
