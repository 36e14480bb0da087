// Package db stores recorded voice samples in SQLite so the training
// set survives restarts and can be retrained against at any time.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/steerlab/voxsteer/internal/db/migrations"
)

// Sample is one labeled recording. PCM holds raw Int16LE mono audio.
type Sample struct {
	ID         int64
	Label      string
	SampleRate int
	PCM        []byte
	CreatedAt  time.Time
}

// Library is the on-disk sample collection.
type Library struct {
	db *sql.DB
}

// Open creates or opens the library at path and applies migrations.
func Open(path string) (*Library, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite does not handle concurrent writers well; serialize all
	// access through a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Library{db: db}, nil
}

// Add stores a recording and returns its row ID.
func (l *Library) Add(label string, sampleRate int, pcm []byte) (int64, error) {
	if label == "" {
		return 0, fmt.Errorf("db: sample label is required")
	}
	if len(pcm) == 0 {
		return 0, fmt.Errorf("db: refusing to store an empty recording")
	}
	res, err := l.db.Exec(
		`INSERT INTO samples (label, sample_rate, pcm, created_at) VALUES (?, ?, ?, ?)`,
		label, sampleRate, pcm, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("db: insert sample: %w", err)
	}
	return res.LastInsertId()
}

// List returns all samples in insertion order.
func (l *Library) List() ([]Sample, error) {
	return l.query(`SELECT id, label, sample_rate, pcm, created_at FROM samples ORDER BY id`)
}

// ListByLabel returns the samples recorded for one label.
func (l *Library) ListByLabel(label string) ([]Sample, error) {
	return l.query(`SELECT id, label, sample_rate, pcm, created_at FROM samples WHERE label = ? ORDER BY id`, label)
}

func (l *Library) query(q string, args ...any) ([]Sample, error) {
	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("db: query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		var created int64
		if err := rows.Scan(&s.ID, &s.Label, &s.SampleRate, &s.PCM, &created); err != nil {
			return nil, fmt.Errorf("db: scan sample: %w", err)
		}
		s.CreatedAt = time.Unix(created, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Counts returns the number of samples per label.
func (l *Library) Counts() (map[string]int, error) {
	rows, err := l.db.Query(`SELECT label, COUNT(*) FROM samples GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("db: count samples: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("db: scan count: %w", err)
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// Delete removes one sample by ID.
func (l *Library) Delete(id int64) error {
	_, err := l.db.Exec(`DELETE FROM samples WHERE id = ?`, id)
	return err
}

// DeleteLabel removes every sample recorded for a label.
func (l *Library) DeleteLabel(label string) error {
	_, err := l.db.Exec(`DELETE FROM samples WHERE label = ?`, label)
	return err
}

// Close closes the underlying database.
func (l *Library) Close() error {
	return l.db.Close()
}
