package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"widget-canvas/core"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Each table holds at most one row (id = 1).
const schema = `
CREATE TABLE IF NOT EXISTS canvas_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS header_image (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);`

type sqliteStore struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the SQLite database at dataSourceName.
// The parent directory of a plain file path is created as well.
func NewStore(dataSourceName string) (*sqliteStore, error) {
	if dir, ok := databaseDir(dataSourceName); ok {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps writes ordered and ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &sqliteStore{db}, nil
}

// databaseDir returns the directory of a file-path DSN. In-memory databases
// and "file:" URIs are left to the driver.
func databaseDir(dataSourceName string) (string, bool) {
	if dataSourceName == "" || dataSourceName == ":memory:" || strings.HasPrefix(dataSourceName, "file:") {
		return "", false
	}
	return filepath.Dir(dataSourceName), true
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// CanvasStore implementation
func (s *sqliteStore) SaveCanvas(ctx context.Context, doc *core.CanvasDocument) error {
	data, err := core.EncodeCanvas(doc)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode canvas")
		return err
	}
	log := logrus.WithField("data_length", len(data))

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO canvas_state (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC())
	if err != nil {
		log.WithError(err).Error("Failed to save canvas")
		return core.IOError("Failed to write canvas data", err)
	}

	log.Info("Canvas saved successfully")
	return nil
}

func (s *sqliteStore) LoadCanvas(ctx context.Context) (*core.CanvasDocument, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM canvas_state WHERE id = 1").Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.Info("No canvas saved, returning default canvas")
			return core.DefaultDocument(), nil
		}
		logrus.WithError(err).Error("Failed to read canvas")
		return nil, core.IOError("Failed to read canvas data", err)
	}

	return core.DecodeCanvas([]byte(data))
}

// HeaderImageStore implementation
func (s *sqliteStore) SaveHeaderImage(ctx context.Context, dataURL string) error {
	data, err := core.ParseDataURL(dataURL)
	if err != nil {
		logrus.WithError(err).Warn("Rejected header image")
		return err
	}
	if data == nil {
		data = []byte{}
	}
	log := logrus.WithField("data_length", len(data))

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO header_image (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		data, time.Now().UTC())
	if err != nil {
		log.WithError(err).Error("Failed to save header image")
		return core.IOError("Failed to write header image", err)
	}

	log.Info("Header image saved successfully")
	return nil
}

func (s *sqliteStore) LoadHeaderImage(ctx context.Context) (string, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM header_image WHERE id = 1").Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		logrus.WithError(err).Error("Failed to read header image")
		return "", false, core.IOError("Failed to read header image", err)
	}

	return core.EncodePNGDataURL(data), true, nil
}

func (s *sqliteStore) DeleteHeaderImage(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM header_image WHERE id = 1"); err != nil {
		logrus.WithError(err).Error("Failed to delete header image")
		return core.IOError("Failed to delete header image", err)
	}
	return nil
}
