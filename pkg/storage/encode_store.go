// Package storage persists encoded WSPR transmissions in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/wsprhub/wsprd/pkg/protocol"
	"github.com/wsprhub/wsprd/pkg/wspr"
)

// EncodeStore handles persistent storage of encoded transmissions
type EncodeStore struct {
	db           *sql.DB
	dbPath       string
	maxEncodings int
}

// NewEncodeStore creates a new encoding store with SQLite backend
func NewEncodeStore(dbPath string, maxEncodings int) (*EncodeStore, error) {
	store := &EncodeStore{
		dbPath:       dbPath,
		maxEncodings: maxEncodings,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize encode store: %w", err)
	}
	return store, nil
}

// initialize sets up the database connection and creates tables
func (es *EncodeStore) initialize() error {
	if es.dbPath == "" {
		es.dbPath = "./wsprd.db"
	}

	if err := os.MkdirAll(filepath.Dir(es.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	connectionString := es.dbPath + "?_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on"

	db, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	es.db = db

	if err := es.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if err := es.createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// createTables creates the database schema
func (es *EncodeStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS encodings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		callsign TEXT NOT NULL,
		grid TEXT NOT NULL,
		power INTEGER NOT NULL,
		symbols TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS encode_stats (
		id INTEGER PRIMARY KEY,
		total_encodings INTEGER NOT NULL DEFAULT 0,
		last_cleanup DATETIME
	);

	-- Initialize stats if empty
	INSERT OR IGNORE INTO encode_stats (id, total_encodings) VALUES (1, 0);
	`

	_, err := es.db.Exec(schema)
	return err
}

// createIndexes creates indexes for common queries
func (es *EncodeStore) createIndexes() error {
	indexes := `
	CREATE INDEX IF NOT EXISTS idx_encodings_timestamp ON encodings(timestamp);
	CREATE INDEX IF NOT EXISTS idx_encodings_callsign ON encodings(callsign);
	`

	_, err := es.db.Exec(indexes)
	return err
}

// SaveEncoding stores one encoded transmission and returns the record
func (es *EncodeStore) SaveEncoding(req protocol.EncodeRequest, symbols [wspr.SymbolCount]byte) (protocol.Encoding, error) {
	now := time.Now().UTC()

	result, err := es.db.Exec(`
		INSERT INTO encodings (timestamp, callsign, grid, power, symbols)
		VALUES (?, ?, ?, ?, ?)`,
		now, req.Callsign, req.Grid, req.Power, protocol.FormatSymbols(symbols))
	if err != nil {
		return protocol.Encoding{}, fmt.Errorf("failed to insert encoding: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return protocol.Encoding{}, fmt.Errorf("failed to get encoding id: %w", err)
	}

	if _, err := es.db.Exec(`UPDATE encode_stats SET total_encodings = total_encodings + 1 WHERE id = 1`); err != nil {
		return protocol.Encoding{}, fmt.Errorf("failed to update stats: %w", err)
	}

	return protocol.Encoding{
		ID:        int(id),
		Timestamp: now,
		Callsign:  req.Callsign,
		Grid:      req.Grid,
		Power:     req.Power,
		Symbols:   protocol.SymbolsToInts(symbols),
	}, nil
}

// EncodingQuery represents query parameters for retrieving encodings
type EncodingQuery struct {
	Limit    int
	Offset   int
	Since    *time.Time
	Callsign string
}

// GetEncodings retrieves encodings, newest first
func (es *EncodeStore) GetEncodings(query EncodingQuery) ([]protocol.Encoding, error) {
	sqlQuery := `
		SELECT id, timestamp, callsign, grid, power, symbols
		FROM encodings
		WHERE 1=1`
	var args []interface{}

	if query.Callsign != "" {
		sqlQuery += " AND callsign = ?"
		args = append(args, query.Callsign)
	}
	if query.Since != nil {
		sqlQuery += " AND timestamp >= ?"
		args = append(args, query.Since)
	}

	sqlQuery += " ORDER BY timestamp DESC, id DESC"

	if query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, query.Limit)
	}
	if query.Offset > 0 {
		sqlQuery += " OFFSET ?"
		args = append(args, query.Offset)
	}

	rows, err := es.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query encodings: %w", err)
	}
	defer rows.Close()

	var encodings []protocol.Encoding
	for rows.Next() {
		var enc protocol.Encoding
		var symbols string

		if err := rows.Scan(&enc.ID, &enc.Timestamp, &enc.Callsign, &enc.Grid, &enc.Power, &symbols); err != nil {
			return nil, fmt.Errorf("failed to scan encoding: %w", err)
		}

		enc.Symbols, err = protocol.ParseSymbols(symbols)
		if err != nil {
			return nil, fmt.Errorf("corrupt symbols for encoding %d: %w", enc.ID, err)
		}
		encodings = append(encodings, enc)
	}

	return encodings, rows.Err()
}

// GetEncoding retrieves a single encoding by id
func (es *EncodeStore) GetEncoding(id int) (protocol.Encoding, error) {
	var enc protocol.Encoding
	var symbols string

	err := es.db.QueryRow(`
		SELECT id, timestamp, callsign, grid, power, symbols
		FROM encodings WHERE id = ?`, id).
		Scan(&enc.ID, &enc.Timestamp, &enc.Callsign, &enc.Grid, &enc.Power, &symbols)
	if err != nil {
		return enc, fmt.Errorf("failed to get encoding %d: %w", id, err)
	}

	enc.Symbols, err = protocol.ParseSymbols(symbols)
	if err != nil {
		return enc, fmt.Errorf("corrupt symbols for encoding %d: %w", id, err)
	}
	return enc, nil
}

// GetStats returns store statistics
func (es *EncodeStore) GetStats() (protocol.Stats, error) {
	var stats protocol.Stats
	var lastCleanup sql.NullTime

	err := es.db.QueryRow(`SELECT total_encodings, last_cleanup FROM encode_stats WHERE id = 1`).
		Scan(&stats.TotalEncodings, &lastCleanup)
	if err != nil {
		return stats, fmt.Errorf("failed to get stats: %w", err)
	}

	if lastCleanup.Valid {
		stats.LastCleanup = lastCleanup.Time
	}
	return stats, nil
}

// CleanupOldEncodings removes the oldest rows beyond the configured
// maximum and returns how many were deleted
func (es *EncodeStore) CleanupOldEncodings() (int, error) {
	if es.maxEncodings <= 0 {
		return 0, nil
	}

	result, err := es.db.Exec(`
		DELETE FROM encodings WHERE id NOT IN (
			SELECT id FROM encodings ORDER BY timestamp DESC, id DESC LIMIT ?
		)`, es.maxEncodings)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup encodings: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}

	if _, err := es.db.Exec(`UPDATE encode_stats SET last_cleanup = ? WHERE id = 1`, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("failed to record cleanup time: %w", err)
	}
	return int(deleted), nil
}

// Close closes the database connection
func (es *EncodeStore) Close() error {
	if es.db != nil {
		return es.db.Close()
	}
	return nil
}
