// Package protocol defines the JSON types shared by the wsprd API,
// the websocket feed and the storage layer.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wsprhub/wsprd/pkg/wspr"
)

// EncodeRequest is a request to encode one WSPR message
type EncodeRequest struct {
	Callsign string `json:"callsign"`
	Grid     string `json:"grid"`
	Power    int    `json:"power"`
}

// Encoding is one encoded WSPR transmission
type Encoding struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Callsign  string    `json:"callsign"`
	Grid      string    `json:"grid"`
	Power     int       `json:"power"`
	Symbols   []int     `json:"symbols"`
}

// Stats represents encoding store statistics
type Stats struct {
	TotalEncodings int       `json:"total_encodings"`
	LastCleanup    time.Time `json:"last_cleanup"`
}

// Status represents the current daemon status
type Status struct {
	Callsign  string    `json:"callsign"`
	Grid      string    `json:"grid"`
	Power     int       `json:"power"`
	Uptime    string    `json:"uptime"`
	StartTime time.Time `json:"start_time"`
	Version   string    `json:"version"`
}

// SymbolsToInts widens a symbol buffer for JSON output
func SymbolsToInts(symbols [wspr.SymbolCount]byte) []int {
	out := make([]int, wspr.SymbolCount)
	for i, s := range symbols {
		out[i] = int(s)
	}
	return out
}

// FormatSymbols renders a symbol buffer as a comma-separated string,
// the form stored in the database and accepted by ParseSymbols.
func FormatSymbols(symbols [wspr.SymbolCount]byte) string {
	var b strings.Builder
	for i, s := range symbols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('0' + s)
	}
	return b.String()
}

// ParseSymbols parses a comma-separated symbol string back into tone
// indices, rejecting wrong lengths and out-of-range values.
func ParseSymbols(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != wspr.SymbolCount {
		return nil, fmt.Errorf("expected %d symbols, got %d", wspr.SymbolCount, len(parts))
	}

	symbols := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}
		if v < 0 || v > 3 {
			return nil, fmt.Errorf("symbol %d out of range: %d", i, v)
		}
		symbols[i] = v
	}
	return symbols, nil
}
