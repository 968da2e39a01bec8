package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wsprhub/wsprd/pkg/logging"
	"github.com/wsprhub/wsprd/pkg/protocol"
	"github.com/wsprhub/wsprd/pkg/storage"
	"github.com/wsprhub/wsprd/pkg/wspr"
)

// handleGetStatus returns daemon and station information
func (d *WSPRDaemon) handleGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.Status{
		Callsign:  d.config.Station.Callsign,
		Grid:      d.config.Station.Grid,
		Power:     d.config.Station.PowerDBm,
		Uptime:    time.Since(d.startTime).Round(time.Second).String(),
		StartTime: d.startTime,
		Version:   Version,
	})
}

// errorKind names the failing input field for API clients
func errorKind(err error) string {
	switch {
	case errors.Is(err, wspr.ErrInvalidCallsign):
		return "InvalidCallsign"
	case errors.Is(err, wspr.ErrInvalidGrid):
		return "InvalidGrid"
	case errors.Is(err, wspr.ErrInvalidPower):
		return "InvalidPower"
	default:
		return "Internal"
	}
}

// handleEncode encodes one message, persists it and broadcasts it to
// websocket clients. Empty fields fall back to the configured station.
func (d *WSPRDaemon) handleEncode(c *gin.Context) {
	// Power is a pointer so an explicit 0 dBm is not mistaken for an
	// absent field.
	var body struct {
		Callsign string `json:"callsign"`
		Grid     string `json:"grid"`
		Power    *int   `json:"power"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	req := protocol.EncodeRequest{
		Callsign: body.Callsign,
		Grid:     body.Grid,
		Power:    d.config.Station.PowerDBm,
	}
	if req.Callsign == "" {
		req.Callsign = d.config.Station.Callsign
	}
	if req.Grid == "" {
		req.Grid = d.config.Station.Grid
	}
	if body.Power != nil {
		req.Power = *body.Power
	}

	symbols, err := wspr.Encode(req.Callsign, req.Grid, req.Power)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"kind":  errorKind(err),
		})
		return
	}

	encoding, err := d.store.SaveEncoding(req, symbols)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to save encoding: %v", err),
		})
		return
	}

	logging.Infof("api", "Encoded %s %s %d dBm (id %d)", req.Callsign, req.Grid, req.Power, encoding.ID)
	d.broadcastEncoding(encoding)

	c.JSON(http.StatusOK, encoding)
}

// handleGetEncodings returns encoding history, newest first
func (d *WSPRDaemon) handleGetEncodings(c *gin.Context) {
	query := storage.EncodingQuery{
		Callsign: c.Query("callsign"),
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		query.Limit = n
	} else {
		query.Limit = 50
	}

	if offset := c.Query("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		query.Offset = n
	}

	encodings, err := d.store.GetEncodings(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to get encodings: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"encodings": encodings,
		"count":     len(encodings),
	})
}

// handleGetEncoding returns a single encoding by id
func (d *WSPRDaemon) handleGetEncoding(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	encoding, err := d.store.GetEncoding(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("encoding %d not found", id),
		})
		return
	}

	c.JSON(http.StatusOK, encoding)
}

// handleGetStats returns store statistics
func (d *WSPRDaemon) handleGetStats(c *gin.Context) {
	stats, err := d.store.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to get stats: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleCleanup trims the encoding history to the configured maximum
func (d *WSPRDaemon) handleCleanup(c *gin.Context) {
	deleted, err := d.store.CleanupOldEncodings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to cleanup encodings: %v", err),
		})
		return
	}

	logging.Infof("api", "Cleanup removed %d encodings", deleted)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// handleWebSocket registers a client for the live encoding feed. Each
// new encoding is pushed as one JSON message.
func (d *WSPRDaemon) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warnf("api", "WebSocket upgrade failed: %v", err)
		return
	}

	logging.Debug("api", "WebSocket client connected")
	d.addClient(conn)
	defer d.removeClient(conn)

	// Close the connection when the daemon shuts down so the read
	// loop below unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-d.ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	// Drain client messages until the connection drops; the feed is
	// one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			logging.Debugf("api", "WebSocket client disconnected: %v", err)
			return
		}
	}
}
