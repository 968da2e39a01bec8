package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wsprhub/wsprd/pkg/config"
	"github.com/wsprhub/wsprd/pkg/logging"
	"github.com/wsprhub/wsprd/pkg/protocol"
	"github.com/wsprhub/wsprd/pkg/storage"
)

// WSPRDaemon serves the encoding API and the websocket feed
type WSPRDaemon struct {
	config *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	store     *storage.EncodeStore
	webServer *http.Server
	startTime time.Time

	// Connected websocket clients, guarded by clientsMu
	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
}

// NewWSPRDaemon creates a new daemon instance
func NewWSPRDaemon(cfg *config.Config) (*WSPRDaemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	store, err := storage.NewEncodeStore(cfg.Storage.DatabasePath, cfg.Storage.MaxEncodings)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open encode store: %w", err)
	}

	daemon := &WSPRDaemon{
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		store:     store,
		startTime: time.Now(),
		clients:   make(map[*websocket.Conn]bool),
	}

	daemon.setupWebServer()
	return daemon, nil
}

// Start starts the daemon
func (d *WSPRDaemon) Start() error {
	logging.Info("daemon", "Starting wsprd daemon...")

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		logging.Infof("daemon", "Starting web server on %s", d.webServer.Addr)
		if err := d.webServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Errorf("daemon", "Web server error: %v", err)
		}
	}()

	return nil
}

// Stop stops the daemon gracefully
func (d *WSPRDaemon) Stop() error {
	logging.Info("daemon", "Stopping daemon...")

	d.cancel()

	if d.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.webServer.Shutdown(ctx); err != nil {
			logging.Errorf("daemon", "Web server shutdown error: %v", err)
		}
	}

	d.closeClients()
	d.wg.Wait()

	if err := d.store.Close(); err != nil {
		logging.Errorf("daemon", "Encode store close error: %v", err)
	}

	logging.Info("daemon", "Daemon stopped")
	return nil
}

// setupWebServer initializes the web server and routes
func (d *WSPRDaemon) setupWebServer() {
	gin.SetMode(gin.ReleaseMode)
	router := d.buildRouter()

	addr := fmt.Sprintf("%s:%d", d.config.Web.BindAddress, d.config.Web.Port)
	d.webServer = &http.Server{
		Addr:    addr,
		Handler: router,
	}
}

// buildRouter wires the API routes
func (d *WSPRDaemon) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/status", d.handleGetStatus)
		api.POST("/encode", d.handleEncode)
		api.GET("/encodings", d.handleGetEncodings)
		api.GET("/encodings/:id", d.handleGetEncoding)
		api.GET("/stats", d.handleGetStats)
		api.POST("/cleanup", d.handleCleanup)
	}

	router.GET("/ws", d.handleWebSocket)

	return router
}

// broadcastEncoding pushes a new encoding to every connected client,
// dropping clients whose connection has failed
func (d *WSPRDaemon) broadcastEncoding(encoding protocol.Encoding) {
	d.clientsMu.Lock()
	defer d.clientsMu.Unlock()

	for conn := range d.clients {
		if err := conn.WriteJSON(encoding); err != nil {
			logging.Debugf("daemon", "WebSocket write failed, dropping client: %v", err)
			conn.Close()
			delete(d.clients, conn)
		}
	}
}

func (d *WSPRDaemon) addClient(conn *websocket.Conn) {
	d.clientsMu.Lock()
	d.clients[conn] = true
	d.clientsMu.Unlock()
}

func (d *WSPRDaemon) removeClient(conn *websocket.Conn) {
	d.clientsMu.Lock()
	if d.clients[conn] {
		conn.Close()
		delete(d.clients, conn)
	}
	d.clientsMu.Unlock()
}

func (d *WSPRDaemon) closeClients() {
	d.clientsMu.Lock()
	for conn := range d.clients {
		conn.Close()
		delete(d.clients, conn)
	}
	d.clientsMu.Unlock()
}
