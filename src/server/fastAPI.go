package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"confluence-engine/src/engine"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
	"confluence-engine/src/timeframe"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config *models.MConfig
	Engine *engine.Engine
	Logger *logger.Logger
	router *gin.Engine

	// WebSocket clients. The map belongs to the hub goroutine alone;
	// clientCount mirrors its size for handlers on other goroutines.
	clients     map[*Client]struct{}
	clientCount atomic.Int64
	broadcast   chan *models.MLatestData // Strongly typed and Buffered Queue
	register    chan *Client
	unregister  chan *Client

	// Local cache
	latestState *models.MLatestData
	stateMutex  sync.RWMutex

	// Recent scans, newest last, capped at Engine.ScanHistorySize
	scanHistory  []*models.MScanResult
	historyMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, eng *engine.Engine, log *logger.Logger) *FastAPIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:  cfg,
		Engine:  eng,
		Logger:  log,
		router:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		// Queue size of 256 ensures we can handle bursts of updates
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MLatestData{
			Type:      "INITIAL",
			Timestamp: 0,
		},
	}

	// Add CORS Middleware
	s.router.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	// REST API endpoints
	s.router.GET("/api/health", s.getHealth)
	s.router.GET("/api/timeframes", s.getTimeframes)
	s.router.GET("/api/scan/:symbol", s.getScan)
	s.router.GET("/api/options/:symbol", s.getOptions)
	s.router.GET("/api/learning/:symbol", s.getLearning)
	s.router.POST("/api/learning/:symbol/rebuild", s.rebuildLearning)
	s.router.POST("/api/outcomes/:symbol", s.postOutcome)
	s.router.GET("/api/history", s.getScanHistory)

	// WebSocket endpoint
	s.router.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FastAPIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.router.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   s.clientCount.Load(),
		"latest_update": timestamp,
		"metrics":       s.Engine.Metrics(),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getTimeframes(c *gin.Context) {
	c.JSON(200, gin.H{
		"timeframes": timeframe.All(),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getScan(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	result, err := s.Engine.HierarchicalScan(c.Request.Context(), symbol)
	if err != nil {
		status, msg := httpStatusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	s.recordScan(result)
	c.JSON(200, result)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getOptions(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	scanMode := c.DefaultQuery("mode", "swing")

	setup, scan, err := s.Engine.OptionsScan(c.Request.Context(), symbol, scanMode)
	if err != nil {
		status, msg := httpStatusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	if scan != nil {
		s.recordScan(scan)
	}
	c.JSON(200, setup)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getLearning(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	profile, err := s.Engine.LearningProfile(c.Request.Context(), symbol, false)
	if err != nil {
		status, msg := httpStatusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(200, profile)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) rebuildLearning(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	profile, err := s.Engine.LearningProfile(c.Request.Context(), symbol, true)
	if err != nil {
		status, msg := httpStatusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(200, profile)
}

// -----------------------------------------------------------------------------

// postOutcome records one resolved trade so the forecast confidence blend
// can learn from realized results.
func (s *FastAPIServer) postOutcome(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	var outcome models.MTradeOutcome
	if err := c.ShouldBindJSON(&outcome); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid outcome payload: %v", err)})
		return
	}

	stats, err := s.Engine.RecordOutcome(symbol, outcome.Win, outcome.MovePct, outcome.TimeToMoveMinutes)
	if err != nil {
		if errors.Is(err, engine.ErrNoOutcomeStore) {
			c.JSON(503, gin.H{"error": err.Error()})
			return
		}
		status, msg := httpStatusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(200, stats)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getScanHistory(c *gin.Context) {
	symbol := strings.ToUpper(c.Query("symbol"))

	s.historyMutex.RLock()
	defer s.historyMutex.RUnlock()

	if symbol == "" {
		c.JSON(200, s.scanHistory)
		return
	}

	filtered := make([]*models.MScanResult, 0, len(s.scanHistory))
	for _, scan := range s.scanHistory {
		if scan.Symbol == symbol {
			filtered = append(filtered, scan)
		}
	}
	c.JSON(200, filtered)
}

// -----------------------------------------------------------------------------

// recordScan appends to the capped history and queues a broadcast.
func (s *FastAPIServer) recordScan(result *models.MScanResult) {
	limit := s.Config.Engine.ScanHistorySize
	if limit <= 0 {
		limit = 100
	}

	s.historyMutex.Lock()
	s.scanHistory = append(s.scanHistory, result)
	if len(s.scanHistory) > limit {
		s.scanHistory = s.scanHistory[len(s.scanHistory)-limit:]
	}
	s.historyMutex.Unlock()

	s.Broadcast(&models.MLatestData{
		Type:      "SCAN",
		Scan:      result,
		Timestamp: time.Now().UTC().Unix(),
		Metrics:   s.Engine.Metrics(),
	})
}
