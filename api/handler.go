// Package api exposes the estimation engine over HTTP and streams replays
// over websockets.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kilianp07/standwait/core/events"
	"github.com/kilianp07/standwait/core/logger"
	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/recommend"
	"github.com/kilianp07/standwait/core/reference"
	"github.com/kilianp07/standwait/core/replay"
)

const healthTimeout = 2 * time.Second

// Handler serves the HTTP API.
type Handler struct {
	engine    *recommend.Engine
	planner   *replay.Planner
	store     reference.Store
	publisher events.Publisher
	log       logger.Logger
	upgrader  websocket.Upgrader
}

// NewHandler returns a Handler. A nil publisher drops replay events.
func NewHandler(engine *recommend.Engine, planner *replay.Planner, store reference.Store, pub events.Publisher, log logger.Logger) *Handler {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Handler{
		engine:    engine,
		planner:   planner,
		store:     store,
		publisher: pub,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// SetupRoutes registers every endpoint on router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	api := router.Group("/api")
	{
		api.GET("/estimate", h.Estimate)
		api.GET("/route", h.Route)
		api.GET("/zones", h.Zones)
		api.GET("/locations", h.Locations)
	}
	router.GET("/ws/replay", h.Replay)
}

// Health reports whether the reference store is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warnf("health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
}

// Estimate ranks the stands at the requested moment.
func (h *Handler) Estimate(c *gin.Context) {
	at, err := parseAt(c.Query("at"))
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.engine.Estimate(c.Request.Context(), recommend.EstimateRequest{
		At:       at,
		Category: strings.TrimSpace(c.Query("category")),
		Opponent: c.Query("opponent"),
		Weekday:  c.Query("weekday"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Route evaluates the walk plus wait cost of an item from a seat zone.
func (h *Handler) Route(c *gin.Context) {
	zone := strings.TrimSpace(c.Query("zone"))
	item := strings.TrimSpace(c.Query("item"))
	if zone == "" || item == "" {
		h.fail(c, invalid("zone and item are required"))
		return
	}
	at, err := parseAt(c.Query("at"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var budget float64
	if raw := c.Query("budget"); raw != "" {
		budget, err = strconv.ParseFloat(raw, 64)
		if err != nil || budget < 0 {
			h.fail(c, invalid("budget must be a non-negative number of minutes"))
			return
		}
	}
	res, err := h.engine.Route(c.Request.Context(), recommend.RouteRequest{
		ZoneID:        zone,
		Item:          item,
		BudgetMinutes: budget,
		At:            at,
		Opponent:      c.Query("opponent"),
		Weekday:       c.Query("weekday"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Zones lists the seat zones.
func (h *Handler) Zones(c *gin.Context) {
	zones, err := h.store.Zones(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if zones == nil {
		zones = []model.SeatZone{}
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

// Locations lists the stands and their map positions.
func (h *Handler) Locations(c *gin.Context) {
	locs, err := h.store.Locations(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if locs == nil {
		locs = []model.Location{}
	}
	c.JSON(http.StatusOK, gin.H{"locations": locs})
}

func parseAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, invalid("at is required (RFC3339)")
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, invalid("at must be RFC3339: " + err.Error())
	}
	return at, nil
}
