// Package server exposes the HTTP surface the chat platform delivers
// callbacks to, and dispatches each typed interaction to the services.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/export"
	"github.com/ultigroup/attendbot/internal/platform"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/settings"
)

var (
	errMissingVerifier   = errors.New("callback verifier dependency required")
	errMissingEvents     = errors.New("events service dependency required")
	errMissingRoster     = errors.New("roster service dependency required")
	errMissingAttendance = errors.New("attendance service dependency required")
	errMissingSettings   = errors.New("settings store dependency required")
	errMissingClient     = errors.New("platform client dependency required")
)

// CallbackVerifier validates the bearer token on inbound deliveries.
type CallbackVerifier interface {
	VerifyRequest(r *http.Request) error
}

// Dependencies carries everything the HTTP handler dispatches to.
type Dependencies struct {
	Verifier   CallbackVerifier
	Events     *events.Service
	Roster     *roster.Service
	Attendance *attendance.Service
	Settings   *settings.Store
	Exporter   *export.Service
	Client     platform.Client
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewHTTPHandler wires the callback routes.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Verifier == nil {
		return nil, errMissingVerifier
	}
	if deps.Events == nil {
		return nil, errMissingEvents
	}
	if deps.Roster == nil {
		return nil, errMissingRoster
	}
	if deps.Attendance == nil {
		return nil, errMissingAttendance
	}
	if deps.Settings == nil {
		return nil, errMissingSettings
	}
	if deps.Client == nil {
		return nil, errMissingClient
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		verifier:   deps.Verifier,
		events:     deps.Events,
		roster:     deps.Roster,
		attendance: deps.Attendance,
		settings:   deps.Settings,
		exporter:   deps.Exporter,
		client:     deps.Client,
		logger:     logger,
		clock:      clock,
	}

	callbacks := router.Group("/callbacks")
	callbacks.Use(handler.authorizeRequest)
	callbacks.POST("/interactions", handler.handleInteraction)
	callbacks.POST("/events", handler.handleEventNotification)

	return router, nil
}

type httpHandler struct {
	verifier   CallbackVerifier
	events     *events.Service
	roster     *roster.Service
	attendance *attendance.Service
	settings   *settings.Store
	exporter   *export.Service
	client     platform.Client
	logger     *zap.Logger
	clock      func() time.Time
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	if err := h.verifier.VerifyRequest(c.Request); err != nil {
		h.logger.Warn("callback token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}
