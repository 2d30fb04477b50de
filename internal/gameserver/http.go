package gameserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/store"
)

// CreateGameRequest is the body of POST /games. Both fields are optional.
type CreateGameRequest struct {
	PlayerName    string `json:"player_name"`
	OpponentCount *int   `json:"opponent_count"`
}

// TurnResponse is the body returned by POST /games/:id/turns.
type TurnResponse struct {
	Turn  session.TurnResult `json:"turn"`
	Stats session.Stats      `json:"stats"`
}

// NewRouter builds the HTTP API over svc.
//
// Precondition: svc and logger must be non-nil.
func NewRouter(svc *Service, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	h := &handlers{svc: svc, logger: logger}
	r.GET("/health", h.health)

	games := r.Group("/games")
	{
		games.POST("", h.createGame)
		games.GET("/:id", h.getGame)
		games.POST("/:id/turns", h.playTurn)
		games.GET("/:id/stats", h.stats)
		games.GET("/:id/events", h.events)
	}
	return r
}

type handlers struct {
	svc    *Service
	logger *zap.Logger
}

func (h *handlers) health(c *gin.Context) {
	res := h.svc.Health(c.Request.Context())
	code := http.StatusOK
	if !res.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, res)
}

func (h *handlers) createGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gs, err := h.svc.CreateGame(c.Request.Context(), req.PlayerName, req.OpponentCount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gs)
}

func (h *handlers) getGame(c *gin.Context) {
	gs, err := h.svc.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gs)
}

func (h *handlers) playTurn(c *gin.Context) {
	res, gs, err := h.svc.PlayTurn(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TurnResponse{Turn: res, Stats: gs.Stats()})
}

func (h *handlers) stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *handlers) events(c *gin.Context) {
	records, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": records})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrHistoryUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if !isClientError(err) {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// HTTPService runs the router as a server.Service.
type HTTPService struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewHTTPService binds handler to addr.
func NewHTTPService(addr string, handler http.Handler, logger *zap.Logger) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Stop is called.
func (s *HTTPService) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http on %s: %w", s.srv.Addr, err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *HTTPService) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
