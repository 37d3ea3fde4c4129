package live

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/islatechai-lang/cryptoomind/internal/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// Handler upgrades /ws requests and serves one session per connection.
type Handler struct {
	runner  AnalysisRunner
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewHandler(runner AnalysisRunner, m *metrics.Metrics) *Handler {
	return &Handler{
		runner:  runner,
		metrics: m,
		logger:  log.With().Str("component", "live").Logger(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "missing user parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Upgrade failed")
		return
	}

	h.logger.Info().Str("user", userID).Msg("Live session connected")
	// Session lifetime is the connection's, not the HTTP request's.
	sess := NewSession(userID, conn, h.runner, h.metrics)
	sess.Serve(context.Background())
	h.logger.Info().Str("user", userID).Msg("Live session closed")
}
