package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	wsAdapter "github.com/cuelight/engage-backend/internal/adapters/primary/websocket"
	"github.com/cuelight/engage-backend/internal/config"
	"github.com/cuelight/engage-backend/internal/core/domain"
	"github.com/cuelight/engage-backend/internal/core/ports"
)

// WebSocketHandler upgrades connections into the realtime hub. A failed
// credential check degrades the connection to anonymous instead of
// rejecting it: anonymous audience members can still join event rooms but
// can never send privileged messages.
type WebSocketHandler struct {
	hub        *wsAdapter.Hub
	router     *wsAdapter.Router
	verifier   ports.CredentialVerifier
	cookieName string
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	router *wsAdapter.Router,
	verifier ports.CredentialVerifier,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub:        hub,
		router:     router,
		verifier:   verifier,
		cookieName: cfg.WebSocket.CookieName,
		logger:     logger,
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// In development mode, allow all origins (but log a warning)
		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:] // Remove the "*", keep ".example.com"
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	// 1. Attempt authentication via the session cookie. Every failure mode
	// means the same thing here: the connection proceeds anonymously.
	identity := h.authenticate(r, requestID)

	// 2. Upgrade the connection
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	client := wsAdapter.NewClient(h.hub, conn, identity, h.logger)
	h.hub.Register(client)

	h.logger.Info("websocket connection established",
		"request_id", requestID,
		"connection_id", client.ID,
		"user_id", client.UserID(),
		"kind", client.Kind(),
		"remote_addr", r.RemoteAddr,
	)

	// 3. Start the I/O pumps, then greet the client.
	go client.WritePump()
	go client.ReadPump(h.router)

	h.hub.Welcome(client)
}

// authenticate resolves the session cookie into an identity, or nil for an
// anonymous connection.
func (h *WebSocketHandler) authenticate(r *http.Request, requestID string) *domain.Identity {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		h.logger.Debug("websocket connection without session cookie",
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
		)
		return nil
	}

	identity, err := h.verifier.Verify(r.Context(), cookie.Value)
	if err != nil {
		h.logger.Info("websocket authentication degraded to anonymous",
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
			"reason", err.Error(),
		)
		return nil
	}

	return identity
}
