package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/thruflo/recpanel/internal/auth"
	"github.com/thruflo/recpanel/internal/config"
	"github.com/thruflo/recpanel/internal/logging"
	"github.com/thruflo/recpanel/internal/panel"
	"github.com/thruflo/recpanel/internal/report"
	"github.com/thruflo/recpanel/web"
)

// Websocket timing.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// sweepInterval is how often expired tokens and limiter state are dropped.
const sweepInterval = time.Minute

// Refresher triggers an immediate status poll. *panel.SyncLoop implements it.
type Refresher interface {
	PollOnce(ctx context.Context) error
}

// Config holds server configuration options.
type Config struct {
	Port int
	// PasswordHash is an argon2id hash. Empty disables authentication.
	PasswordHash string
	// Assets overrides the embedded web page.
	Assets    fs.FS
	RateLimit RateLimitConfig
	TokenTTL  time.Duration
	Logger    *logging.Logger
}

// ConfigFrom builds a server Config from the panel section of the file config.
func ConfigFrom(cfg config.Panel) *Config {
	return &Config{
		Port:         cfg.Port,
		PasswordHash: cfg.PasswordHash,
		RateLimit:    DefaultRateLimitConfig(),
	}
}

// Server is the browser panel's HTTP server.
type Server struct {
	port         int
	passwordHash string
	logger       *logging.Logger

	store     *panel.Store
	ctrl      *panel.Controller
	refresher Refresher

	router   *chi.Mux
	tokens   *auth.TokenStore
	limiter  *attemptLimiter
	upgrader websocket.Upgrader

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// NewServer creates a Server that shows store and sends commands through
// ctrl. refresher may be nil, in which case /api/refresh only returns the
// current snapshot.
func NewServer(cfg *Config, store *panel.Store, ctrl *panel.Controller, refresher Refresher) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if store == nil || ctrl == nil {
		return nil, errors.New("store and controller are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "server")

	assets := cfg.Assets
	if assets == nil {
		assets = web.Assets()
	}

	s := &Server{
		port:         cfg.Port,
		passwordHash: cfg.PasswordHash,
		logger:       logger,
		store:        store,
		ctrl:         ctrl,
		refresher:    refresher,
		router:       chi.NewRouter(),
		tokens:       auth.NewTokenStore(cfg.TokenTTL),
		limiter:      newAttemptLimiter(cfg.RateLimit, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		done: make(chan struct{}),
	}
	s.registerRoutes(assets)

	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// AuthRequired reports whether the API needs a token.
func (s *Server) AuthRequired() bool {
	return s.passwordHash != ""
}

// Start listens on the configured port and serves until ctx is canceled or
// Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := fmt.Sprintf(":%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.started = true
	s.mu.Unlock()

	go s.sweep(ctx)
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("panel server listening", "addr", listener.Addr().String(), "auth", s.AuthRequired())

	err = s.server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down and closes websocket connections.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.started = false
	return nil
}

// ListenAddr returns the address the server listens on, or "" before Start.
// Useful with port 0.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) registerRoutes(assets fs.FS) {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth", s.handleAuth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/state", s.handleState)
			r.Post("/start", s.handleStart)
			r.Post("/stop", s.handleStop)
			r.Post("/upload", s.handleUpload)
			r.Post("/refresh", s.handleRefresh)
			r.Get("/ws", s.handleWS)
		})
	})

	r.Handle("/*", http.FileServer(http.FS(assets)))
}

// logRequests logs every API request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// requireToken rejects API requests without a valid token when a password
// is configured.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.AuthRequired() {
			next.ServeHTTP(w, r)
			return
		}

		token := r.URL.Query().Get("token")
		if h := r.Header.Get("Authorization"); h != "" {
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(h, bearerPrefix) {
				respondError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}
			token = strings.TrimPrefix(h, bearerPrefix)
		}

		if token == "" {
			respondError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if !s.tokens.Valid(token) {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.tokens.Prune(); n > 0 {
				s.logger.Debug("expired tokens removed", "count", n)
			}
			s.limiter.sweep()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type authRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

// handleAuth exchanges the panel password for a token.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if !s.AuthRequired() {
		respondError(w, http.StatusNotFound, "authentication is not enabled")
		return
	}

	ip := clientIP(r)
	v := s.limiter.admit(ip)
	if !v.Allowed {
		s.logger.Warn("auth attempt rejected", "ip", ip, "reason", v.Reason, "retry_after", v.RetryAfter)
		w.Header().Set("Retry-After", retryAfterSeconds(v.RetryAfter))
		respondError(w, http.StatusTooManyRequests, v.Reason)
		return
	}

	var req authRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "password required")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, s.passwordHash)
	if err != nil {
		s.logger.Error("password verification failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		s.limiter.failed(ip)
		respondError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	s.limiter.succeeded(ip)
	respondJSON(w, http.StatusOK, authResponse{Token: s.tokens.Issue()})
}

// stateResponse is the snapshot as the page consumes it.
type stateResponse struct {
	panel.Snapshot
	PhaseLabel  string   `json:"phase_label"`
	ActionItems []string `json:"action_items"`
	NoActions   bool     `json:"no_actions"`
	CanUpload   bool     `json:"can_upload"`
}

func newStateResponse(snap panel.Snapshot) stateResponse {
	// Before a report exists the action section holds a placeholder, not items.
	items := []string{}
	if snap.CanUpload() {
		items = append(items, snap.ActionItems()...)
	}
	return stateResponse{
		Snapshot:    snap,
		PhaseLabel:  snap.Phase.Label(),
		ActionItems: items,
		NoActions:   report.NoExplicitActions(snap.Sections.ActionItems),
		CanUpload:   snap.CanUpload(),
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newStateResponse(s.store.Snapshot()))
}

type startRequest struct {
	MeetingURL string `json:"meeting_url"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.ctrl.StartRecording(r.Context(), strings.TrimSpace(req.MeetingURL)); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.StopRecording(r.Context()); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	msg, err := s.ctrl.UploadLast(r.Context())
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher != nil {
		// A failed poll is logged by the loop and shows in last_error.
		_ = s.refresher.PollOnce(r.Context())
	}
	respondJSON(w, http.StatusOK, newStateResponse(s.store.Snapshot()))
}

// handleWS sends the snapshot on connect and after every store change until
// the client goes away or the server stops.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	changes, unsubscribe := s.store.Subscribe()
	defer unsubscribe()

	// The page sends nothing; reading only notices close and handles pongs.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := s.pushSnapshot(conn); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(writeWait))
			return
		case <-changes:
			if err := s.pushSnapshot(conn); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) pushSnapshot(conn *websocket.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(newStateResponse(s.store.Snapshot()))
}

// errorResponse is the body of every failed API call. Message is the text the
// page shows to the operator; Detail carries the backend's reason when known.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// respondCommandError maps controller errors onto status codes: a bad link is
// the client's fault, anything the recording service refused is a bad
// gateway.
func respondCommandError(w http.ResponseWriter, err error) {
	body := errorResponse{Error: err.Error(), Message: panel.OperatorMessage(err)}

	var rejected *panel.CommandRejectedError
	switch {
	case panel.IsInvalidInput(err):
		respondJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &rejected):
		body.Detail = rejected.Detail
		respondJSON(w, http.StatusBadGateway, body)
	case errors.Is(err, panel.ErrUploadFailed):
		respondJSON(w, http.StatusBadGateway, body)
	default:
		respondJSON(w, http.StatusInternalServerError, body)
	}
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, errorResponse{Error: msg})
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// maxBodyBytes bounds request bodies; the API only takes tiny JSON objects.
const maxBodyBytes = 64 << 10

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
