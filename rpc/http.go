package rpc

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"creatorfund/core/state"
	"creatorfund/native/creatorfund"
	"creatorfund/observability/logging"
	"creatorfund/observability/metrics"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	limiterIdleTTL  = 10 * time.Minute
	requestIDHeader = "X-Request-ID"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeNotFound       = -32004
	codeRateLimited    = -32020
	codeProgramError   = -32030
	codeTransferFailed = -32031
)

// ServerConfig tunes the JSON-RPC server. A zero RateLimit disables
// per-source limiting.
type ServerConfig struct {
	AuthToken string
	RateLimit float64
	RateBurst int
	Logger    *slog.Logger
}

type sourceLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Server struct {
	engine *creatorfund.Engine
	state  *state.Manager
	logger *slog.Logger

	authToken string
	rateLimit rate.Limit
	rateBurst int

	mu       sync.Mutex
	limiters map[string]*sourceLimiter
	nowFn    func() time.Time

	serverMu   sync.Mutex
	httpServer *http.Server
}

// NewServer builds a server answering creator fund and token calls.
func NewServer(engine *creatorfund.Engine, manager *state.Manager, cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Server{
		engine:    engine,
		state:     manager,
		logger:    logger,
		authToken: strings.TrimSpace(cfg.AuthToken),
		rateLimit: rate.Limit(cfg.RateLimit),
		rateBurst: burst,
		limiters:  make(map[string]*sourceLimiter),
		nowFn:     time.Now,
	}
}

// Handler returns the HTTP routes: JSON-RPC on POST /, plus /healthz and
// /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Post("/", s.handle)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Serve answers requests on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           otelhttp.NewHandler(s.Handler(), "creatorfundd.rpc"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.serverMu.Lock()
	s.httpServer = srv
	s.serverMu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	s.logger.Info("json-rpc server listening", slog.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

type ctxKey int

const requestIDKey ctxKey = iota

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

type methodHandler func(ctx context.Context, params json.RawMessage) (interface{}, *rpcFailure)

type method struct {
	handler  methodHandler
	mutating bool
}

func (s *Server) methods() map[string]method {
	return map[string]method{
		"creatorfund_createPost":       {handler: s.handleCreatePost, mutating: true},
		"creatorfund_vote":             {handler: s.handleVote, mutating: true},
		"creatorfund_claimReward":      {handler: s.handleClaimReward, mutating: true},
		"creatorfund_tip":              {handler: s.handleTip, mutating: true},
		"creatorfund_getPost":          {handler: s.handleGetPost},
		"creatorfund_getVote":          {handler: s.handleGetVote},
		"creatorfund_getCreatorWallet": {handler: s.handleGetCreatorWallet},
		"token_getAccount":             {handler: s.handleGetTokenAccount},
		"token_getMint":                {handler: s.handleGetMint},
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}
	m, ok := s.methods()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %s", req.Method), nil)
		return
	}

	logger := s.logger.With(
		slog.String("request_id", requestIDFrom(r.Context())),
		slog.String("method", req.Method),
	)
	if m.mutating {
		if authErr := s.requireAuth(r); authErr != nil {
			metrics.RPC().RecordThrottle("unauthorized")
			logger.Warn("rejected unauthenticated call",
				logging.MaskField("authorization", r.Header.Get("Authorization")),
				slog.String("remote", clientSource(r)))
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		if !s.allowSource(clientSource(r)) {
			metrics.RPC().RecordThrottle("rate_limit")
			writeError(w, http.StatusTooManyRequests, req.ID, codeRateLimited, "rate limit exceeded", nil)
			return
		}
	}
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}

	start := time.Now()
	result, failure := m.handler(r.Context(), req.Params[0])
	if failure != nil {
		metrics.RPC().Observe(req.Method, failure.code, time.Since(start))
		logger.Debug("call failed", slog.Int("code", failure.code), slog.String("error", failure.message))
		writeError(w, failure.status, req.ID, failure.code, failure.message, failure.data)
		return
	}
	metrics.RPC().Observe(req.Method, 0, time.Since(start))
	writeResult(w, req.ID, result)
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

func (s *Server) allowSource(source string) bool {
	if s.rateLimit <= 0 {
		return true
	}
	if source == "" {
		source = "unknown"
	}
	now := s.nowFn()
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(s.limiters, key)
		}
	}
	entry, ok := s.limiters[source]
	if !ok {
		entry = &sourceLimiter{limiter: rate.NewLimiter(s.rateLimit, s.rateBurst)}
		s.limiters[source] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func clientSource(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
