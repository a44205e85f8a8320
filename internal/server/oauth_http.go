package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/google"
	"github.com/letterrip/letterrip/internal/instrumentation"
	"github.com/letterrip/letterrip/internal/logging"
	"github.com/letterrip/letterrip/internal/mcp/oauth"
)

// OAuthHTTPServer wraps an MCP server with OAuth 2.1 authentication
// It implements RFC 9728 Protected Resource Metadata for MCP clients to discover
// the authorization server
type OAuthHTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	oauthHandler  *oauth.Handler
	tokenProvider *oauth.TokenProvider
	httpServer    *http.Server
	serverType    string // "sse" or "streamable-http"
	metrics       *instrumentation.Metrics
	healthChecker *HealthChecker
	sessions      *SessionIDManager
}

// NewOAuthHTTPServer creates a new OAuth-enabled HTTP server for MCP.
// The Google client credentials enable the OAuth proxy flow and automatic
// token refresh; without them users must re-authenticate when tokens expire.
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, serverType, baseURL, googleClientID, googleClientSecret string) (*OAuthHTTPServer, error) {
	// Create OAuth handler with Google as the authorization server
	oauthConfig := &oauth.Config{
		Resource:        baseURL,
		SupportedScopes: google.DefaultOAuthScopes,
		GoogleAuth: oauth.GoogleAuthConfig{
			ClientID:     googleClientID,
			ClientSecret: googleClientSecret,
		},
		RateLimit: oauth.RateLimitConfig{
			Rate:  10, // 10 requests per second per IP
			Burst: 20, // Allow burst of 20 requests
		},
		CleanupInterval: 1 * time.Minute, // Cleanup expired tokens every minute
		Logger:          logging.WithService(slog.Default(), "oauth"),
	}

	oauthHandler, err := oauth.NewHandler(oauthConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	return &OAuthHTTPServer{
		mcpServer:     mcpServer,
		oauthHandler:  oauthHandler,
		tokenProvider: oauth.NewTokenProvider(oauthHandler.GetStore()),
		serverType:    serverType,
		sessions:      NewSessionIDManagerWithLogger(24*time.Hour, logging.WithService(slog.Default(), "sessions")),
	}, nil
}

// TokenProvider returns a google.TokenProvider backed by the OAuth token store.
// Google API clients created for HTTP sessions use this to resolve per-user tokens.
func (s *OAuthHTTPServer) TokenProvider() *oauth.TokenProvider {
	return s.tokenProvider
}

// SetMetrics enables HTTP and OAuth metrics recording for the server.
func (s *OAuthHTTPServer) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
	s.tokenProvider = oauth.NewTokenProviderWithMetrics(s.oauthHandler.GetStore(), m)
	s.sessions.SetEvictionCallback(func(sessionID, account string) {
		m.DecrementActiveSessions(context.Background())
	})
}

// SetHealthChecker registers liveness and readiness endpoints on the server.
func (s *OAuthHTTPServer) SetHealthChecker(h *HealthChecker) {
	s.healthChecker = h
}

// Start starts the OAuth-enabled HTTP server
func (s *OAuthHTTPServer) Start(addr string) error {
	// Validate HTTPS requirement for OAuth 2.1
	// Exception: localhost is allowed to use HTTP for development
	config := s.oauthHandler.GetConfig()
	baseURL := config.Resource
	if err := validateHTTPSRequirement(baseURL); err != nil {
		return err
	}

	mux := http.NewServeMux()

	// Register OAuth endpoints with rate limiting.
	// Protected Resource Metadata (RFC 9728) tells MCP clients where to find
	// the authorization server; the remaining endpoints implement the
	// authorization server itself, proxying to Google.
	oauthEndpoints := map[string]http.HandlerFunc{
		"/.well-known/oauth-protected-resource":   s.oauthHandler.ServeProtectedResourceMetadata,
		"/.well-known/oauth-authorization-server": s.oauthHandler.ServeAuthorizationServerMetadata,
		"/oauth/register":                         s.oauthHandler.ServeDynamicClientRegistration,
		"/oauth/authorize":                        s.oauthHandler.ServeAuthorization,
		"/oauth/token":                            s.oauthHandler.ServeToken,
		"/oauth/google/callback":                  s.oauthHandler.ServeGoogleCallback,
		"/oauth/revoke":                           s.oauthHandler.ServeRevoke,
	}
	for path, handler := range oauthEndpoints {
		mux.Handle(path, s.oauthInstrumentationWrapper(
			s.oauthHandler.RateLimitMiddleware(handler)))
	}

	// Register MCP endpoints based on server type
	switch s.serverType {
	case "sse":
		// Create SSE server
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)

		// Wrap SSE endpoints with rate limiting and OAuth middleware
		sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sseServer.ServeHTTP(w, r)
		})
		mux.Handle("/sse", s.instrumentationMiddleware(s.oauthHandler.RateLimitMiddleware(
			s.oauthHandler.ValidateGoogleToken(s.sessionMiddleware(sseHandler)))))

		messageHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sseServer.ServeHTTP(w, r)
		})
		mux.Handle("/message", s.instrumentationMiddleware(s.oauthHandler.RateLimitMiddleware(
			s.oauthHandler.ValidateGoogleToken(s.sessionMiddleware(messageHandler)))))

	case "streamable-http":
		// Create Streamable HTTP server
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)

		// Wrap MCP endpoint with rate limiting and OAuth middleware
		mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpServer.ServeHTTP(w, r)
		})
		mux.Handle("/mcp", s.instrumentationMiddleware(s.oauthHandler.RateLimitMiddleware(
			s.oauthHandler.ValidateGoogleToken(s.sessionMiddleware(mcpHandler)))))

	default:
		return fmt.Errorf("unsupported server type: %s", s.serverType)
	}

	// Register health check endpoints when configured
	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
		s.healthChecker.SetReady(true)
	}

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	s.sessions.Stop()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// sessionMiddleware tracks authenticated MCP sessions for the active-session
// gauge and per-account bookkeeping. It runs inside the OAuth middleware so
// the authenticated user is available from the request context.
func (s *OAuthHTTPServer) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionID, err := s.sessions.ResolveSessionID(r); err == nil {
			account := ""
			if userInfo, ok := oauth.GetUserFromContext(r.Context()); ok && userInfo != nil {
				account = userInfo.Email
			}
			if s.sessions.TouchSession(sessionID, account) && s.metrics != nil {
				s.metrics.IncrementActiveSessions(r.Context())
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetOAuthHandler returns the OAuth handler for testing or direct access
func (s *OAuthHTTPServer) GetOAuthHandler() *oauth.Handler {
	return s.oauthHandler
}

// responseWriter wraps http.ResponseWriter to capture the status code
// for metrics recording.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrumentationMiddleware records request counts and latencies for MCP
// endpoints. It is a no-op passthrough when metrics are not configured.
func (s *OAuthHTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// oauthInstrumentationWrapper records request metrics plus authentication
// outcomes for the OAuth endpoints.
func (s *OAuthHTTPServer) oauthInstrumentationWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))

		if r.URL.Path == "/oauth/token" {
			result := instrumentation.OAuthResultSuccess
			if rw.statusCode >= http.StatusBadRequest {
				result = instrumentation.OAuthResultFailure
			}
			s.metrics.RecordOAuthAuth(r.Context(), result)
		}
	})
}

// validateHTTPSRequirement ensures OAuth 2.1 HTTPS compliance
// Allows HTTP only for loopback addresses (localhost, 127.0.0.1, ::1)
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	// Parse URL to properly validate scheme and host
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	// Allow HTTP only for loopback addresses
	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
