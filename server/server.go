package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-workspace-auth/authrequest"
	"github.com/jrsteele09/go-workspace-auth/exchange"
	"github.com/jrsteele09/go-workspace-auth/identity"
	"github.com/jrsteele09/go-workspace-auth/internal/config"
	"github.com/jrsteele09/go-workspace-auth/invoker"
	"github.com/jrsteele09/go-workspace-auth/resources"
	"github.com/jrsteele09/go-workspace-auth/server/authflowrepo"
	"github.com/jrsteele09/go-workspace-auth/session"
	"github.com/rs/zerolog"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenClient is everything the server needs from the provider's token
// endpoint.
type TokenClient interface {
	exchange.CodeExchanger
	exchange.Refresher
	exchange.Revoker
}

// Deps are the collaborators the HTTP surface is wired from.
type Deps struct {
	Config    config.Config
	Logger    zerolog.Logger
	Builder   *authrequest.Builder
	Tokens    TokenClient
	Verifier  identity.Verifier
	Sessions  *session.Store
	Cookies   *session.CookieCodec
	AuthFlows authflowrepo.Repo
	Invoker   *invoker.Invoker
	API       *resources.API
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	logger zerolog.Logger

	builder   *authrequest.Builder
	tokens    TokenClient
	verifier  identity.Verifier
	sessions  *session.Store
	cookies   *session.CookieCodec
	authFlows authflowrepo.Repo
	invoker   *invoker.Invoker
	api       *resources.API
}

func New(d Deps) (*Server, error) {
	switch {
	case d.Config == nil:
		return nil, fmt.Errorf("[Server New] config is required")
	case d.Builder == nil, d.Tokens == nil, d.Verifier == nil:
		return nil, fmt.Errorf("[Server New] provider components are required")
	case d.Sessions == nil, d.Cookies == nil, d.AuthFlows == nil:
		return nil, fmt.Errorf("[Server New] session components are required")
	case d.Invoker == nil, d.API == nil:
		return nil, fmt.Errorf("[Server New] invoker and api are required")
	}

	s := &Server{
		env:       d.Config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    d.Config,
		logger:    d.Logger.With().Str("component", "server").Logger(),
		builder:   d.Builder,
		tokens:    d.Tokens,
		verifier:  d.Verifier,
		sessions:  d.Sessions,
		cookies:   d.Cookies,
		authFlows: d.AuthFlows,
		invoker:   d.Invoker,
		api:       d.API,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	s.logger.Debug().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// RunCleanup drops abandoned auth flows every interval until ctx is done.
func (s *Server) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cutoff := NowTimeFunc().Add(-s.config.GetAuthFlowTTL())
			if n := s.authFlows.DeleteCreatedBefore(cutoff); n > 0 {
				s.logger.Debug().Int("count", n).Msg("expired auth flows removed")
			}
		}
	}
}
