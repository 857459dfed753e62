package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-workspace-auth/authrequest"
	"github.com/jrsteele09/go-workspace-auth/exchange"
	"github.com/jrsteele09/go-workspace-auth/internal/config"
	"github.com/jrsteele09/go-workspace-auth/invoker"
	"github.com/jrsteele09/go-workspace-auth/provider"
	"github.com/jrsteele09/go-workspace-auth/resources"
	"github.com/jrsteele09/go-workspace-auth/server"
	"github.com/jrsteele09/go-workspace-auth/server/authflowrepo"
	"github.com/jrsteele09/go-workspace-auth/session"
	"github.com/rs/zerolog"
)

type app struct {
	server   *server.Server
	sessions *session.Store
	close    func()
}

func wire(ctx context.Context, c config.Config, logger zerolog.Logger) (*app, error) {
	prov, err := provider.Discover(ctx, c, nil)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("issuer", prov.Issuer).Msg("identity provider resolved")

	secret := []byte(c.GetSessionSecret())
	repo, closeRepo, err := openSessionRepo(c, secret)
	if err != nil {
		return nil, err
	}
	cookies, err := session.NewCookieCodec(secret)
	if err != nil {
		closeRepo()
		return nil, err
	}
	sessions := session.NewStore(repo, c.GetSessionTTL(), logger)

	s, err := server.New(server.Deps{
		Config:  c,
		Logger:  logger,
		Builder: authrequest.NewBuilder(prov.OAuth2),
		Tokens: exchange.New(prov.OAuth2,
			exchange.WithTimeout(c.GetProviderTimeout()),
			exchange.WithRevokeURL(prov.RevokeURL),
		),
		Verifier:  prov.Verifier,
		Sessions:  sessions,
		Cookies:   cookies,
		AuthFlows: authflowrepo.NewInMemoryRepo(),
		Invoker:   invoker.New(sessions, logger, invoker.WithTimeout(c.GetAPITimeout())),
		API:       resources.New(resources.DefaultEndpoints(), nil),
	})
	if err != nil {
		closeRepo()
		return nil, err
	}

	return &app{server: s, sessions: sessions, close: closeRepo}, nil
}

func openSessionRepo(c config.SessionConfig, secret []byte) (session.Repo, func(), error) {
	switch c.GetSessionStore() {
	case config.SessionStoreBolt:
		repo, err := session.OpenBoltRepo(c.GetSessionDBPath(), secret)
		if err != nil {
			return nil, nil, fmt.Errorf("opening session store: %w", err)
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		return session.NewInMemoryRepo(), func() {}, nil
	}
}
