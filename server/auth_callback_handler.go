package server

import (
	"net/http"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/jrsteele09/go-workspace-auth/exchange"
	"github.com/jrsteele09/go-workspace-auth/identity"
	apperrors "github.com/jrsteele09/go-workspace-auth/internal/errors"
	"github.com/jrsteele09/go-workspace-auth/session"
)

const callbackFailure = "auth_failed"

// OAuthCallbackHandler completes a login. The user only ever sees
// auth_failed; the reason goes to the log.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, err := s.completeLogin(w, r)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("reason", failureReason(err)).
				Msg("login callback failed")
			redirectWithError(w, r, RouteIndex, callbackFailure)
			return
		}
		s.logger.Info().Str("subject", subject).Msg("login completed")
		redirectSuccess(w, r, RouteDashboard)
	}
}

func (s *Server) completeLogin(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.FormValue("error") != "" {
		return "", apperrors.Wrapf(apperrors.ErrProviderDenied, "[Server completeLogin] %s", r.FormValue("error"))
	}

	state := r.FormValue("state")
	if state == "" {
		return "", apperrors.ErrInvalidState
	}
	flow, err := s.authFlows.Consume(state)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidState, "[Server completeLogin] %v", err)
	}
	if flow.Expired(NowTimeFunc(), s.config.GetAuthFlowTTL()) {
		return "", apperrors.ErrStateExpired
	}

	current, ok := s.sessionHandle(r)
	if !ok || current != flow.SessionID {
		return "", apperrors.ErrSessionMismatch
	}

	code := r.FormValue("code")
	if code == "" {
		return "", apperrors.ErrMissingCode
	}

	tokens, err := s.tokens.Exchange(r.Context(), code, flow.CodeVerifier)
	if err != nil {
		return "", err
	}
	if tokens.IDToken == "" {
		return "", apperrors.ErrMissingIDToken
	}

	claims, err := s.verifier.Verify(r.Context(), tokens.IDToken, s.config.GetClientID())
	if err != nil {
		return "", err
	}
	if claims.Nonce != flow.Nonce {
		return "", apperrors.ErrNonceMismatch
	}

	cred := credential.Credential{
		Token:           tokens,
		Identity:        claims,
		Scopes:          flow.Scopes,
		AuthenticatedAt: NowTimeFunc(),
	}

	// A fresh handle is issued on every login so a handle planted before
	// authentication never carries a credential.
	next := session.NewHandle()
	if err := s.sessions.Attach(next, cred); err != nil {
		return "", apperrors.Wrapf(err, "[Server completeLogin] attach")
	}
	s.SetSessionCookie(w, r, next)
	s.sessions.DestroySession(current)

	return claims.Subject, nil
}

func failureReason(err error) string {
	if reason, ok := exchange.ReasonOf(err); ok {
		return "exchange." + string(reason)
	}
	if reason, ok := identity.ReasonOf(err); ok {
		return "identity." + string(reason)
	}
	for _, sentinel := range []error{
		apperrors.ErrProviderDenied,
		apperrors.ErrInvalidState,
		apperrors.ErrStateExpired,
		apperrors.ErrSessionMismatch,
		apperrors.ErrMissingCode,
		apperrors.ErrMissingIDToken,
		apperrors.ErrNonceMismatch,
	} {
		if apperrors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal"
}
