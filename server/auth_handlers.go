package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-workspace-auth/authrequest"
	"github.com/jrsteele09/go-workspace-auth/exchange"
	"github.com/jrsteele09/go-workspace-auth/server/authflowrepo"
	"golang.org/x/oauth2"
)

// LoginHandler starts the authorization-code flow for the caller's session.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := s.ensureSessionHandle(w, r)

		state := generateRandomString(32)
		flow := &authflowrepo.AuthFlowState{
			SessionID:    h,
			CodeVerifier: oauth2.GenerateVerifier(),
			Nonce:        generateRandomString(32),
			Scopes:       s.builder.Scopes(),
			CreatedAt:    NowTimeFunc(),
		}
		if err := s.authFlows.Upsert(state, flow); err != nil {
			s.logger.Error().Err(err).Msg("failed to store auth flow state")
			redirectWithError(w, r, RouteIndex, callbackFailure)
			return
		}

		authURL := s.builder.BuildAuthorizationURL(nil, authrequest.Options{
			OfflineAccess: s.config.GetOfflineAccess(),
			ForceConsent:  s.config.GetForceConsent(),
			State:         state,
			Nonce:         flow.Nonce,
			CodeVerifier:  flow.CodeVerifier,
		})
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// LogoutHandler always succeeds. Revocation at the provider is best effort.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := s.sessionHandle(r)
		if ok {
			if cred, found := s.sessions.Get(h); found {
				token := cred.Token.RefreshToken
				if token == "" {
					token = cred.Token.AccessToken
				}
				if err := s.tokens.Revoke(r.Context(), token); err != nil {
					s.logger.Warn().Err(err).Msg("token revocation failed")
				}
				s.logger.Info().Str("subject", cred.Identity.Subject).Msg("logged out")
			}
			s.sessions.DestroySession(h)
		}
		s.ClearSessionCookie(w, r)
		redirectSuccess(w, r, RouteIndex)
	}
}

type refreshResponse struct {
	Expiry time.Time `json:"expiry"`
}

// RefreshHandler trades the session's refresh token for a new access token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := s.sessionHandle(r)
		if !ok {
			writeJSONError(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		cred, ok := s.sessions.Get(h)
		if !ok {
			writeJSONError(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		if !cred.Token.HasRefreshToken() {
			writeJSONError(w, "No refresh token available", http.StatusBadRequest)
			return
		}

		tokens, err := s.tokens.Refresh(r.Context(), cred.Token.RefreshToken)
		if err != nil {
			reason, _ := exchange.ReasonOf(err)
			s.logger.Warn().Err(err).Str("reason", string(reason)).Msg("token refresh failed")
			if reason == exchange.ReasonInvalidCode {
				// The grant is gone; the credential can never be renewed.
				if clearErr := s.sessions.Clear(h); clearErr != nil {
					s.logger.Error().Err(clearErr).Msg("failed to clear rejected credential")
				}
				writeJSONError(w, "Not authenticated", http.StatusUnauthorized)
				return
			}
			writeJSONError(w, "Token refresh failed", http.StatusBadGateway)
			return
		}

		if err := s.sessions.Attach(h, cred.WithToken(tokens)); err != nil {
			s.logger.Error().Err(err).Msg("failed to store refreshed credential")
			writeJSONError(w, "Token refresh failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, refreshResponse{Expiry: tokens.Expiry})
	}
}
