package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-workspace-auth/session"
)

// sessionCookieName is the cookie carrying the signed session handle.
const sessionCookieName = "workspace_session"

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *Server) cookieSecure(r *http.Request) bool {
	return s.config.GetCookieSecure() || getScheme(r) == "https"
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, h session.Handle) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.cookies.Encode(h),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetSessionTTL().Seconds()),
	})
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// sessionHandle returns the verified handle from the request cookie.
func (s *Server) sessionHandle(r *http.Request) (session.Handle, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	h, err := s.cookies.Decode(c.Value)
	if err != nil {
		s.logger.Debug().Err(err).Msg("ignoring invalid session cookie")
		return "", false
	}
	return h, true
}

// ensureSessionHandle returns the request's handle, issuing a new one when
// the request has none.
func (s *Server) ensureSessionHandle(w http.ResponseWriter, r *http.Request) session.Handle {
	if h, ok := s.sessionHandle(r); ok {
		return h
	}
	h := session.NewHandle()
	s.SetSessionCookie(w, r, h)
	return h
}

func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(errorMsg), http.StatusSeeOther)
}
