package server

import (
	"net/http"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/jrsteele09/go-workspace-auth/internal/utils"
)

type userView struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

func newUserView(id credential.IdentityClaims) *userView {
	return &userView{
		Subject:       id.Subject,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		Name:          id.Name,
		Picture:       id.Picture,
	}
}

type indexResponse struct {
	User  *userView `json:"user"`
	Error *string   `json:"error"`
}

type dashboardResponse struct {
	User      *userView `json:"user"`
	Scopes    []string  `json:"scopes"`
	Endpoints []string  `json:"endpoints"`
}

var dashboardEndpoints = []string{
	"GET " + RouteAPIDriveFiles,
	"GET " + RouteAPIDriveCreateFolder,
	"GET " + RouteAPIGmailMessages,
	"GET " + RouteAPIGmailLabels,
	"GET " + RouteAPICalendarEvents,
	"POST " + RouteAPICalendarCreateEvent,
	"GET " + RouteAPISheetsTest,
	"GET " + RouteAPIYouTubeSubs,
	"GET " + RouteAPIMapsGeocode,
	"POST " + RouteAuthRefresh,
	"GET " + RouteAuthLogout,
}

// currentUser returns the credential of the request's session, if any.
func (s *Server) currentUser(r *http.Request) (credential.Credential, bool) {
	h, ok := s.sessionHandle(r)
	if !ok {
		return credential.Credential{}, false
	}
	return s.sessions.Get(h)
}

// IndexHandler returns the landing data: the signed-in user, if any, and the
// error code a failed login redirected with.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp indexResponse
		if cred, ok := s.currentUser(r); ok {
			resp.User = newUserView(cred.Identity)
		}
		if msg := r.URL.Query().Get("error"); msg != "" {
			resp.Error = utils.Ptr(msg)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := s.currentUser(r)
		if !ok {
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, dashboardResponse{
			User:      newUserView(cred.Identity),
			Scopes:    cred.Scopes,
			Endpoints: dashboardEndpoints,
		})
	}
}
