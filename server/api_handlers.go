package server

import (
	"net/http"

	"github.com/jrsteele09/go-workspace-auth/invoker"
)

// serveResource adapts an authorized API call to an HTTP endpoint. Callers get
// fixed messages; the underlying cause is logged by the invoker.
func serveResource[T any](s *Server, call invoker.APICall[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, _ := s.sessionHandle(r)

		result, err := invoker.Invoke(r.Context(), s.invoker, h, call)
		if err == nil {
			writeJSON(w, http.StatusOK, result)
			return
		}

		reason, _ := invoker.ReasonOf(err)
		switch reason {
		case invoker.ReasonUnauthenticated:
			writeJSONError(w, "Not authenticated", http.StatusUnauthorized)
		case invoker.ReasonTokenRejected:
			if cred, ok := s.sessions.Get(h); ok && !cred.Token.HasRefreshToken() {
				if clearErr := s.sessions.Clear(h); clearErr != nil {
					s.logger.Error().Err(clearErr).Msg("failed to clear rejected credential")
				}
			}
			writeJSONError(w, "Access token rejected", http.StatusBadGateway)
		case invoker.ReasonUpstreamUnavailable:
			writeJSONError(w, "Upstream service unavailable", http.StatusServiceUnavailable)
		default:
			writeJSONError(w, "Upstream request failed", http.StatusBadGateway)
		}
	}
}

const defaultGeocodeAddress = "1600 Amphitheatre Parkway, Mountain View, CA"

type geocodeInfo struct {
	Note           string `json:"note"`
	ExampleAddress string `json:"exampleAddress"`
	Message        string `json:"message"`
}

// GeocodeInfoHandler is informational only. The Maps API takes an API key,
// not a user's OAuth token.
func (s *Server) GeocodeInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := r.URL.Query().Get("address")
		if address == "" {
			address = defaultGeocodeAddress
		}
		writeJSON(w, http.StatusOK, geocodeInfo{
			Note:           "Maps API requires an API key (not OAuth). Enable it in Google Cloud Console.",
			ExampleAddress: address,
			Message:        "To use Maps API, you need to enable it separately with an API key",
		})
	}
}
