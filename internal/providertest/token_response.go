package providertest

import (
	"github.com/jrsteele09/go-workspace-auth/internal/utils"
)

// TokenResponse is the RFC 6749 token endpoint body. Optional members are
// pointers so they disappear from the JSON when unset.
type TokenResponse struct {
	AccessToken  string  `json:"access_token"`
	IDToken      *string `json:"id_token,omitempty"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int     `json:"expires_in,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	Scope        string  `json:"scope,omitempty"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return utils.Ptr(s)
}
