package resources

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-workspace-auth/credential"
)

type Subscriptions struct {
	Subscriptions json.RawMessage `json:"subscriptions"`
}

func (a *API) ListSubscriptions(ctx context.Context, client *http.Client, _ credential.Credential) (Subscriptions, error) {
	res, err := do(ctx, client, http.MethodGet, join(a.endpoints.YouTube, "subscriptions")+"?part=snippet&mine=true&maxResults=10", nil)
	if err != nil {
		return Subscriptions{}, err
	}
	return Subscriptions{Subscriptions: rawArray(res, "items")}, nil
}
