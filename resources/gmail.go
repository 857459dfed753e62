package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/tidwall/gjson"
)

type GmailMessage struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

type GmailMessages struct {
	Messages []GmailMessage `json:"messages"`
}

type GmailLabels struct {
	Labels json.RawMessage `json:"labels"`
}

// ListGmailMessages returns the From, Subject and Date headers of the five
// most recent messages. Each message costs one extra metadata request.
func (a *API) ListGmailMessages(ctx context.Context, client *http.Client, _ credential.Credential) (GmailMessages, error) {
	base := join(a.endpoints.Gmail, "users", "me", "messages")
	list, err := do(ctx, client, http.MethodGet, base+"?maxResults=5", nil)
	if err != nil {
		return GmailMessages{}, err
	}

	out := GmailMessages{Messages: []GmailMessage{}}
	for _, m := range list.Get("messages.#.id").Array() {
		q := url.Values{
			"format":          {"metadata"},
			"metadataHeaders": {"From", "Subject", "Date"},
		}
		msg, err := do(ctx, client, http.MethodGet, join(base, url.PathEscape(m.String()))+"?"+q.Encode(), nil)
		if err != nil {
			return GmailMessages{}, err
		}
		out.Messages = append(out.Messages, GmailMessage{
			ID:      msg.Get("id").String(),
			From:    header(msg, "From"),
			Subject: header(msg, "Subject"),
			Date:    header(msg, "Date"),
		})
	}
	return out, nil
}

func header(msg gjson.Result, name string) string {
	return msg.Get(`payload.headers.#(name=="` + name + `").value`).String()
}

func (a *API) ListGmailLabels(ctx context.Context, client *http.Client, _ credential.Credential) (GmailLabels, error) {
	res, err := do(ctx, client, http.MethodGet, join(a.endpoints.Gmail, "users", "me", "labels"), nil)
	if err != nil {
		return GmailLabels{}, err
	}
	return GmailLabels{Labels: rawArray(res, "labels")}, nil
}
