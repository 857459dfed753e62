package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/tidwall/sjson"
)

type CalendarEvents struct {
	Events json.RawMessage `json:"events"`
}

type CreatedEvent struct {
	Event json.RawMessage `json:"event"`
}

// ListUpcomingEvents returns the next ten events of the primary calendar with
// recurring events expanded.
func (a *API) ListUpcomingEvents(ctx context.Context, client *http.Client, _ credential.Credential) (CalendarEvents, error) {
	q := url.Values{
		"timeMin":      {a.now().UTC().Format(time.RFC3339)},
		"maxResults":   {"10"},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}
	res, err := do(ctx, client, http.MethodGet, join(a.endpoints.Calendar, "calendars", "primary", "events")+"?"+q.Encode(), nil)
	if err != nil {
		return CalendarEvents{}, err
	}
	return CalendarEvents{Events: rawArray(res, "items")}, nil
}

// CreateTestEvent books a one hour event starting 24 hours from now.
func (a *API) CreateTestEvent(ctx context.Context, client *http.Client, _ credential.Credential) (CreatedEvent, error) {
	now := a.now().UTC()

	body := []byte(`{}`)
	var err error
	for _, kv := range []struct {
		path  string
		value string
	}{
		{"summary", "OAuth Test Event - " + now.Format(time.RFC1123)},
		{"description", "Event created via Google Calendar API"},
		{"start.dateTime", now.Add(24 * time.Hour).Format(time.RFC3339)},
		{"end.dateTime", now.Add(25 * time.Hour).Format(time.RFC3339)},
	} {
		if body, err = sjson.SetBytes(body, kv.path, kv.value); err != nil {
			return CreatedEvent{}, err
		}
	}

	res, err := do(ctx, client, http.MethodPost, join(a.endpoints.Calendar, "calendars", "primary", "events"), body)
	if err != nil {
		return CreatedEvent{}, err
	}
	if res.Raw == "" {
		return CreatedEvent{Event: json.RawMessage(`{}`)}, nil
	}
	return CreatedEvent{Event: json.RawMessage(res.Raw)}, nil
}
