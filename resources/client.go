// Package resources implements the downstream Google API calls run through
// the invoker. Responses are picked apart with gjson rather than mapped onto
// full API structs.
package resources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 4 << 20

// Endpoints are the API base URLs. Tests point them at local servers.
type Endpoints struct {
	Drive    string
	Gmail    string
	Calendar string
	Sheets   string
	YouTube  string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Drive:    "https://www.googleapis.com/drive/v3",
		Gmail:    "https://gmail.googleapis.com/gmail/v1",
		Calendar: "https://www.googleapis.com/calendar/v3",
		Sheets:   "https://sheets.googleapis.com/v4",
		YouTube:  "https://www.googleapis.com/youtube/v3",
	}
}

// API holds the endpoint set. Its methods have the invoker.APICall shape.
type API struct {
	endpoints Endpoints
	now       func() time.Time
}

func New(endpoints Endpoints, now func() time.Time) *API {
	if now == nil {
		now = time.Now
	}
	return &API{endpoints: endpoints, now: now}
}

// StatusError is a non-2xx API answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Code)
	}
	return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) HTTPStatus() int {
	return e.Code
}

func join(base string, path ...string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Join(path, "/")
}

// do sends the request and returns the parsed JSON body.
func do(ctx context.Context, client *http.Client, method, url string, body []byte) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, &StatusError{
			Code:    resp.StatusCode,
			Message: gjson.GetBytes(raw, "error.message").String(),
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("invalid JSON from %s", req.URL.Host)
	}
	return gjson.ParseBytes(raw), nil
}

// rawArray returns the JSON array at path, or an empty array when absent.
func rawArray(r gjson.Result, path string) []byte {
	v := r.Get(path)
	if !v.IsArray() {
		return []byte("[]")
	}
	return []byte(v.Raw)
}
