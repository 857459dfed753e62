package resources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/tidwall/sjson"
)

type Spreadsheet struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type CreatedSpreadsheet struct {
	Spreadsheet Spreadsheet `json:"spreadsheet"`
}

const sheetRange = "Sheet1!A1:C2"

// CreateTestSpreadsheet creates a spreadsheet and writes a header row and one
// data row into it.
func (a *API) CreateTestSpreadsheet(ctx context.Context, client *http.Client, _ credential.Credential) (CreatedSpreadsheet, error) {
	now := a.now().UTC()

	create, err := sjson.SetBytes(nil, "properties.title", "OAuth Test Sheet - "+now.Format(time.RFC3339))
	if err != nil {
		return CreatedSpreadsheet{}, err
	}
	res, err := do(ctx, client, http.MethodPost, join(a.endpoints.Sheets, "spreadsheets"), create)
	if err != nil {
		return CreatedSpreadsheet{}, err
	}

	sheet := Spreadsheet{
		ID:    res.Get("spreadsheetId").String(),
		URL:   res.Get("spreadsheetUrl").String(),
		Title: res.Get("properties.title").String(),
	}
	if sheet.ID == "" {
		return CreatedSpreadsheet{}, fmt.Errorf("spreadsheet response has no id")
	}

	values, err := sjson.SetBytes(nil, "values", [][]string{
		{"Name", "Email", "Date"},
		{"Test User", "test@example.com", now.Format(time.DateOnly)},
	})
	if err != nil {
		return CreatedSpreadsheet{}, err
	}

	update := join(a.endpoints.Sheets, "spreadsheets", url.PathEscape(sheet.ID), "values", url.PathEscape(sheetRange)) + "?valueInputOption=RAW"
	if _, err := do(ctx, client, http.MethodPut, update, values); err != nil {
		return CreatedSpreadsheet{}, err
	}

	return CreatedSpreadsheet{Spreadsheet: sheet}, nil
}
