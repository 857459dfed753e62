package resources

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const folderMimeType = "application/vnd.google-apps.folder"

type DriveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}

type DriveFiles struct {
	Files []DriveFile `json:"files"`
}

type DriveFolder struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WebViewLink string `json:"webViewLink,omitempty"`
}

type CreatedFolder struct {
	Folder DriveFolder `json:"folder"`
}

// ListDriveFiles returns the first ten files visible to the user.
func (a *API) ListDriveFiles(ctx context.Context, client *http.Client, _ credential.Credential) (DriveFiles, error) {
	q := url.Values{
		"pageSize": {"10"},
		"fields":   {"files(id, name, mimeType, modifiedTime)"},
	}
	res, err := do(ctx, client, http.MethodGet, join(a.endpoints.Drive, "files")+"?"+q.Encode(), nil)
	if err != nil {
		return DriveFiles{}, err
	}

	out := DriveFiles{Files: []DriveFile{}}
	res.Get("files").ForEach(func(_, f gjson.Result) bool {
		out.Files = append(out.Files, DriveFile{
			ID:           f.Get("id").String(),
			Name:         f.Get("name").String(),
			MimeType:     f.Get("mimeType").String(),
			ModifiedTime: f.Get("modifiedTime").String(),
		})
		return true
	})
	return out, nil
}

// CreateFolder creates a timestamped test folder in the user's Drive root.
func (a *API) CreateFolder(ctx context.Context, client *http.Client, _ credential.Credential) (CreatedFolder, error) {
	body, err := sjson.SetBytes(nil, "name", "OAuth Test Folder - "+a.now().UTC().Format(time.RFC3339))
	if err != nil {
		return CreatedFolder{}, err
	}
	if body, err = sjson.SetBytes(body, "mimeType", folderMimeType); err != nil {
		return CreatedFolder{}, err
	}

	q := url.Values{"fields": {"id, name, webViewLink"}}
	res, err := do(ctx, client, http.MethodPost, join(a.endpoints.Drive, "files")+"?"+q.Encode(), body)
	if err != nil {
		return CreatedFolder{}, err
	}

	return CreatedFolder{Folder: DriveFolder{
		ID:          res.Get("id").String(),
		Name:        res.Get("name").String(),
		WebViewLink: res.Get("webViewLink").String(),
	}}, nil
}
