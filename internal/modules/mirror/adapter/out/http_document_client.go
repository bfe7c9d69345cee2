package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"tally/internal/modules/mirror/domain"
	mirrorout "tally/internal/modules/mirror/port/out"
	apperrors "tally/internal/platform/errors"
)

// HTTPDocumentClient talks to the spreadsheet document service over its
// JSON REST surface. Every failure is classified: HTTP 404 on a
// document is ErrMirrorDocumentMissing, everything else (network,
// credential, server) is ErrMirrorUnavailable.
type HTTPDocumentClient struct {
	endpoint string
	creds    mirrorout.CredentialSource
}

func NewHTTPDocumentClient(endpoint string, creds mirrorout.CredentialSource) mirrorout.DocumentClient {
	return &HTTPDocumentClient{endpoint: endpoint, creds: creds}
}

type documentInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type documentList struct {
	Documents []documentInfo `json:"documents"`
}

type sheetSpec struct {
	Title  string   `json:"title"`
	Header []string `json:"header"`
}

type createRequest struct {
	Title  string      `json:"title"`
	Sheets []sheetSpec `json:"sheets"`
}

type rowsPayload struct {
	Rows [][]string `json:"rows"`
}

func (c *HTTPDocumentClient) Exists(ctx context.Context, documentID string) error {
	return c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(documentID), nil, nil)
}

func (c *HTTPDocumentClient) FindByTitle(ctx context.Context, title string) (string, error) {
	list := documentList{}
	path := "/v1/documents?title=" + url.QueryEscape(title)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return "", err
	}
	for _, doc := range list.Documents {
		if doc.Title == title {
			return doc.ID, nil
		}
	}
	return "", nil
}

func (c *HTTPDocumentClient) Create(ctx context.Context, title string, sheets []domain.SheetSpec) (string, error) {
	request := createRequest{Title: title}
	for _, sheet := range sheets {
		request.Sheets = append(request.Sheets, sheetSpec{Title: sheet.Title, Header: sheet.Header})
	}
	created := documentInfo{}
	if err := c.do(ctx, http.MethodPost, "/v1/documents", request, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create returned no document id", apperrors.ErrMirrorUnavailable)
	}
	return created.ID, nil
}

func (c *HTTPDocumentClient) AppendRows(ctx context.Context, documentID, sheet string, rows [][]string) error {
	path := fmt.Sprintf("/v1/documents/%s/sheets/%s/rows:append", url.PathEscape(documentID), url.PathEscape(sheet))
	return c.do(ctx, http.MethodPost, path, rowsPayload{Rows: rows}, nil)
}

func (c *HTTPDocumentClient) ReplaceRows(ctx context.Context, documentID, sheet string, rows [][]string) error {
	path := fmt.Sprintf("/v1/documents/%s/sheets/%s/rows", url.PathEscape(documentID), url.PathEscape(sheet))
	return c.do(ctx, http.MethodPut, path, rowsPayload{Rows: rows}, nil)
}

func (c *HTTPDocumentClient) do(ctx context.Context, method, path string, body, result any) error {
	if c.endpoint == "" {
		return fmt.Errorf("%w: no mirror endpoint configured", apperrors.ErrMirrorUnavailable)
	}
	client, err := c.creds.Client(ctx)
	if err != nil {
		return fmt.Errorf("%w: credential: %v", apperrors.ErrMirrorUnavailable, err)
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", apperrors.ErrMirrorUnavailable, err)
		}
		reader = bytes.NewReader(payload)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", apperrors.ErrMirrorUnavailable, err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMirrorUnavailable, err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", apperrors.ErrMirrorDocumentMissing, method, path)
	case response.StatusCode < 200 || response.StatusCode >= 300:
		return fmt.Errorf("%w: %s %s returned %d", apperrors.ErrMirrorUnavailable, method, path, response.StatusCode)
	}
	if result != nil {
		if err := json.NewDecoder(response.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode response: %v", apperrors.ErrMirrorUnavailable, err)
		}
	}
	return nil
}
