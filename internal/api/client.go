// Package api is the typed client for the Q&A backend HTTP boundary.
// All size, rate-limit and format constraints live server-side; this
// package only normalizes failures into human-readable messages.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the Q&A backend. Safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the given base URL. A trailing slash is trimmed
// so paths can be appended verbatim.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// BaseURL returns the normalized base URL the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Health queries GET /api/health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.getJSON(ctx, "/api/health", nil, &out)
	return out, err
}

// UploadArchive submits an archive blob as multipart form field "file"
// to POST /api/upload.
func (c *Client) UploadArchive(ctx context.Context, filename string, r io.Reader) (IngestResult, error) {
	var out IngestResult

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return out, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return out, fmt.Errorf("read archive: %w", err)
	}
	if err := mw.Close(); err != nil {
		return out, fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	err = c.do(req, &out)
	return out, err
}

// LoadRepository submits a repository URL to POST /api/github.
func (c *Client) LoadRepository(ctx context.Context, repoURL string) (IngestResult, error) {
	var out IngestResult
	err := c.postJSON(ctx, "/api/github", map[string]string{"repo_url": repoURL}, &out)
	return out, err
}

// Ask submits a question plus tag filters to POST /api/ask.
func (c *Client) Ask(ctx context.Context, question string, tags []string) (Answer, error) {
	var out Answer
	if tags == nil {
		tags = []string{}
	}
	body := map[string]any{"question": question, "tags": tags}
	err := c.postJSON(ctx, "/api/ask", body, &out)
	return out, err
}

// Refactor submits a refactor topic to POST /api/refactor.
func (c *Client) Refactor(ctx context.Context, topic string) (RefactorResult, error) {
	var out RefactorResult
	err := c.postJSON(ctx, "/api/refactor", map[string]string{"question": topic}, &out)
	return out, err
}

// History fetches GET /api/history with optional search and tag filters,
// combined server-side into one bounded result set.
func (c *Client) History(ctx context.Context, search, tag string) ([]HistoryEntry, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if tag != "" {
		params.Set("tag", tag)
	}
	var out struct {
		History []HistoryEntry `json:"history"`
	}
	if err := c.getJSON(ctx, "/api/history", params, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Tags fetches the distinct tag vocabulary from GET /api/tags.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var out struct {
		Tags []string `json:"tags"`
	}
	if err := c.getJSON(ctx, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// Files fetches the manifest of the codebase currently loaded server-side.
func (c *Client) Files(ctx context.Context) (Manifest, error) {
	var out Manifest
	err := c.getJSON(ctx, "/api/files", nil, &out)
	return out, err
}

// FileContent fetches one file from the loaded codebase by relative path.
func (c *Client) FileContent(ctx context.Context, path string) (FileContent, error) {
	var out FileContent
	err := c.getJSON(ctx, "/api/files/"+url.PathEscape(path), nil, &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError extracts the backend's "detail" message from an error body,
// falling back to the HTTP status text when the body is not JSON.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return errors.New(payload.Detail)
	}
	return errors.New(resp.Status)
}
