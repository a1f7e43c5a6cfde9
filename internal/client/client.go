// Package client talks to the platform API on behalf of the compose wizard.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/models"
)

// APIError is a non-2xx response from the platform
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Client is an authenticated platform API client
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a client from the CLI configuration
func New(cfg *config.ClientConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "client").Logger(),
	}
}

// UploadImages sends one batch request. files are written as "files" parts in
// slice order, which is the order fileIndex refers to.
func (c *Client) UploadImages(ctx context.Context, orders []models.OrderDescriptor, files []models.FilePart) ([]models.UploadedImage, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	rawOrders, err := json.Marshal(orders)
	if err != nil {
		return nil, fmt.Errorf("failed to encode orders: %w", err)
	}
	if err := writer.WriteField("orders", string(rawOrders)); err != nil {
		return nil, fmt.Errorf("failed to write orders field: %w", err)
	}

	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var resp models.BatchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/images/batch", &buf, writer.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

// ListDrafts returns the caller's drafts
func (c *Client) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	var resp models.DraftListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/drafts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drafts, nil
}

// GetDraft fetches one draft
func (c *Client) GetDraft(ctx context.Context, id string) (*models.Draft, error) {
	var draft models.Draft
	if err := c.doJSON(ctx, http.MethodGet, "/v1/drafts/"+url.PathEscape(id), nil, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// CreateDraft saves a draft
func (c *Client) CreateDraft(ctx context.Context, req *models.DraftRequest) (*models.Draft, error) {
	var draft models.Draft
	if err := c.doJSON(ctx, http.MethodPost, "/v1/drafts", req, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteDraft removes a draft
func (c *Client) DeleteDraft(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/drafts/"+url.PathEscape(id), nil, nil)
}

// Suggest asks the writing assistant
func (c *Client) Suggest(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error) {
	var resp models.SuggestResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/ai/suggest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateShorlog publishes a shorlog
func (c *Client) CreateShorlog(ctx context.Context, req *models.CreateShorlogRequest) (*models.Shorlog, error) {
	var shorlog models.Shorlog
	if err := c.doJSON(ctx, http.MethodPost, "/v1/shorlogs", req, &shorlog); err != nil {
		return nil, err
	}
	return &shorlog, nil
}

// RecentCandidates lists the caller's newest shorlogs or blogs
func (c *Client) RecentCandidates(ctx context.Context, contentType models.ContentType, limit int) ([]models.Candidate, error) {
	path := "/v1/" + string(contentType) + "s/recent?limit=" + strconv.Itoa(limit)

	var resp models.CandidateListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Link creates a cross-reference between a shorlog and a blog
func (c *Client) Link(ctx context.Context, req *models.LinkRequest) (*models.Link, error) {
	var link models.Link
	if err := c.doJSON(ctx, http.MethodPost, "/v1/links", req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error string `json:"error"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = string(bytes.TrimSpace(data))
	}
	return apiErr
}
