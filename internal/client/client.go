// Package client talks to the paperdesk HTTP API. All methods surface
// failures as structured apierrors so callers can branch on the code
// without parsing messages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/model"
)

// CredentialSource supplies the bearer token for authenticated calls. An
// empty token means the request goes out unauthenticated.
type CredentialSource interface {
	AccessToken() string
}

// SignupRequest carries the fields of a registration call.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is the server's answer to a successful login.
type LoginResult struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         model.Identity `json:"user"`
}

// TokenPair is the server's answer to a token refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Client is the HTTP API client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialSource
}

// New creates an API client for the server at baseURL.
func New(baseURL string, credentials CredentialSource) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		credentials: credentials,
	}
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (model.Identity, error) {
	var resp struct {
		User model.Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, req, &resp); err != nil {
		return model.Identity{}, err
	}
	return resp.User, nil
}

// Login exchanges credentials for a token pair and the account identity.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	req := map[string]string{"username": username, "password": password}
	var resp LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return LoginResult{}, err
	}
	return resp, nil
}

// RefreshTokens rotates a refresh token.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (TokenPair, error) {
	req := map[string]string{"refreshToken": refreshToken}
	var resp TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, req, &resp); err != nil {
		return TokenPair{}, err
	}
	return resp, nil
}

// Logout revokes a refresh token on the server.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	req := map[string]string{"refreshToken": refreshToken}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, req, nil)
}

// AllPapers returns every paper regardless of status.
func (c *Client) AllPapers(ctx context.Context) ([]model.Paper, error) {
	var papers []model.Paper
	if err := c.do(ctx, http.MethodGet, "/api/papers/all", nil, nil, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// SearchPapers filters papers by keyword on the server. An empty keyword
// returns everything.
func (c *Client) SearchPapers(ctx context.Context, keyword string) ([]model.Paper, error) {
	query := url.Values{"keyword": {keyword}}
	var papers []model.Paper
	if err := c.do(ctx, http.MethodGet, "/api/papers/search", query, nil, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// CreatePaper submits a new paper for the given author.
func (c *Client) CreatePaper(ctx context.Context, draft model.PaperDraft, authorUsername string) (model.Paper, error) {
	query := url.Values{"authorUsername": {authorUsername}}
	var paper model.Paper
	if err := c.do(ctx, http.MethodPost, "/api/papers/create", query, draft, &paper); err != nil {
		return model.Paper{}, err
	}
	return paper, nil
}

// PapersByAuthor returns the papers submitted by one author.
func (c *Client) PapersByAuthor(ctx context.Context, username string) ([]model.Paper, error) {
	var papers []model.Paper
	if err := c.do(ctx, http.MethodGet, "/api/papers/author/"+url.PathEscape(username), nil, nil, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// PublishPaper marks a paper as published by the given committee member.
func (c *Client) PublishPaper(ctx context.Context, id uuid.UUID, committeeUsername string) (model.Paper, error) {
	query := url.Values{"committeeUsername": {committeeUsername}}
	var paper model.Paper
	if err := c.do(ctx, http.MethodPut, "/api/papers/publish/"+id.String(), query, nil, &paper); err != nil {
		return model.Paper{}, err
	}
	return paper, nil
}

// UnpublishedPapers returns the committee's pending queue.
func (c *Client) UnpublishedPapers(ctx context.Context) ([]model.Paper, error) {
	var papers []model.Paper
	if err := c.do(ctx, http.MethodGet, "/api/papers/unpublished", nil, nil, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// PublishedPapers returns only published papers.
func (c *Client) PublishedPapers(ctx context.Context) ([]model.Paper, error) {
	var papers []model.Paper
	if err := c.do(ctx, http.MethodGet, "/api/papers/published", nil, nil, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// UploadManuscript streams a manuscript file to the server.
func (c *Client) UploadManuscript(ctx context.Context, id uuid.UUID, reader io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/papers/manuscript/"+id.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	return nil
}

// DownloadManuscript streams a stored manuscript. The caller closes the
// returned reader.
func (c *Client) DownloadManuscript(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/papers/manuscript/"+id.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewTransport(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apierrors.NewTransport(fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.credentials == nil {
		return
	}
	if token := c.credentials.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func decodeError(resp *http.Response) error {
	var body struct {
		Message string         `json:"message"`
		Code    apierrors.Code `json:"code"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return apierrors.FromResponse(resp.StatusCode, body.Code, body.Message)
}
