package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/dmitrijs2005/evote/internal/logging"
	"github.com/dmitrijs2005/evote/internal/netx"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath      = "/auth/login/"
	registerPath   = "/auth/register/"
	refreshPath    = "/auth/token/refresh/"
	castVotePath   = "/vote/cast/"
	candidatesPath = "/vote/candidates/%s/"
	partyVotesPath = "/vote/party-votes/%s/"

	contentTypeJSON = "application/json"

	// error bodies are only read for their message
	maxErrorBody = 64 << 10
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  logging.Logger

	// concurrent 401s share one refresh exchange
	refreshes singleflight.Group

	mu               sync.RWMutex
	onSessionExpired func()
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the API served at baseURL. timeout
// bounds every single HTTP exchange; zero means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenStore, logger logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logging.OrNop(logger),
	}
}

// SetSessionExpiredHandler registers fn to run after the session was cleared
// because a token refresh failed.
func (c *HTTPClient) SetSessionExpiredHandler(fn func()) {
	c.mu.Lock()
	c.onSessionExpired = fn
	c.mu.Unlock()
}

type apiRequest struct {
	method      string
	path        string
	body        []byte
	contentType string
	// authorized requests carry the bearer token and may refresh it on 401
	authorized bool
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	var out models.AuthResult
	req := apiRequest{method: http.MethodPost, path: loginPath, body: body, contentType: contentTypeJSON}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	fields := []netx.Field{
		{Name: "national_id", Value: reg.NationalID},
		{Name: "first_name", Value: reg.FirstName},
		{Name: "last_name", Value: reg.LastName},
		{Name: "date_of_birth", Value: reg.DateOfBirth},
		{Name: "state", Value: reg.State},
		{Name: "lga", Value: reg.LGA},
		{Name: "vin", Value: reg.VIN},
		{Name: "password", Value: reg.Password},
	}

	var files []netx.FormFile
	if reg.Photo != nil {
		files = append(files, netx.FormFile{
			Field:       "profile_pic",
			FileName:    reg.Photo.Name,
			ContentType: reg.Photo.ContentType,
			Content:     reg.Photo.Content,
		})
	}

	body, contentType, err := netx.MultipartBody(fields, files...)
	if err != nil {
		return err
	}

	req := apiRequest{method: http.MethodPost, path: registerPath, body: body, contentType: contentType}
	return c.do(ctx, req, nil)
}

func (c *HTTPClient) Candidates(ctx context.Context, t models.ElectionType) ([]models.Candidate, error) {
	var out []models.Candidate
	req := apiRequest{method: http.MethodGet, path: fmt.Sprintf(candidatesPath, url.PathEscape(string(t))), authorized: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) PartyVotes(ctx context.Context, t models.ElectionType) ([]models.PartyVote, error) {
	var out []models.PartyVote
	req := apiRequest{method: http.MethodGet, path: fmt.Sprintf(partyVotesPath, url.PathEscape(string(t))), authorized: true}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CastVote(ctx context.Context, candidateID int64) (string, error) {
	body, err := json.Marshal(models.CastVoteRequest{Candidate: candidateID})
	if err != nil {
		return "", err
	}

	var out messageResponse
	req := apiRequest{method: http.MethodPost, path: castVotePath, body: body, contentType: contentTypeJSON, authorized: true}
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// do sends req and decodes a 2xx JSON answer into out (which may be nil).
// An authorized request answered with 401 is retried once with a renewed
// access token. A request sent without a token has no session to renew.
func (c *HTTPClient) do(ctx context.Context, req apiRequest, out any) error {
	token := ""
	if req.authorized {
		token = c.tokens.AccessToken()
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return err
	}

	if req.authorized && token != "" && resp.StatusCode == http.StatusUnauthorized {
		discard(resp)

		token, err = c.renewToken(ctx, token)
		if err != nil {
			return err
		}

		resp, err = c.send(ctx, req, token)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func (c *HTTPClient) send(ctx context.Context, req apiRequest, token string) (*http.Response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)
	httpReq.Header.Set("Accept", contentTypeJSON)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn(ctx, "request failed",
			"method", req.method, "path", req.path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w: %w", req.method, req.path, ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "request",
		"method", req.method, "path", req.path, "request_id", requestID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	return resp, nil
}

// renewToken returns the access token to retry with after stale was refused.
// A token stored since stale was sent is reused as is; otherwise concurrent
// callers wait on a single refresh exchange.
func (c *HTTPClient) renewToken(ctx context.Context, stale string) (string, error) {
	current := c.tokens.AccessToken()
	if current == "" {
		// cleared meanwhile, e.g. by a failed refresh of a concurrent request
		return "", ErrSessionExpired
	}
	if current != stale {
		return current, nil
	}

	v, err, shared := c.refreshes.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	if shared {
		c.logger.Debug(ctx, "token refresh shared by concurrent requests")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refresh exchanges the refresh token for a new access token. A missing or
// rejected refresh token expires the session; a transport failure does not.
func (c *HTTPClient) refresh(ctx context.Context) (string, error) {
	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		c.expire(ctx)
		return "", ErrSessionExpired
	}

	body, err := json.Marshal(refreshRequest{Refresh: refresh})
	if err != nil {
		return "", err
	}

	resp, err := c.send(ctx, apiRequest{method: http.MethodPost, path: refreshPath, body: body, contentType: contentTypeJSON}, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out refreshResponse
	if err := decodeResponse(resp, &out); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return "", err
		}
		c.expire(ctx)
		return "", ErrSessionExpired
	}

	if out.Access == "" {
		c.expire(ctx)
		return "", ErrSessionExpired
	}

	if err := c.tokens.UpdateTokens(ctx, out.Access, out.Refresh); err != nil {
		c.logger.Error(ctx, "failed to store refreshed tokens", "error", err)
	}

	return out.Access, nil
}

func (c *HTTPClient) expire(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error(ctx, "failed to clear session", "error", err)
	}

	c.logger.Info(ctx, "session expired")

	c.mu.RLock()
	fn := c.onSessionExpired
	c.mu.RUnlock()

	if fn != nil {
		fn()
	}
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// errorMessage picks the first of message, error, detail from a JSON error
// body.
func errorMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "detail"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
