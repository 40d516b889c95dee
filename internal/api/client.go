package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// CredentialStore is the slice of the session store the gateway needs:
// read the current bearer pair, persist a rotated one after refresh.
type CredentialStore interface {
	AccessToken() string
	RefreshToken() string
	StoreTokens(accessToken, refreshToken string)
}

// Logger matches the application's JSON-lines logger.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

// Client is the API gateway. Every call attaches the stored bearer
// credential and performs at most one refresh-and-retry on a 401. All
// transport and decode failures fold into Result values; no method
// returns a raw transport error to its caller.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	creds   CredentialStore
	log     Logger
}

// DefaultBaseURL points at a local backend, the same default the
// environment-provided configuration falls back to.
const DefaultBaseURL = "http://localhost:8000/"

func NewClient(baseURL string, creds CredentialStore, log Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		creds:   creds,
		log:     log,
	}
}

// do sends one request with the current access token. On a 401 it exchanges
// the refresh token for a new pair and retries the original request exactly
// once; if no refresh token is stored, or the refresh call fails or omits a
// new access token, the original 401 response is returned unmodified.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	send := func(token string) (*http.Response, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return c.HTTP.Do(req)
	}

	resp, err := send(c.creds.AccessToken())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	refresh := c.creds.RefreshToken()
	if refresh == "" {
		return resp, nil
	}

	newAccess, newRefresh, ok := c.refreshTokens(ctx, refresh)
	if !ok {
		return resp, nil
	}
	resp.Body.Close()

	c.creds.StoreTokens(newAccess, newRefresh)
	c.log.Info("access token refreshed", nil)
	return send(newAccess)
}

// refreshTokens performs the single PATCH auth/refresh exchange. The refresh
// token rides in the Authorization header; a response without a new access
// token counts as failure.
func (c *Client) refreshTokens(ctx context.Context, refreshToken string) (access, refresh string, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.BaseURL+"auth/refresh", nil)
	if err != nil {
		return "", "", false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.log.Error("token refresh failed", map[string]interface{}{"error": err.Error()})
		return "", "", false
	}
	defer resp.Body.Close()

	var envelope struct {
		Data tokenData `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", "", false
	}
	if resp.StatusCode >= 300 || envelope.Data.AccessToken == "" {
		return "", "", false
	}
	return envelope.Data.AccessToken, envelope.Data.RefreshToken, true
}

// decode drains the response body into v, tolerating nothing: a malformed
// body is a decode error the caller folds into a failure Result.
func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
