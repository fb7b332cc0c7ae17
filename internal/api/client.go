package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// apiBase is the path prefix of the gateway's JSON API.
const apiBase = "/api2/json"

// CredentialSource supplies the current auth ticket to outgoing
// requests. The client holds only a read reference; it never stores or
// mutates credentials.
type CredentialSource interface {
	// AuthTokens returns the auth ticket and CSRF prevention token.
	// ok is false when no session is established; requests are then
	// sent unauthenticated (the gateway answers 401).
	AuthTokens() (ticket, csrf string, ok bool)
}

// envelope is the gateway's standard response wrapper.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client is a thin HTTP client for the gateway's JSON API. It attaches
// the current credential, serializes parameters, and maps failures to
// the typed errors of this package. It never retries.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a gateway API client. The baseURL should be the
// root URL of the gateway (e.g. https://gw.example.com:8006). The
// credential source may be nil for unauthenticated use (login calls).
func NewClient(baseURL string, insecure bool, creds CredentialSource, log *zap.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		log: log,
	}
}

// Get performs an HTTP GET request with the given query parameters and
// unmarshals the unwrapped JSON response into result.
func (c *Client) Get(
	ctx context.Context,
	path string,
	params url.Values,
	result interface{},
) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the unwrapped JSON response into result.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do builds the request, attaches auth headers, and maps the response
// to a typed result or a typed failure.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	op := method + " " + path
	fullURL := c.baseURL + apiBase + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if ticket, csrf, ok := c.creds.AuthTokens(); ok {
			req.AddCookie(&http.Cookie{Name: "PMGAuthCookie", Value: ticket})
			if method != http.MethodGet && csrf != "" {
				req.Header.Set("CSRFPreventionToken", csrf)
			}
		}
	}

	reqID := uuid.NewString()
	c.log.Debug("gateway request",
		zap.String("request_id", reqID),
		zap.String("op", op),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("gateway unreachable",
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return &NetworkError{Op: op, Err: err}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &NetworkError{Op: op, Err: readErr}
	}

	if resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden {
		return &AuthError{Op: op, Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := serverMessage(respBody)
		if message == "" {
			message = strings.TrimSpace(resp.Status)
		}
		return &ActionError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: message,
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &DecodeError{Op: op, Err: fmt.Errorf("response has no data field")}
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return &DecodeError{Op: op, Err: err}
	}

	return nil
}

// serverMessage extracts a human-readable message from an error
// response body, if the gateway provided one.
func serverMessage(body []byte) string {
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		return strings.TrimSpace(env.Message)
	}
	return strings.TrimSpace(string(body))
}
