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
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
	"github.com/google/uuid"
)

const maxErrorMessage = 200

// HTTPClient talks to the bcard2 REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "https://host/bcard2"). A zero timeout disables the per-request limit.
func NewHTTPClient(baseURL string, timeout time.Duration, logger logging.Logger) *HTTPClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout, Transport: transport},
		logger:  logger,
	}
}

func (c *HTTPClient) ListCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	if _, err := c.do(ctx, http.MethodGet, "/cards", "", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *HTTPClient) GetCard(ctx context.Context, id string) (models.Card, error) {
	var card models.Card
	if _, err := c.do(ctx, http.MethodGet, "/cards/"+url.PathEscape(id), "", nil, &card); err != nil {
		return models.Card{}, err
	}
	return card, nil
}

func (c *HTTPClient) MyCards(ctx context.Context, token string) ([]models.Card, error) {
	var cards []models.Card
	if _, err := c.do(ctx, http.MethodGet, "/cards/my-cards", token, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *HTTPClient) CreateCard(ctx context.Context, token string, in models.CardInput) (models.Card, error) {
	var card models.Card
	if _, err := c.do(ctx, http.MethodPost, "/cards", token, in, &card); err != nil {
		return models.Card{}, err
	}
	return card, nil
}

func (c *HTTPClient) ToggleLike(ctx context.Context, token string, id string) error {
	_, err := c.do(ctx, http.MethodPatch, "/cards/"+url.PathEscape(id), token, struct{}{}, nil)
	return err
}

func (c *HTTPClient) DeleteCard(ctx context.Context, token string, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/cards/"+url.PathEscape(id), token, nil, nil)
	return err
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	_, err := c.do(ctx, http.MethodPost, "/users", "", reg, nil)
	return err
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/users/login", "", creds, nil)
}

// do sends one request and returns the response body. When out is non-nil
// the body is also decoded into it.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in any, out any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthTokenHeaderName, token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "api request",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	if err := mapStatus(resp.StatusCode, data); err != nil {
		return nil, err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	return data, nil
}

func mapTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func mapStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}

	msg := errorMessage(body)

	switch code {
	case http.StatusUnauthorized:
		return wrapMessage(ErrUnauthorized, msg)
	case http.StatusForbidden:
		return wrapMessage(ErrForbidden, msg)
	case http.StatusNotFound:
		return wrapMessage(ErrNotFound, msg)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return wrapMessage(ErrUnavailable, msg)
	default:
		return &ServerError{StatusCode: code, Message: msg}
	}
}

func wrapMessage(sentinel error, msg string) error {
	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// errorMessage reduces an error body to a short printable string. JSON
// string bodies are unquoted.
func errorMessage(body []byte) string {
	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		s = string(body)
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxErrorMessage {
		s = string([]rune(s)[:maxErrorMessage]) + "..."
	}
	return s
}
