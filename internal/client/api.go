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
	"strconv"
	"sync"
	"time"

	"github.com/EmptyEmeraldTablet/blankpage/internal/dto"
)

// requestTimeout bounds every API call; past it the request is treated
// as failed and surfaced, there is no client-side retry.
const requestTimeout = 10 * time.Second

// Failure taxonomy. Handlers of these decide what the user sees;
// ErrUnauthorized additionally tears down the session (see Draft).
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrRequestFailed      = errors.New("request failed")
	ErrTimeout            = errors.New("request timed out")
	ErrUnreachable        = errors.New("server unreachable")
)

// Client is the API surface of the blankpage server.
type Client interface {
	Login(ctx context.Context, password string) (string, error)
	Logout(ctx context.Context) error
	ListMemos(ctx context.Context) ([]dto.MemoResponse, error)
	GetMemo(ctx context.Context, id int64) (dto.MemoResponse, error)
	CreateMemo(ctx context.Context, content string) (dto.MemoResponse, error)
	UpdateMemo(ctx context.Context, id int64, content string) (dto.MemoResponse, error)
	DeleteMemo(ctx context.Context, id int64) error
	GetClip(ctx context.Context) (dto.ClipResponse, error)
	SaveClip(ctx context.Context, text string) (dto.ClipResponse, error)
	// SetAuthToken sets the bearer token used for authenticated requests.
	SetAuthToken(token string)
}

// httpClient implements Client over HTTP/JSON. The token is guarded by a
// mutex: the memo and clip drafts save from separate goroutines, and auth
// teardown writes the token from whichever save fails first.
type httpClient struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	authToken string
}

// NewHTTPClient creates an API client for the server at baseURL,
// e.g. "http://localhost:8080".
func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *httpClient) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

func (c *httpClient) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authToken
}

func (c *httpClient) Login(ctx context.Context, password string) (string, error) {
	var out dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", dto.LoginRequest{Password: password}, &out, http.StatusOK)
	if err != nil {
		return "", err
	}
	c.SetAuthToken(out.Token)
	return out.Token, nil
}

func (c *httpClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil, http.StatusNoContent)
	if err == nil || errors.Is(err, ErrUnauthorized) {
		c.SetAuthToken("")
	}
	return err
}

func (c *httpClient) ListMemos(ctx context.Context) ([]dto.MemoResponse, error) {
	var out []dto.MemoResponse
	if err := c.do(ctx, http.MethodGet, "/memos", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) GetMemo(ctx context.Context, id int64) (dto.MemoResponse, error) {
	var out dto.MemoResponse
	err := c.do(ctx, http.MethodGet, memoPath(id), nil, &out, http.StatusOK)
	return out, err
}

func (c *httpClient) CreateMemo(ctx context.Context, content string) (dto.MemoResponse, error) {
	var out dto.MemoResponse
	err := c.do(ctx, http.MethodPost, "/memos", dto.CreateMemoRequest{Content: content}, &out, http.StatusCreated)
	return out, err
}

func (c *httpClient) UpdateMemo(ctx context.Context, id int64, content string) (dto.MemoResponse, error) {
	var out dto.MemoResponse
	err := c.do(ctx, http.MethodPut, memoPath(id), dto.UpdateMemoRequest{Content: content}, &out, http.StatusOK)
	return out, err
}

func (c *httpClient) DeleteMemo(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, memoPath(id), nil, nil, http.StatusNoContent)
}

func (c *httpClient) GetClip(ctx context.Context) (dto.ClipResponse, error) {
	var out dto.ClipResponse
	err := c.do(ctx, http.MethodGet, "/clip", nil, &out, http.StatusOK)
	return out, err
}

func (c *httpClient) SaveClip(ctx context.Context, text string) (dto.ClipResponse, error) {
	var out dto.ClipResponse
	err := c.do(ctx, http.MethodPost, "/clip", dto.SaveClipRequest{Text: &text}, &out, http.StatusCreated)
	return out, err
}

// do performs one JSON request and decodes the response into out (if any).
// Any status other than want maps onto the failure taxonomy.
func (c *httpClient) do(ctx context.Context, method, path string, body, out interface{}, want int) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("join url: %w", err)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func memoPath(id int64) string {
	return "/memos/" + strconv.FormatInt(id, 10)
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

func statusError(resp *http.Response) error {
	// Error bodies carry a machine-readable code; fall back on status.
	var body dto.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<10)).Decode(&body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if body.Error == dto.CodeInvalidCredentials {
			return ErrInvalidCredentials
		}
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrInvalidPayload
	}
	if body.Error != "" {
		return fmt.Errorf("%w: %s (status %d)", ErrRequestFailed, body.Error, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
}
