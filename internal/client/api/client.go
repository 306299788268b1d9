package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/pkg/api"
)

// ErrUnauthorized is matched by errors.Is for any 401 response.
var ErrUnauthorized = errors.New("not authenticated")

// StatusError describes a non-2xx response from the server
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap позволяет проверять 401 через errors.Is(err, ErrUnauthorized)
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client представляет HTTP клиент для взаимодействия с сервером.
// Cookie session и csrf_token хранятся в cookie jar как в браузере,
// для небезопасных методов токен дублируется в заголовке X-CSRF-Token.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	csrfToken  string
	mu         sync.Mutex
}

// NewClient создает новый API клиент
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}, nil
}

// BaseURL returns the server url the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Restore loads a previously saved session into the cookie jar
func (c *Client) Restore(sessionToken, csrfToken string) {
	var cookies []*http.Cookie
	if sessionToken != "" {
		cookies = append(cookies, &http.Cookie{Name: api.SessionCookie, Value: sessionToken, Path: "/"})
	}
	if csrfToken != "" {
		cookies = append(cookies, &http.Cookie{Name: api.CSRFCookie, Value: csrfToken, Path: "/"})
	}
	c.httpClient.Jar.SetCookies(c.baseURL, cookies)

	c.mu.Lock()
	c.csrfToken = csrfToken
	c.mu.Unlock()
}

// Session returns the current session and CSRF cookie values
func (c *Client) Session() (sessionToken, csrfToken string) {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		switch cookie.Name {
		case api.SessionCookie:
			sessionToken = cookie.Value
		case api.CSRFCookie:
			csrfToken = cookie.Value
		}
	}
	return sessionToken, csrfToken
}

// FetchCSRF получает новый CSRF токен; сервер одновременно ставит cookie
func (c *Client) FetchCSRF(ctx context.Context) (string, error) {
	var resp api.CSRFResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/auth/csrf", nil, &resp); err != nil {
		return "", fmt.Errorf("csrf request failed: %w", err)
	}

	c.setCSRF(resp.CSRFToken)
	return resp.CSRFToken, nil
}

// Signup регистрирует нового пользователя
func (c *Client) Signup(ctx context.Context, req api.CredentialsRequest) (*api.SignupResponse, error) {
	var resp api.SignupResponse
	if _, err := c.doMutation(ctx, http.MethodPost, "/auth/signup", req, &resp); err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию; session cookie остается в jar
func (c *Client) Login(ctx context.Context, req api.CredentialsRequest) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	if _, err := c.doMutation(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	// сервер ротирует CSRF токен при входе
	c.setCSRF(resp.CSRFToken)
	return &resp, nil
}

// Logout завершает сессию на сервере
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.doMutation(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}

	c.setCSRF("")
	return nil
}

// Me returns the identity bound to the current session
func (c *Client) Me(ctx context.Context) (*api.MeResponse, error) {
	var resp api.MeResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// Favorites возвращает избранное текущего пользователя
func (c *Client) Favorites(ctx context.Context) ([]models.Favorite, error) {
	var resp []models.Favorite
	if _, err := c.doRequest(ctx, http.MethodGet, "/favorites", nil, &resp); err != nil {
		return nil, fmt.Errorf("favorites request failed: %w", err)
	}
	return resp, nil
}

// AddFavorite добавляет ученого в избранное.
// created=false означает что запись уже существовала.
func (c *Client) AddFavorite(ctx context.Context, req api.AddFavoriteRequest) (*models.Favorite, bool, error) {
	var resp models.Favorite
	status, err := c.doMutation(ctx, http.MethodPost, "/favorites", req, &resp)
	if err != nil {
		return nil, false, fmt.Errorf("add favorite request failed: %w", err)
	}
	return &resp, status == http.StatusCreated, nil
}

// Search ищет ученых по имени
func (c *Client) Search(ctx context.Context, query string) ([]models.Scholar, error) {
	var resp api.SearchResponse
	path := "/api/scholars?query=" + url.QueryEscape(query)
	if _, err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	return resp.Results, nil
}

// Profile получает профиль ученого
func (c *Client) Profile(ctx context.Context, id string) (*models.Profile, error) {
	var resp models.Profile
	path := "/api/scholars/" + url.PathEscape(models.CanonicalScholarID(id))
	if _, err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) setCSRF(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.csrfToken = token
}

// currentCSRF возвращает известный токен или запрашивает новый
func (c *Client) currentCSRF(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.csrfToken
	c.mu.Unlock()

	if token != "" {
		return token, nil
	}
	return c.FetchCSRF(ctx)
}

// doMutation выполняет запрос с CSRF заголовком
func (c *Client) doMutation(ctx context.Context, method, path string, body, result any) (int, error) {
	token, err := c.currentCSRF(ctx)
	if err != nil {
		return 0, err
	}

	header := http.Header{}
	header.Set(api.CSRFHeader, token)
	return c.do(ctx, method, path, header, body, result)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) (int, error) {
	return c.do(ctx, method, path, nil, body, result)
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, result any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range header {
		req.Header[key] = values
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, statusError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func statusError(status int, body []byte) error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Message != "" || errResp.Error != "") {
		message := errResp.Message
		if message == "" {
			message = errResp.Error
		}
		return &StatusError{StatusCode: status, Message: message}
	}

	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(status)
	}
	return &StatusError{StatusCode: status, Message: message}
}
