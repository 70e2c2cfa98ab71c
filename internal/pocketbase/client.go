package pocketbase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/plajta/depo-service/internal/config"
)

var (
	// ErrNotFound — в коллекции нет записи с таким идентификатором.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidCredentials — хранилище отклонило пару identity/password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	listPerPage = 500

	// Токен обновляется заранее, чтобы не упереться в истёкший посреди запроса.
	tokenRefreshSkew = time.Minute
	// Запас на случай токена без читаемого exp.
	tokenFallbackTTL = 10 * time.Minute
)

// Client — клиент REST API хранилища записей (PocketBase).
// Сервисный токен получается один раз и обновляется по истечении,
// а не на каждый вызов.
type Client struct {
	logger *slog.Logger
	http   *http.Client

	baseURL string

	identity          string
	secret            string
	serviceCollection string

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func New(logger *slog.Logger, cfg config.PocketBase) *Client {
	return &Client{
		logger:            logger.With(slog.String("component", "pocketbase")),
		http:              &http.Client{Timeout: cfg.Timeout},
		baseURL:           strings.TrimRight(cfg.URL, "/"),
		identity:          cfg.ServiceIdentity,
		secret:            cfg.ServiceSecret,
		serviceCollection: cfg.ServiceCollection,
	}
}

type AuthRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResult struct {
	Token  string     `json:"token"`
	Record AuthRecord `json:"record"`
}

// AuthWithPassword выполняет парольную аутентификацию в указанной коллекции.
func (c *Client) AuthWithPassword(ctx context.Context, collection, identity, password string) (AuthResult, error) {
	body, err := json.Marshal(map[string]string{
		"identity": identity,
		"password": password,
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to marshal auth body: %w", err)
	}

	path := fmt.Sprintf("/api/collections/%s/auth-with-password", url.PathEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return AuthResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return AuthResult{}, fmt.Errorf("auth request failed: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnauthorized:
		return AuthResult{}, ErrInvalidCredentials
	default:
		return AuthResult{}, fmt.Errorf("auth failed: status %d", res.StatusCode)
	}

	var result AuthResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return AuthResult{}, fmt.Errorf("failed to decode auth response: %w", err)
	}
	return result, nil
}

// List возвращает все записи коллекции в порядке sort, постранично
// выгружая их из хранилища.
func (c *Client) List(ctx context.Context, collection, sort string) ([]json.RawMessage, error) {
	var items []json.RawMessage

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("perPage", strconv.Itoa(listPerPage))
		if sort != "" {
			query.Set("sort", sort)
		}

		raw, err := c.do(ctx, http.MethodGet, c.recordsPath(collection)+"?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var res struct {
			Page       int               `json:"page"`
			TotalPages int               `json:"totalPages"`
			Items      []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, fmt.Errorf("failed to decode list response: %w", err)
		}

		items = append(items, res.Items...)
		if res.Page >= res.TotalPages {
			break
		}
	}

	return items, nil
}

func (c *Client) GetOne(ctx context.Context, collection, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, c.recordPath(collection, id), nil)
}

func (c *Client) Create(ctx context.Context, collection string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, c.recordsPath(collection), body)
}

func (c *Client) Update(ctx context.Context, collection, id string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, c.recordPath(collection, id), body)
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.recordPath(collection, id), nil)
	return err
}

func (c *Client) recordsPath(collection string) string {
	return fmt.Sprintf("/api/collections/%s/records", url.PathEscape(collection))
}

func (c *Client) recordPath(collection, id string) string {
	return c.recordsPath(collection) + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.serviceToken(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var raw json.RawMessage
		if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return raw, nil
	case http.StatusNoContent:
		return nil, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		// Токен мог быть отозван, следующий вызов аутентифицируется заново.
		c.invalidateToken()
		return nil, fmt.Errorf("%s %s: access denied (status %d)", method, path, res.StatusCode)
	default:
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, res.StatusCode)
	}
}

func (c *Client) serviceToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp.Add(-tokenRefreshSkew)) {
		return c.token, nil
	}

	result, err := c.AuthWithPassword(ctx, c.serviceCollection, c.identity, c.secret)
	if err != nil {
		return "", fmt.Errorf("service auth failed: %w", err)
	}

	exp, ok := TokenExpiry(result.Token)
	if !ok {
		exp = time.Now().Add(tokenFallbackTTL)
	}

	c.token = result.Token
	c.tokenExp = exp
	c.logger.Debug("service token refreshed", slog.Time("expires", exp))
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// TokenExpiry извлекает срок действия из exp-клейма JWT.
func TokenExpiry(token string) (time.Time, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return time.Time{}, false
	}
	return time.Unix(claims.Exp, 0), true
}
