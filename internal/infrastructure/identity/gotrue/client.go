// Package gotrue adaptador del proveedor de identidad sobre la API REST de Supabase Auth.
package gotrue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/application/ports"
)

var _ ports.IdentityProvider = (*Client)(nil)

// Config credenciales del proyecto Supabase.
type Config struct {
	BaseURL        string // https://<proyecto>.supabase.co
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
}

// Client cliente de Supabase Auth (GoTrue). Las operaciones de administración usan
// la service role key; login y logout usan la anon key.
type Client struct {
	http    *resty.Client
	anonKey string
	svcKey  string
	logger  zerolog.Logger
}

// APIError error devuelto por GoTrue. Error() devuelve el mensaje del proveedor.
type APIError struct {
	Status    int
	ErrorCode string
	Message   string
}

func (e *APIError) Error() string { return e.Message }

// errorBody cubre las variantes de error de GoTrue:
// {"code":422,"error_code":"email_exists","msg":"..."} y {"error":"invalid_grant","error_description":"..."}.
type errorBody struct {
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenBody struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	User         userBody `json:"user"`
}

// NewClient construye el cliente.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		anonKey: cfg.AnonKey,
		svcKey:  cfg.ServiceRoleKey,
		logger:  logger,
	}
}

// SignIn grant_type=password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.AuthSession, error) {
	var out tokenBody
	var apiErr errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.anonKey).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("gotrue sign in: %w", err)
	}
	if resp.IsError() {
		e := toAPIError(resp.StatusCode(), apiErr)
		if resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ports.ErrInvalidCredentials, e.Message)
		}
		return nil, e
	}

	expiresAt := time.Unix(out.ExpiresAt, 0)
	if out.ExpiresAt == 0 {
		expiresAt = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return &ports.AuthSession{
		User:         ports.IdentityUser{ID: out.User.ID, Email: out.User.Email},
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// CreateIdentity POST /admin/users.
func (c *Client) CreateIdentity(ctx context.Context, email, password string, emailConfirmed bool) (*ports.IdentityUser, error) {
	var out userBody
	var apiErr errorBody
	resp, err := c.admin(ctx).
		SetBody(map[string]any{"email": email, "password": password, "email_confirm": emailConfirmed}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/v1/admin/users")
	if err != nil {
		return nil, fmt.Errorf("gotrue create user: %w", err)
	}
	if resp.IsError() {
		e := toAPIError(resp.StatusCode(), apiErr)
		c.logger.Warn().Int("status", e.Status).Str("error_code", e.ErrorCode).Msg("gotrue rechazó el alta")
		return nil, e
	}
	if out.ID == "" {
		return nil, errors.New("gotrue create user: respuesta sin id")
	}
	return &ports.IdentityUser{ID: out.ID, Email: out.Email}, nil
}

// DeleteIdentity DELETE /admin/users/{id}. Un usuario inexistente no es error.
func (c *Client) DeleteIdentity(ctx context.Context, id string) error {
	var apiErr errorBody
	resp, err := c.admin(ctx).
		SetPathParam("id", id).
		SetError(&apiErr).
		Delete("/auth/v1/admin/users/{id}")
	if err != nil {
		return fmt.Errorf("gotrue delete user: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return toAPIError(resp.StatusCode(), apiErr)
	}
	return nil
}

// SignOut revoca la sesión del token en GoTrue.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	var apiErr errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.anonKey).
		SetAuthToken(accessToken).
		SetError(&apiErr).
		Post("/auth/v1/logout")
	if err != nil {
		return fmt.Errorf("gotrue logout: %w", err)
	}
	if resp.IsError() {
		return toAPIError(resp.StatusCode(), apiErr)
	}
	return nil
}

func (c *Client) admin(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.svcKey).
		SetAuthToken(c.svcKey)
}

func toAPIError(status int, b errorBody) *APIError {
	msg := b.Msg
	for _, alt := range []string{b.Message, b.ErrorDescription, b.Error} {
		if msg != "" {
			break
		}
		msg = alt
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	code := b.ErrorCode
	if code == "" {
		code = b.Error
	}
	return &APIError{Status: status, ErrorCode: code, Message: msg}
}
