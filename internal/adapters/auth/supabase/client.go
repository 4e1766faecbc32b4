package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pediatric-dosage/internal/platform/httpclient"
	"pediatric-dosage/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("supabase client not configured")
	ErrUnauthorized  = errors.New("supabase unauthorized")
	ErrUpstream      = errors.New("supabase upstream error")
)

// Config del cliente Supabase Auth (GoTrue).
// BaseURL y AnonKey normalmente vendrán de env vars en el servicio que lo instancie.
type Config struct {
	BaseURL string
	AnonKey string

	// Timeout HTTP; si <= 0 se usa el default del httpclient.
	Timeout time.Duration
}

type Client struct {
	baseURL string
	anonKey string
	http    *httpclient.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		anonKey: strings.TrimSpace(cfg.AnonKey),
		http:    httpclient.New(cfg.Timeout),
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != "" && c.anonKey != ""
}

// VerifyToken valida un access token contra GoTrue (GET /auth/v1/user).
// Supabase responde el usuario dueño del token o 401/403 si no es válido.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	headers := map[string]string{
		"apikey":        c.anonKey,
		"Authorization": "Bearer " + token,
	}

	var out struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	err := c.http.DoJSON(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", headers, nil, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return auth.Claims{}, ErrUnauthorized
			default:
				return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
			}
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.ID = strings.TrimSpace(out.ID)
	if out.ID == "" {
		return auth.Claims{}, errors.New("supabase response missing user id")
	}

	return auth.Claims{
		UserID: out.ID,
		Email:  strings.TrimSpace(out.Email),
		Role:   strings.TrimSpace(out.Role),
	}, nil
}
