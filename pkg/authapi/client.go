// Package authapi, backend'in auth endpoint'lerine giden stateless client'ı
// ve kimlikli istekler için refresh-on-401 transport'unu barındırır.
//
// Client hiçbir durum tutmaz: token saklamak, header güncellemek ve
// logout kararı AuthSession'ın işidir.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
)

// Backend endpoint path'leri.
const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	RefreshPath  = "/auth/refresh-token"
)

// maxBodyBytes, backend yanıt gövdesi için üst sınır.
const maxBodyBytes = 1 << 20

// Client, backend'in auth endpoint'leri için HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient, verilen timeout ile yeni bir Client oluşturur.
//
// Bu client'ın transport'u RetryTransport DEĞİLDİR: login/register'dan
// gelen 401 bir refresh tetiklememeli, kullanıcıya hata olarak dönmelidir.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP, hazır bir http.Client ile Client oluşturur (testler için).
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL, backend'in kök adresini döner.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login, POST /auth/login çağırır.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return c.post(ctx, LoginPath, req)
}

// Register, POST /auth/register çağırır. confirmPassword gövdeye
// Password'dan türetilerek yazılır.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return c.post(ctx, RegisterPath, req.Payload())
}

// Refresh, POST /auth/refresh-token çağırır.
// İstek refresh çağrısı olarak işaretlenir; RetryTransport bunun 401'ini
// asla yeniden denemez.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	return c.post(WithRefreshCall(ctx), RefreshPath, models.RefreshPayload{Token: refreshToken})
}

// ─── Private Helpers ───

func (c *Client) post(ctx context.Context, path string, payload any) (*models.AuthResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pkg.ErrNetworkUnreachable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pkg.ErrNetworkUnreachable, path, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// devam
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return nil, &pkg.APIError{Status: resp.StatusCode, Message: extractMessage(body), Err: pkg.ErrAuthRejected}
	default:
		return nil, &pkg.APIError{Status: resp.StatusCode, Message: extractMessage(body), Err: pkg.ErrServer}
	}

	var out models.AuthResponse
	if len(bytes.TrimSpace(body)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %v", pkg.ErrServer, path, err)
	}
	return &out, nil
}

// extractMessage, hata gövdesinden kullanıcıya gösterilecek mesajı çıkarır.
// Backend "message" veya "error" alanı kullanır; ikisi de yoksa "title".
func extractMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	for _, m := range []string{envelope.Message, envelope.Error, envelope.Title} {
		if m = strings.TrimSpace(m); m != "" {
			return m
		}
	}
	return ""
}
