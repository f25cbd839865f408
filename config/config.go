// Package config, portal'ın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Session süreleri (lifetime, refresh-ahead, uyarı eşiği) burada tanımlanır —
// SessionMonitor bu değerleri sabit olarak gömmez, Config'ten alır.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config, portal'ın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Store   StoreConfig
	Session SessionConfig
	UI      UIConfig
}

// ServerConfig, portal HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// BackendConfig, REST backend'e erişim ayarları.
type BackendConfig struct {
	BaseURL string        // ör: https://api.example.com/api
	Timeout time.Duration // Her backend isteği için üst sınır
}

// StoreConfig, TokenStore ayarları.
type StoreConfig struct {
	Path          string // SQLite dosya yolu; ":memory:" → kalıcı olmayan in-memory store
	EncryptionKey string // Opsiyonel, 64 hex karakter (AES-256). Boşsa token'lar düz saklanır.
}

// SessionConfig, SessionMonitor zamanlama ayarları.
type SessionConfig struct {
	Lifetime         time.Duration // Varsayılan oturum ömrü (15dk)
	RefreshAhead     time.Duration // Bitişten bu kadar önce sessiz refresh (5dk). 0 → kapalı.
	WarningThreshold time.Duration // Bitişten bu kadar önce uyarı (2dk). 0 → kapalı.
	TickInterval     time.Duration // Polling aralığı (1sn)
	TrustTokenExpiry bool          // Access token'daki exp claim'i zamanlama ipucu olarak kullan
}

// UIConfig, tarayıcı tarafıyla ilgili ayarlar.
type UIConfig struct {
	Language         string   // Hata mesajlarının dili: "en", "tr"
	AllowedOrigins   []string // CORS için izin verilen origin'ler
	LoginMaxAttempts int      // Pencere başına izin verilen login denemesi
	LoginWindow      time.Duration
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}

	lifetime, err := time.ParseDuration(getEnv("SESSION_LIFETIME", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME: %w", err)
	}

	refreshAhead, err := time.ParseDuration(getEnv("SESSION_REFRESH_AHEAD", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_REFRESH_AHEAD: %w", err)
	}

	warning, err := time.ParseDuration(getEnv("SESSION_WARNING_THRESHOLD", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_WARNING_THRESHOLD: %w", err)
	}

	tick, err := time.ParseDuration(getEnv("SESSION_TICK_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TICK_INTERVAL: %w", err)
	}

	trustExpiry, err := strconv.ParseBool(getEnv("SESSION_TRUST_TOKEN_EXPIRY", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TRUST_TOKEN_EXPIRY: %w", err)
	}

	loginAttempts, err := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}

	loginWindow, err := time.ParseDuration(getEnv("LOGIN_WINDOW", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_WINDOW: %w", err)
	}

	backendURL := strings.TrimRight(getEnv("BACKEND_URL", ""), "/")
	if backendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
			Port: port,
		},
		Backend: BackendConfig{
			BaseURL: backendURL,
			Timeout: backendTimeout,
		},
		Store: StoreConfig{
			Path:          getEnv("STORE_PATH", "./data/portal.db"),
			EncryptionKey: getEnv("STORE_ENCRYPTION_KEY", ""),
		},
		Session: SessionConfig{
			Lifetime:         lifetime,
			RefreshAhead:     refreshAhead,
			WarningThreshold: warning,
			TickInterval:     tick,
			TrustTokenExpiry: trustExpiry,
		},
		UI: UIConfig{
			Language:         getEnv("UI_LANGUAGE", "en"),
			AllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			LoginMaxAttempts: loginAttempts,
			LoginWindow:      loginWindow,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate, birbirine bağlı değerlerin tutarlılığını kontrol eder.
// Eşikler oturum ömründen küçük olmalı, aksi halde oturum açılır açılmaz
// uyarı/refresh tetiklenir.
func (c *Config) Validate() error {
	s := c.Session
	if s.Lifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME must be positive")
	}
	if s.RefreshAhead < 0 || s.RefreshAhead >= s.Lifetime {
		return fmt.Errorf("SESSION_REFRESH_AHEAD must be in [0, SESSION_LIFETIME)")
	}
	if s.WarningThreshold < 0 || s.WarningThreshold >= s.Lifetime {
		return fmt.Errorf("SESSION_WARNING_THRESHOLD must be in [0, SESSION_LIFETIME)")
	}
	if s.TickInterval <= 0 {
		return fmt.Errorf("SESSION_TICK_INTERVAL must be positive")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if key := c.Store.EncryptionKey; key != "" {
		raw, err := hex.DecodeString(key)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("STORE_ENCRYPTION_KEY must be 64 hex characters")
		}
	}
	return nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "127.0.0.1:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitList, virgülle ayrılmış listeyi boşlukları temizleyerek böler.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
