// Package crypto — AES-256-GCM ile TokenStore değerlerini şifreleme.
//
// Token'lar diskteki SQLite dosyasında durur. STORE_ENCRYPTION_KEY verilirse
// token ve refresh token değerleri Sealer ile şifrelenerek yazılır.
//
// Şifreli değerler "enc:v1:" prefix'i taşır. Böylece anahtar sonradan
// eklendiğinde eski düz değerler hâlâ okunabilir (Open prefix yoksa
// değeri olduğu gibi döner).
//
// Kullanım:
//
//	s, _ := crypto.NewSealer("hex-encoded-32-byte-key")
//	sealed, _ := s.Seal("secret")
//	plain, _ := s.Open(sealed)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// sealedPrefix, Sealer tarafından üretilen değerlerin işareti.
const sealedPrefix = "enc:v1:"

// Sealer, tek bir AES-256-GCM anahtarı ile şifreleme yapar.
// cipher.AEAD goroutine-safe'dir, Sealer paylaşılabilir.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer, hex-encoded 32-byte anahtardan Sealer oluşturur.
// Input tam 64 hex karakter (= 32 byte) olmalıdır.
func NewSealer(hexKey string) (*Sealer, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be exactly 32 bytes (64 hex chars), got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Sealer{aead: gcm}, nil
}

// Seal, plaintext'i şifreler. Dönen değer: prefix + base64(nonce + ciphertext).
// Boş string şifrelenmez — "değer yok" anlamı korunur.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	// Her şifreleme için rastgele 12-byte nonce
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce generation: %w", err)
	}

	ciphertext := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open, Seal ile üretilmiş değeri çözer. Prefix taşımayan değer
// şifrelenmemiş kabul edilir ve olduğu gibi döner.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open (wrong key or corrupted data): %w", err)
	}

	return string(plaintext), nil
}

// IsSealed, değerin Sealer tarafından üretilip üretilmediğini döner.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}
