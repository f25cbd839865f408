// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Karşılaştırma her zaman errors.Is ile yapılır — wrap edilmiş
// error'lar da doğru eşleşir:
//
//	if errors.Is(err, pkg.ErrAuthRejected) { ... }
package pkg

import (
	"errors"
	"fmt"
)

// Oturum katmanının hata sınıfları.
var (
	// ErrValidation, network çağrısından önce yakalanan eksik/bozuk girdi.
	ErrValidation = errors.New("validation failed")
	// ErrAuthRejected, backend login/register için 400/401 döndü.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrNetworkUnreachable, istek tamamlanamadı (yanıt yok).
	ErrNetworkUnreachable = errors.New("no response from server")
	// ErrRefreshFailure, refresh token yok, süresi dolmuş veya reddedildi.
	// Her zaman zorunlu logout ile sonuçlanır.
	ErrRefreshFailure = errors.New("token refresh failed")
	// ErrNoRefreshToken, saklı refresh token yok — network çağrısı yapılmaz.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrServer, backend beklenmeyen bir status veya okunamayan gövde döndü.
	ErrServer = errors.New("unexpected server response")
	// ErrSessionClosed, işlem sürerken logout oldu — sonucu yok sayıldı.
	ErrSessionClosed = errors.New("session closed during operation")
)

// Portal'ın kendi HTTP yüzeyi için error'lar.
// Handler katmanı bu error'ları HTTP status code'larına map'ler.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// APIError, backend'in non-2xx yanıtını taşır.
// Err alanı sınıf sentinel'idir (ErrAuthRejected, ErrServer) — errors.Is
// Unwrap üzerinden ona ulaşır.
type APIError struct {
	Status  int
	Message string // Backend'in döndürdüğü mesaj, yoksa boş
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (status %d): %s", e.Err, e.Status, e.Message)
	}
	return fmt.Sprintf("%v (status %d)", e.Err, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ServerMessage, error zincirinde bir APIError varsa backend mesajını döner.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// StatusCode, error zincirindeki APIError'ın HTTP status'unu döner (yoksa 0).
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
