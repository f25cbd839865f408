package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
)

// APIResponse, portal'ın tüm JSON yanıtları için standart format.
// Tarayıcı tarafı her zaman aynı yapıyı bekler.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON, başarılı bir yanıt gönderir.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Success: true,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Error, hata yanıtı gönderir.
// Domain error'ları otomatik olarak uygun HTTP status code'a çevrilir.
func Error(w http.ResponseWriter, err error) {
	ErrorWithMessage(w, mapErrorToStatus(err), err.Error())
}

// ErrorWithMessage, özel mesajlı hata yanıtı gönderir.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode error response", http.StatusInternalServerError)
	}
}

// ErrorMessage, status'u err'den türetir ama gövdede kullanıcıya
// gösterilecek message'ı döner. message boşsa err.Error() kullanılır.
func ErrorMessage(w http.ResponseWriter, err error, message string) {
	if message == "" {
		message = err.Error()
	}
	ErrorWithMessage(w, mapErrorToStatus(err), message)
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
//
// Backend'e ulaşılamadıysa 502 — sorun portal'da değil, upstream'de.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthRejected),
		errors.Is(err, ErrRefreshFailure),
		errors.Is(err, ErrNoRefreshToken),
		errors.Is(err, ErrSessionClosed),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNetworkUnreachable), errors.Is(err, ErrServer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
