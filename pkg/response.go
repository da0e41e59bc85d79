package pkg

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
)

// APIResponse, tüm REST yanıtları için standart format.
// Frontend her zaman aynı yapıyı bekler, tutarlılık önemli.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ActionResponse, WebSocket üzerinden gelen bir action'a verilen yanıt.
//
// Sadece isteği gönderen bağlantıya gider. StatusCode HTTP semantiğini taşır
// (200, 400, 401, 404, 409, 429, 500), Error stabil hata kodudur ("WSK-42").
type ActionResponse struct {
	RequestID  string `json:"request_id,omitempty"`
	Action     string `json:"action"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
	Data       any    `json:"data,omitempty"`
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
// CodedError ise client'a sadece kod gider; değilse error mesajı.
func Error(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)

	message := CodeOf(err)
	if message == "" {
		message = err.Error()
	}

	ErrorWithMessage(w, status, message)
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

// OK, başarılı bir action yanıtı oluşturur.
func OK(action, requestID string, data any) ActionResponse {
	return ActionResponse{
		RequestID:  requestID,
		Action:     action,
		StatusCode: http.StatusOK,
		Data:       data,
	}
}

// ResponseFromError, bir error'dan action yanıtı oluşturur.
// CodedError olmayan error'lar 500 + fallback koduna düşer.
func ResponseFromError(action, requestID, fallbackCode string, err error) ActionResponse {
	code := CodeOf(err)
	if code == "" {
		code = fallbackCode
	}
	return ActionResponse{
		RequestID:  requestID,
		Action:     action,
		StatusCode: mapErrorToStatus(err),
		Error:      code,
	}
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
// errors.Is() kullanarak error chain'ini kontrol eder,
// wrap edilmiş error'lar da doğru match eder.
//
// CodedError varsa sadece kind'ına bakılır; sebep (Err) zincirindeki
// sentinel'lar status'u etkilemez.
func mapErrorToStatus(err error) int {
	var ce *CodedError
	if errors.As(err, &ce) {
		err = ce.Kind
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
