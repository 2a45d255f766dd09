package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// msgInternalError единое сообщение для внутренних ошибок,
// детали остаются в логах
const msgInternalError = "error interno del servidor"

// ErrorResponse модель тела ошибки
type ErrorResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// DecodeJSON декодирует тело запроса в v, лишние поля запрещены
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError пишет ошибку с произвольным статусом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}

// RespondErrorWithReason пишет ошибку с машинным кодом причины
func RespondErrorWithReason(w http.ResponseWriter, status int, message, reason string) {
	RespondJSON(w, status, ErrorResponse{Message: message, Reason: reason})
}

// RespondBadRequest пишет 400 с сообщением
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondNotFound пишет 404 с сообщением
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondServiceUnavailable пишет 503 с сообщением
func RespondServiceUnavailable(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusServiceUnavailable, message)
}

// RespondInternalError пишет 500 с обезличенным сообщением
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}
