package models

import (
	"encoding/json"
	"errors"
	"net/http"

	"mip/internal/apperr"
)

// Envelope — общий конверт успешного ответа.
type Envelope struct {
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	StatusCode int    `json:"statusCode"`
}

// ErrorBody — общий формат ошибки: {message, error, statusCode}.
type ErrorBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// MaxBodyBytes — предел размера JSON-тела запроса.
const MaxBodyBytes = 1 << 20

var ErrBadBody = errors.New("invalid request body")

// ReadJSON декодирует тело запроса в dst с лимитом MaxBodyBytes.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(ErrBadBody, err)
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData отдаёт 200 с payload в поле data.
func WriteData(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Message: message, Data: data, StatusCode: http.StatusOK})
}

// WriteError пишет ошибку по её виду; причина (Err) клиенту не отдаётся.
func WriteError(w http.ResponseWriter, e *apperr.Error) {
	status := e.Kind.Status()
	WriteJSON(w, status, ErrorBody{
		Message:    e.Message,
		Error:      e.Kind.Title(),
		StatusCode: status,
	})
}
