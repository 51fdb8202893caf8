// Package api holds the response helpers shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vasu1712/hushgroup-backend/internal/apperr"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes response as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "max-age=0")
	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

// WriteError maps err to a status code and writes it as {"message": ...}.
// Internal errors are logged and replaced with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	status := apperr.StatusCode(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
		message = http.StatusText(status)
		if errors.Is(err, apperr.ErrCodeExhausted) {
			message = apperr.ErrCodeExhausted.Error()
		}
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	WriteJSON(w, status, errorResponse{Message: message})
}

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 64 << 10

// DecodeJSON reads a JSON request body of at most MaxBodyBytes into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}
