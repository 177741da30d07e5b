// Package httputil holds the JSON envelope and error mapping shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 32 << 20

// Metadata accompanies every successful response.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// Envelope is the success response shape.
type Envelope struct {
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorResponse is the failure response shape.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RequestID returns the id assigned by the request-id middleware, or a fresh one.
func RequestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.New().String()
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteData writes data inside the standard envelope with status 200.
func WriteData(w http.ResponseWriter, r *http.Request, data interface{}, log zerolog.Logger) {
	WriteDataStatus(w, r, http.StatusOK, data, log)
}

// WriteDataStatus writes data inside the standard envelope with the given status.
func WriteDataStatus(w http.ResponseWriter, r *http.Request, status int, data interface{}, log zerolog.Logger) {
	WriteJSON(w, status, Envelope{
		Data: data,
		Metadata: Metadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RequestID: RequestID(r),
		},
	}, log)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string, log zerolog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: msg}, log)
}

// StatusFor maps an engine error to an HTTP status: unknown keys and invalid input
// are 400, optimization failures 422.
func StatusFor(err error) int {
	var optErr *domain.OptimizationError
	switch {
	case errors.Is(err, domain.ErrUnknownMethod), errors.Is(err, domain.ErrUnknownScenario),
		errors.Is(err, formulas.ErrUnknownLinkage):
		return http.StatusBadRequest
	case errors.As(err, &optErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// HandleError logs err and writes it with StatusFor.
func HandleError(w http.ResponseWriter, err error, log zerolog.Logger) {
	status := StatusFor(err)
	log.Warn().Err(err).Int("status", status).Msg("Request failed")
	WriteError(w, status, err.Error(), log)
}

// Decode reads a JSON body into v. An empty body leaves v untouched.
func Decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
