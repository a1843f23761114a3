package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/query"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

type Handlers struct {
	catalog      catalog.Source
	sessions     *cart.Sessions
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	logger       *zap.Logger
	now          func() time.Time
	location     *time.Location
}

func NewHandlers(
	source catalog.Source,
	sessions *cart.Sessions,
	cmdHandler *command.Handler,
	queryHandler *query.Handler,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		catalog:      source,
		sessions:     sessions,
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		logger:       logger.Named("api"),
		now:          time.Now,
		location:     time.Local,
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr writes err through the shared error mapping. Server errors are
// logged with the request path.
func respondErr(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, message := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	respondJSONError(w, message, status)
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	respondErr(w, r, h.logger, err)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errInvalidRequest
}
