package restapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"raillog.org/engine/internal/logging"
	"raillog.org/engine/internal/models"
	"raillog.org/engine/internal/utils"
)

// invalidAPIKeyResponse keeps version 1 in the envelope, like the other
// pre-handler failures.
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	response := models.NewResponse(http.StatusUnauthorized, nil, "permission denied")
	response.Version = 1
	api.sendResponse(w, r, response)
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("component", "restapi"),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	response := models.NewResponse(http.StatusInternalServerError, nil, "internal server error")
	response.Version = 1
	api.sendResponse(w, r, response)
}

func (api *RestAPI) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewResponse(http.StatusMethodNotAllowed, nil, "method not allowed"))
}

// notFoundResponse reports a missing line, station or path with a reason.
func (api *RestAPI) notFoundResponse(w http.ResponseWriter, r *http.Request, text string) {
	api.sendResponse(w, r, models.NewResponse(http.StatusNotFound, nil, text))
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors utils.FieldErrors) {
	response := struct {
		Code        int                 `json:"code"`
		CurrentTime int64               `json:"currentTime"`
		Text        string              `json:"text"`
		Version     int                 `json:"version"`
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "invalid request",
		Version:     models.ResponseVersion,
		FieldErrors: fieldErrors,
	}
	api.writeJSON(w, r, http.StatusBadRequest, response)
}

type panicError struct {
	value interface{}
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
