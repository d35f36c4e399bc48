// Package restapi exposes the engine over JSON HTTP endpoints.
package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"raillog.org/engine/internal/app"
)

// RestAPI serves the /api/ endpoints.
type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}

// Handler returns the router wrapped in the shared middleware stack.
func (api *RestAPI) Handler() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		api.serverErrorResponse(w, r, panicError{value: v})
	}
	api.SetRoutes(router)

	var h http.Handler = router
	h = CompressionMiddleware(h)
	h = api.WithSecurityHeaders(h)
	h = NewCORSMiddleware(api.Config.AllowedOrigins)(h)
	h = NewRequestLoggingMiddleware(api.Logger)(h)
	return h
}

// Shutdown stops background work owned by the API.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}
