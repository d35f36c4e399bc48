package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// protected applies the API key check, then the per-key rate limit.
func (api *RestAPI) protected(h handlerFunc) http.Handler {
	limited := http.HandlerFunc(h)
	if api.rateLimiter != nil {
		return validateAPIKey(api, api.rateLimiter.Handler(limited).ServeHTTP)
	}
	return validateAPIKey(api, limited.ServeHTTP)
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/current-time.json", api.protected(api.currentTimeHandler))
	router.Handler(http.MethodGet, "/api/lines.json", api.protected(api.linesHandler))
	router.Handler(http.MethodGet, "/api/line/:key", api.protected(api.lineHandler))
	router.Handler(http.MethodGet, "/api/route.json", api.protected(api.routeHandler))
	router.Handler(http.MethodGet, "/api/snap.json", api.protected(api.snapHandler))
	router.Handler(http.MethodGet, "/api/geometry.json", api.protected(api.geometryHandler))
	router.Handler(http.MethodPost, "/api/thumbnail.json", api.protected(api.thumbnailHandler))
	router.Handler(http.MethodPost, "/api/stats.json", api.protected(api.statsHandler))
}
