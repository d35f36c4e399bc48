package restapi

import (
	"errors"
	"net/http"

	"raillog.org/engine/internal/models"
	"raillog.org/engine/internal/routing"
	"raillog.org/engine/internal/utils"
)

func (api *RestAPI) routeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fe := utils.FieldErrors{}
	from := routing.Endpoint{
		LineKey:   utils.RequiredIDParam(q, "fromLine", fe),
		StationID: utils.RequiredIDParam(q, "fromStation", fe),
	}
	to := routing.Endpoint{
		LineKey:   utils.RequiredIDParam(q, "toLine", fe),
		StationID: utils.RequiredIDParam(q, "toStation", fe),
	}
	profile := q.Get("profile")
	if _, err := routing.ParseProfile(profile); err != nil {
		fe.Add("profile", err.Error())
	}
	if !fe.Empty() {
		api.validationErrorResponse(w, r, fe)
		return
	}

	snap := api.Engine.Snapshot()
	res, err := api.Engine.RouteOn(r.Context(), snap, from, to, profile)
	if err != nil {
		var noPath *routing.NoPathError
		switch {
		case errors.As(err, &noPath):
			api.notFoundResponse(w, r, noPath.Error())
		case errors.Is(err, routing.ErrInvalidQuery):
			fe.Add("route", err.Error())
			api.validationErrorResponse(w, r, fe)
		case r.Context().Err() != nil:
			// The client is gone; nothing useful can be written.
		default:
			api.serverErrorResponse(w, r, err)
		}
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(models.NewRouteEntry(snap.Graph, res)))
}
