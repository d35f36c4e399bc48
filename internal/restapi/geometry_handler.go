package restapi

import (
	"net/http"

	"raillog.org/engine/internal/engine"
	"raillog.org/engine/internal/models"
	"raillog.org/engine/internal/network"
	"raillog.org/engine/internal/utils"
)

func (api *RestAPI) geometryHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fe := utils.FieldErrors{}
	seg := network.Segment{
		LineKey: utils.RequiredIDParam(q, "line", fe),
		FromID:  utils.RequiredIDParam(q, "from", fe),
		ToID:    utils.RequiredIDParam(q, "to", fe),
	}
	if seg.FromID != "" && seg.FromID == seg.ToID {
		fe.Add("to", "segment must start and end at different stations")
	}
	if !fe.Empty() {
		api.validationErrorResponse(w, r, fe)
		return
	}

	geom, err := api.Engine.Geometry(r.Context(), seg)
	if err != nil {
		if engine.IsNotFound(err) {
			api.notFoundResponse(w, r, err.Error())
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewGeometryEntry(seg.Key(), geom)))
}
