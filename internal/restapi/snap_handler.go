package restapi

import (
	"net/http"

	"raillog.org/engine/internal/models"
	"raillog.org/engine/internal/utils"
)

func (api *RestAPI) snapHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fe := utils.FieldErrors{}
	lat := utils.RequiredFloatParam(q, "lat", fe)
	lon := utils.RequiredFloatParam(q, "lon", fe)
	if fe.Empty() {
		utils.ValidateLocationParams(lat, lon, fe)
	}
	if !fe.Empty() {
		api.validationErrorResponse(w, r, fe)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(api.Engine.Snap(lat, lon)))
}
