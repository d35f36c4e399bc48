package restapi

import (
	"net/http"

	"raillog.org/engine/internal/models"
	"raillog.org/engine/internal/utils"
)

func (api *RestAPI) linesHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewListResponse(api.Engine.Catalogue(), false))
}

func (api *RestAPI) lineHandler(w http.ResponseWriter, r *http.Request) {
	key := utils.ExtractIDFromParams(r, "key")
	if err := utils.ValidateID(key); err != nil {
		fe := utils.FieldErrors{}
		fe.Add("key", err.Error())
		api.validationErrorResponse(w, r, fe)
		return
	}

	line, ok := api.Engine.Line(key)
	if !ok {
		api.notFoundResponse(w, r, "unknown line "+key)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(line))
}
