package restapi

import (
	"net/http"
	"time"

	"raillog.org/engine/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	data := models.NewCurrentTimeData(time.Now())
	api.sendResponse(w, r, models.NewOKResponse(data))
}
