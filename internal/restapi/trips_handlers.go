package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"raillog.org/engine/internal/models"
	"raillog.org/engine/internal/network"
	"raillog.org/engine/internal/stats"
	"raillog.org/engine/internal/utils"
)

const maxBodyBytes = 4 << 20

type thumbnailRequest struct {
	Segments []network.Segment `json:"segments"`
}

type statsRequest struct {
	Trips []stats.Trip `json:"trips"`
}

// decodeBody reads a JSON body into dst, recording problems under "body".
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, fe utils.FieldErrors) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		fe.Add("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
}

func validateSegments(field string, segs []network.Segment, fe utils.FieldErrors) {
	for i, seg := range segs {
		utils.ValidateSegment(fmt.Sprintf("%s[%d]", field, i), seg.LineKey, seg.FromID, seg.ToID, fe)
	}
}

func (api *RestAPI) thumbnailHandler(w http.ResponseWriter, r *http.Request) {
	fe := utils.FieldErrors{}
	var req thumbnailRequest
	decodeBody(w, r, &req, fe)
	if fe.Empty() {
		validateSegments("segments", req.Segments, fe)
	}
	if !fe.Empty() {
		api.validationErrorResponse(w, r, fe)
		return
	}

	thumb, err := api.Engine.Thumbnail(r.Context(), req.Segments)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(thumb))
}

func (api *RestAPI) statsHandler(w http.ResponseWriter, r *http.Request) {
	fe := utils.FieldErrors{}
	var req statsRequest
	decodeBody(w, r, &req, fe)
	if fe.Empty() {
		if err := utils.ValidateTripCount(len(req.Trips)); err != nil {
			fe.Add("trips", err.Error())
		}
		for i, t := range req.Trips {
			req.Trips[i].ID = utils.SanitizeInput(t.ID)
			req.Trips[i].Date = utils.SanitizeInput(t.Date)
			validateSegments(fmt.Sprintf("trips[%d].segments", i), t.Legs(), fe)
		}
	}
	if !fe.Empty() {
		api.validationErrorResponse(w, r, fe)
		return
	}

	summary, err := api.Engine.Stats(r.Context(), req.Trips)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(summary))
}
