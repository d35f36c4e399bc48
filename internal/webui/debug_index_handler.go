package webui

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"

	"raillog.org/engine/internal/engine"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// WebUI serves read-only debug pages over the current network snapshot.
type WebUI struct {
	Engine *engine.Engine
}

type debugData struct {
	Title   string
	Version uint64
	Built   string
	Pre     string
}

type snapshotSummary struct {
	Version  uint64
	Built    time.Time
	Lines    int
	Stations int
	Features int
	Profile  string
}

func writeDebugData(w http.ResponseWriter, snap *engine.Snapshot, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title:   title,
		Version: snap.Version,
		Built:   snap.Built.Format(time.RFC3339),
		Pre:     spew.Sdump(data),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")
	snap := webUI.Engine.Snapshot()

	var data interface{}
	var title string

	switch dataType {
	case "summary", "":
		data = snapshotSummary{
			Version:  snap.Version,
			Built:    snap.Built,
			Lines:    snap.Graph.LineCount(),
			Stations: snap.Graph.StationCount(),
			Features: len(snap.Graph.Features()),
			Profile:  webUI.Engine.Config().Routing.Profile.String(),
		}
		title = "Network - Summary"
	case "lines":
		data = snap.Graph.Lines()
		title = "Network - Lines"
	case "catalogue":
		data = snap.Graph.Catalogue()
		title = "Network - Catalogue"
	case "companies":
		data = snap.Graph.Companies()
		title = "Network - Companies"
	case "features":
		data = snap.Graph.Features()
		title = "Network - Track Features"
	case "transfers":
		transfers := make(map[string][]string, snap.Graph.LineCount())
		for _, l := range snap.Graph.Lines() {
			transfers[l.Key] = snap.Strict.Lines(l.Key)
		}
		data = transfers
		title = "Network - Transfer Lines"
	default:
		data = map[string]string{
			"error": "Please use one of the following: summary, lines, catalogue, companies, features, transfers.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, snap, title, data)
}
