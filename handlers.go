package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kwv/roomplan/plan"
)

const maxCommandBytes = 1 << 20

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(state *plan.PlanState, config *plan.Config) http.Handler {
	if config == nil {
		config = plan.DefaultConfig()
	}
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		snapshot := state.Snapshot()
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			Version   int       `json:"version"`
			Rooms     int       `json:"rooms"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   state.Version(),
			Rooms:     len(snapshot.Rooms),
		}
		writeJSON(w, status)
	})

	mux.HandleFunc("GET /plan.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, state.Snapshot())
	})

	mux.HandleFunc("GET /plan.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := plan.MarshalPlanYAML(state.Snapshot())
		if err != nil {
			log.Printf("Error encoding plan YAML: %v", err)
			http.Error(w, "Failed to encode plan", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)
	})

	mux.HandleFunc("GET /summary.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, state.Snapshot().Summarize())
	})

	mux.HandleFunc("GET /joints.json", func(w http.ResponseWriter, r *http.Request) {
		joints := state.Snapshot().Joints()
		if joints == nil {
			joints = []plan.Joint{}
		}
		writeJSON(w, joints)
	})

	mux.HandleFunc("GET /plan.geojson", func(w http.ResponseWriter, r *http.Request) {
		data, err := plan.PlanToFeatureCollection(state.Snapshot()).MarshalJSON()
		if err != nil {
			log.Printf("Error encoding GeoJSON: %v", err)
			http.Error(w, "Failed to encode GeoJSON", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)
	})

	mux.HandleFunc("GET /plan.svg", func(w http.ResponseWriter, r *http.Request) {
		snapshot := state.Snapshot()
		if isEmpty(snapshot) {
			http.Error(w, "No plan available", http.StatusServiceUnavailable)
			return
		}

		renderer := plan.NewVectorRenderer(snapshot)
		renderer.ApplyConfig(config.Render)

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToSVG(w); err != nil {
			log.Printf("Error encoding plan SVG: %v", err)
		}
	})

	mux.HandleFunc("GET /plan.png", func(w http.ResponseWriter, r *http.Request) {
		snapshot := state.Snapshot()
		if isEmpty(snapshot) {
			http.Error(w, "No plan available", http.StatusServiceUnavailable)
			return
		}

		renderer := plan.NewRasterRenderer(snapshot)
		if config.Render.Scale > 0 {
			renderer.Scale = config.Render.Scale
		}
		renderer.ShowJoints = config.Render.ShowJoints

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.WritePNG(w); err != nil {
			log.Printf("Error encoding plan PNG: %v", err)
		}
	})

	mux.HandleFunc("GET /rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		snapshot := state.Snapshot()
		id := r.PathValue("id")
		room, ok := snapshot.Room(id)
		if !ok {
			http.Error(w, fmt.Sprintf("room %s not found", id), http.StatusNotFound)
			return
		}
		outline, closed, err := snapshot.RoomOutline(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, struct {
			Room          plan.Room             `json:"room"`
			Walls         []plan.Wall           `json:"walls"`
			Connections   []plan.RoomConnection `json:"connections"`
			Outline       []plan.Point          `json:"outline"`
			OutlineClosed bool                  `json:"outlineClosed"`
		}{
			Room:          room,
			Walls:         snapshot.RoomWalls(id),
			Connections:   snapshot.RoomConnections(id),
			Outline:       outline,
			OutlineClosed: closed,
		})
	})

	mux.HandleFunc("POST /command", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBytes))
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		cmd, err := plan.ParseCommand(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := state.Apply(cmd); err != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, plan.ErrRoomNotFound) || errors.Is(err, plan.ErrWallNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		log.Printf("[HTTP] applied %s command (plan version %d)", cmd.Op, state.Version())
		writeJSON(w, state.Snapshot().Summarize())
	})

	// Default route serves HTML page embedding the SVG plan
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = fmt.Fprint(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>roomplan</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
html,body{width:100%;height:100%;overflow:hidden;background:#f4f4f4}
img{display:block;width:100vw;height:100vh;object-fit:contain}
</style>
</head>
<body>
<img src="/plan.svg" alt="Floor plan">
</body>
</html>`)
	})

	// Wrap mux with logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		mux.ServeHTTP(w, r)
	})
}

func isEmpty(p *plan.Plan) bool {
	return len(p.Rooms) == 0 && len(p.Walls) == 0
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
