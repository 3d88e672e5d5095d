package main

import (
	"encoding/json"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/sogelink-research/polygonalize/wireframe"
)

// newHTTPServer creates an HTTP server exposing the processed results
func newHTTPServer(app *App) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			Datasets  int       `json:"datasets"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			Datasets:  len(app.ResultNames()),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Dataset listing endpoint
	mux.HandleFunc("/datasets", func(w http.ResponseWriter, r *http.Request) {
		type entry struct {
			Name      string    `json:"name"`
			Polygons  int       `json:"polygons"`
			Processed time.Time `json:"processed"`
		}

		var entries []entry
		for _, name := range app.ResultNames() {
			if result, ok := app.Result(name); ok {
				entries = append(entries, entry{
					Name:      name,
					Polygons:  len(result.Polygons),
					Processed: result.Processed,
				})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			log.Printf("Error encoding dataset list: %v", err)
		}
	})

	// Per-dataset polygons as GeoJSON: /polygons/{dataset}
	mux.HandleFunc("/polygons/", func(w http.ResponseWriter, r *http.Request) {
		result, ok := app.Result(path.Base(r.URL.Path))
		if !ok {
			http.Error(w, "Unknown dataset", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Cache-Control", "no-cache")
		collection := result.Dataset.ResultCollection(result.Polygons)
		if err := json.NewEncoder(w).Encode(collection); err != nil {
			log.Printf("Error encoding polygons for %s: %v", result.Dataset.Name, err)
		}
	})

	// Per-dataset render: /render/{dataset}.svg or /render/{dataset}.png
	mux.HandleFunc("/render/", func(w http.ResponseWriter, r *http.Request) {
		base := path.Base(r.URL.Path)
		format := strings.TrimPrefix(path.Ext(base), ".")
		name := strings.TrimSuffix(base, path.Ext(base))

		result, ok := app.Result(name)
		if !ok {
			http.Error(w, "Unknown dataset", http.StatusNotFound)
			return
		}

		switch format {
		case "svg":
			renderer := wireframe.NewVectorRenderer(result.Polygons)
			renderer.GridSpacing = app.Config.Render.GridSpacing
			w.Header().Set("Content-Type", "image/svg+xml")
			w.Header().Set("Cache-Control", "no-cache")
			if err := renderer.RenderToSVG(w); err != nil {
				log.Printf("Error rendering SVG for %s: %v", name, err)
			}
		case "png":
			renderer := wireframe.NewVectorRenderer(result.Polygons)
			renderer.GridSpacing = app.Config.Render.GridSpacing
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Cache-Control", "no-cache")
			if err := renderer.RenderToPNG(w); err != nil {
				log.Printf("Error rendering PNG for %s: %v", name, err)
			}
		default:
			http.Error(w, "Unknown render format", http.StatusBadRequest)
		}
	})

	return mux
}
