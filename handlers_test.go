package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHealthEndpoint(t *testing.T) {
	server := newHTTPServer(processedApp(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status struct {
		Status   string `json:"status"`
		Datasets int    `json:"datasets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
	if status.Datasets != 1 {
		t.Errorf("datasets = %d, want 1", status.Datasets)
	}
}

func TestDatasetsEndpoint(t *testing.T) {
	server := newHTTPServer(processedApp(t))

	req := httptest.NewRequest(http.MethodGet, "/datasets", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var entries []struct {
		Name      string    `json:"name"`
		Polygons  int       `json:"polygons"`
		Processed time.Time `json:"processed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding dataset list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Name != "gable.geojson" || entries[0].Polygons != 1 {
		t.Errorf("entry = %+v", entries[0])
	}
	if entries[0].Processed.IsZero() {
		t.Error("processed timestamp missing")
	}
}

func TestPolygonsEndpoint(t *testing.T) {
	server := newHTTPServer(processedApp(t))

	req := httptest.NewRequest(http.MethodGet, "/polygons/gable.geojson", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var collection struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &collection); err != nil {
		t.Fatalf("decoding polygons: %v", err)
	}
	if collection.Type != "FeatureCollection" {
		t.Errorf("type = %q", collection.Type)
	}
	if len(collection.Features) != 1 {
		t.Errorf("features = %d, want 1", len(collection.Features))
	}
}

func TestPolygonsEndpoint_UnknownDataset(t *testing.T) {
	server := newHTTPServer(processedApp(t))

	req := httptest.NewRequest(http.MethodGet, "/polygons/missing.geojson", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRenderEndpoint_SVG(t *testing.T) {
	server := newHTTPServer(processedApp(t))

	req := httptest.NewRequest(http.MethodGet, "/render/gable.geojson.svg", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body is not an SVG document")
	}
}

func TestRenderEndpoint_PNG(t *testing.T) {
	server := newHTTPServer(processedApp(t))

	req := httptest.NewRequest(http.MethodGet, "/render/gable.geojson.png", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	// PNG magic bytes.
	if body := rec.Body.Bytes(); len(body) < 8 || body[1] != 'P' || body[2] != 'N' || body[3] != 'G' {
		t.Error("body is not a PNG image")
	}
}

func TestRenderEndpoint_UnknownFormat(t *testing.T) {
	server := newHTTPServer(processedApp(t))

	req := httptest.NewRequest(http.MethodGet, "/render/gable.geojson.gif", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRenderEndpoint_UnknownDataset(t *testing.T) {
	server := newHTTPServer(processedApp(t))

	req := httptest.NewRequest(http.MethodGet, "/render/missing.svg", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
