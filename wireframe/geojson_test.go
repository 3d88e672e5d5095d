package wireframe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func roofDatasetJSON() []byte {
	return []byte(`{
		"type": "FeatureCollection",
		"name": "roof-1",
		"crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::5972"}},
		"features": [
			{
				"type": "Feature",
				"geometry": {"type": "LineString", "coordinates": [[0, 0, 0], [7, 0, 0], [10, 0, 0]]},
				"properties": {"type": "Takkant"}
			},
			{
				"type": "Feature",
				"geometry": {"type": "LineString", "coordinates": [[0, 25, 15], [10, 25, 15]]},
				"properties": {"type": "Mønelinje"}
			},
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [0, 0, 0]},
				"properties": {}
			},
			{
				"type": "Feature",
				"geometry": {"type": "LineString", "coordinates": [[0, 0, 0], [0, 25, 15]]},
				"properties": {}
			}
		]
	}`)
}

func TestParseDataset(t *testing.T) {
	dataset, err := ParseDataset("roof.geojson", roofDatasetJSON(), nil)
	if err != nil {
		t.Fatalf("ParseDataset() error: %v", err)
	}

	if dataset.Name != "roof.geojson" {
		t.Errorf("Name = %q, want roof.geojson", dataset.Name)
	}
	// The three-point line splits into two segments, plus one ridge
	// segment and one untagged segment; the Point feature is skipped.
	if len(dataset.Lines) != 4 {
		t.Fatalf("Lines = %d, want 4", len(dataset.Lines))
	}

	if kind, ok := dataset.KindOf(seg(pt(0, 0, 0), pt(7, 0, 0))); !ok || kind != KindEdge {
		t.Errorf("KindOf(eaves segment) = %v, %v, want edge", kind, ok)
	}
	if kind, ok := dataset.KindOf(seg(pt(0, 25, 15), pt(10, 25, 15))); !ok || kind != KindRidge {
		t.Errorf("KindOf(ridge segment) = %v, %v, want ridge", kind, ok)
	}
	if _, ok := dataset.KindOf(seg(pt(0, 0, 0), pt(0, 25, 15))); ok {
		t.Error("untagged segment must have no kind")
	}
}

func TestParseDataset_RejectsTwoDimensionalCoordinates(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]},
			"properties": {}
		}]
	}`)

	_, err := ParseDataset("flat.geojson", data, nil)
	if err == nil {
		t.Fatal("expected error for 2D coordinates")
	}
	if !strings.Contains(err.Error(), "need x, y and z") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseDataset_RejectsShortLine(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "LineString", "coordinates": [[0, 0, 0]]},
			"properties": {}
		}]
	}`)

	if _, err := ParseDataset("short.geojson", data, nil); err == nil {
		t.Fatal("expected error for a single-point line")
	}
}

func TestParseDataset_RejectsMalformedJSON(t *testing.T) {
	if _, err := ParseDataset("bad.geojson", []byte("not json"), nil); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestParseDataset_CustomTags(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "LineString", "coordinates": [[0, 0, 0], [1, 0, 0]]},
			"properties": {"type": "RoofEdge"}
		}]
	}`)

	dataset, err := ParseDataset("custom.geojson", data, map[string]LineKind{"RoofEdge": KindEdge})
	if err != nil {
		t.Fatalf("ParseDataset() error: %v", err)
	}
	if kind, ok := dataset.KindOf(dataset.Lines[0]); !ok || kind != KindEdge {
		t.Errorf("KindOf() = %v, %v, want edge", kind, ok)
	}
}

func TestReadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roof.geojson")
	if err := os.WriteFile(path, roofDatasetJSON(), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dataset, err := ReadDataset(path, nil)
	if err != nil {
		t.Fatalf("ReadDataset() error: %v", err)
	}
	if dataset.Name != "roof.geojson" {
		t.Errorf("Name = %q, want the base file name", dataset.Name)
	}

	if _, err := ReadDataset(filepath.Join(t.TempDir(), "missing.geojson"), nil); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestLineKind_String(t *testing.T) {
	tests := []struct {
		kind LineKind
		want string
	}{
		{KindRidge, "ridge"},
		{KindEdge, "edge"},
		{KindRoofGap, "roof-gap"},
		{KindRoofGapLine, "roof-gap-line"},
		{KindBuilding, "building"},
		{KindHelping, "helping"},
		{KindUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestResultCollection(t *testing.T) {
	dataset, err := ParseDataset("roof.geojson", roofDatasetJSON(), nil)
	if err != nil {
		t.Fatalf("ParseDataset() error: %v", err)
	}

	collection := dataset.ResultCollection([]*Polygon{squarePolygon()})

	if collection.Type != "FeatureCollection" {
		t.Errorf("Type = %q", collection.Type)
	}
	if collection.Name != "roof-1" {
		t.Errorf("Name = %q, want the input collection name", collection.Name)
	}
	if len(collection.CRS) == 0 {
		t.Error("CRS metadata must round-trip")
	}
	if len(collection.Features) != 1 {
		t.Fatalf("Features = %d, want 1", len(collection.Features))
	}

	feature := collection.Features[0]
	if feature.Geometry.Type != GeometryPolygon {
		t.Errorf("geometry type = %q, want Polygon", feature.Geometry.Type)
	}
	if feature.Properties["label"] != "0" {
		t.Errorf("label = %v, want \"0\"", feature.Properties["label"])
	}
	if area, ok := feature.Properties["area"].(float64); !ok || area != 1 {
		t.Errorf("area = %v, want 1", feature.Properties["area"])
	}

	var ring [][][3]float64
	if err := json.Unmarshal(feature.Geometry.Coordinates, &ring); err != nil {
		t.Fatalf("decoding polygon coordinates: %v", err)
	}
	if len(ring) != 1 || len(ring[0]) != 5 {
		t.Errorf("ring has %d outlines, first with %d points, want 1 and 5", len(ring), len(ring[0]))
	}
}

func TestDataset_Save(t *testing.T) {
	dataset, err := ParseDataset("roof.geojson", roofDatasetJSON(), nil)
	if err != nil {
		t.Fatalf("ParseDataset() error: %v", err)
	}

	dir := t.TempDir()
	if err := dataset.Save([]*Polygon{squarePolygon()}, dir); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "roof.geojson"))
	if err != nil {
		t.Fatalf("reading saved result: %v", err)
	}

	var saved FeatureCollection
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("decoding saved result: %v", err)
	}
	if len(saved.Features) != 1 {
		t.Errorf("saved features = %d, want 1", len(saved.Features))
	}
}
