package wireframe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GeometryType represents the GeoJSON geometry type
type GeometryType string

const (
	GeometryPoint      GeometryType = "Point"
	GeometryLineString GeometryType = "LineString"
	GeometryPolygon    GeometryType = "Polygon"
)

// Geometry represents a GeoJSON geometry object
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature with geometry and properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection represents a GeoJSON FeatureCollection. Name and CRS are
// carried through unparsed so the output file keeps the input's coordinate
// reference metadata.
type FeatureCollection struct {
	Type     string          `json:"type"`
	Name     string          `json:"name,omitempty"`
	CRS      json.RawMessage `json:"crs,omitempty"`
	Features []*Feature      `json:"features"`
}

// NewFeature creates a Feature with the given geometry and properties
func NewFeature(geom *Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{Type: "Feature", Geometry: geom, Properties: props}
}

// LineKind categorizes an input segment by the dataset tag it carried.
type LineKind int

const (
	KindUnknown LineKind = iota
	KindRidge
	KindEdge
	KindRoofGap
	KindRoofGapLine
	KindBuilding
	KindHelping
)

func (k LineKind) String() string {
	switch k {
	case KindRidge:
		return "ridge"
	case KindEdge:
		return "edge"
	case KindRoofGap:
		return "roof-gap"
	case KindRoofGapLine:
		return "roof-gap-line"
	case KindBuilding:
		return "building"
	case KindHelping:
		return "helping"
	default:
		return "unknown"
	}
}

// DefaultLineKindTags maps the `properties.type` values of the expected
// datasets to line kinds. Config can override or extend the table.
func DefaultLineKindTags() map[string]LineKind {
	return map[string]LineKind{
		"Takkant":       KindEdge,
		"Mønelinje":     KindRidge,
		"Taksprang":     KindRoofGap,
		"TaksprangBunn": KindRoofGapLine,
		"Bygningslinje": KindBuilding,
		"Hjelpelinje3D": KindHelping,
	}
}

// Dataset is one parsed input file: its segments, the kind each segment was
// tagged with, and the collection metadata needed to round-trip the output.
type Dataset struct {
	Name  string
	Lines []Connection

	crs     json.RawMessage
	colName string
	kinds   map[Connection]LineKind
}

// KindOf returns the line kind recorded for the segment.
func (d *Dataset) KindOf(line Connection) (LineKind, bool) {
	kind, ok := d.kinds[line]
	return kind, ok
}

// ReadDataset loads and parses a GeoJSON dataset file.
func ReadDataset(path string, tags map[string]LineKind) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return ParseDataset(filepath.Base(path), data, tags)
}

// ParseDataset decodes a GeoJSON FeatureCollection into the list of 3D
// segments it contains. Non-LineString features are skipped; a LineString
// with malformed or 2D-only coordinates fails the whole parse, since a
// partial segment list would silently corrupt the adjacency graph.
func ParseDataset(name string, data []byte, tags map[string]LineKind) (*Dataset, error) {
	if tags == nil {
		tags = DefaultLineKindTags()
	}

	var collection FeatureCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", name, err)
	}

	dataset := &Dataset{
		Name:    name,
		crs:     collection.CRS,
		colName: collection.Name,
		kinds:   make(map[Connection]LineKind),
	}

	for i, feature := range collection.Features {
		if feature == nil || feature.Geometry == nil || feature.Geometry.Type != GeometryLineString {
			continue
		}

		var coords [][]float64
		if err := json.Unmarshal(feature.Geometry.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("dataset %s feature %d: decoding coordinates: %w", name, i, err)
		}
		if len(coords) < 2 {
			return nil, fmt.Errorf("dataset %s feature %d: line needs at least 2 points, got %d", name, i, len(coords))
		}

		kind := KindUnknown
		if tag, ok := feature.Properties["type"].(string); ok {
			kind = tags[tag]
		}

		for j := 0; j+1 < len(coords); j++ {
			from, err := coordinatesOf(coords[j])
			if err != nil {
				return nil, fmt.Errorf("dataset %s feature %d: %w", name, i, err)
			}
			to, err := coordinatesOf(coords[j+1])
			if err != nil {
				return nil, fmt.Errorf("dataset %s feature %d: %w", name, i, err)
			}

			line := Connection{From: from, To: to}
			dataset.Lines = append(dataset.Lines, line)
			if kind != KindUnknown {
				dataset.kinds[line] = kind
			}
		}
	}

	return dataset, nil
}

func coordinatesOf(position []float64) (Coordinates, error) {
	if len(position) < 3 {
		return Coordinates{}, fmt.Errorf("position has %d components, need x, y and z", len(position))
	}
	return Coordinates{X: position[0], Y: position[1], Z: position[2]}, nil
}

// PolygonFeature converts a traced polygon to a labeled GeoJSON Polygon
// feature. The footprint area and center go into the properties so consumers
// can rank faces without re-deriving geometry.
func PolygonFeature(label string, polygon *Polygon) *Feature {
	ring := make([][3]float64, len(polygon.Path.Sequence))
	for i, vertex := range polygon.Path.Sequence {
		ring[i] = [3]float64{vertex.X, vertex.Y, vertex.Z}
	}

	coordsJSON, _ := json.Marshal([][][3]float64{ring})
	center := FootprintCenter(polygon)

	return NewFeature(
		&Geometry{Type: GeometryPolygon, Coordinates: coordsJSON},
		map[string]interface{}{
			"label":  label,
			"area":   FootprintArea(polygon),
			"center": [2]float64{center[0], center[1]},
		},
	)
}

// ResultCollection packages the polygon set as a FeatureCollection carrying
// the input dataset's name and CRS metadata. Labels enumerate the polygons
// in their discovery order.
func (d *Dataset) ResultCollection(polygons []*Polygon) *FeatureCollection {
	collection := &FeatureCollection{
		Type:     "FeatureCollection",
		Name:     d.colName,
		CRS:      d.crs,
		Features: make([]*Feature, 0, len(polygons)),
	}
	for i, polygon := range polygons {
		collection.Features = append(collection.Features, PolygonFeature(fmt.Sprintf("%d", i), polygon))
	}
	return collection
}

// Save writes the polygon set to a file in the given directory, named after
// the input dataset.
func (d *Dataset) Save(polygons []*Polygon, directory string) error {
	data, err := json.MarshalIndent(d.ResultCollection(polygons), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result for %s: %w", d.Name, err)
	}

	path := filepath.Join(directory, d.Name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing result file %s: %w", path, err)
	}
	return nil
}
