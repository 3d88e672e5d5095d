package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sogelink-research/polygonalize/wireframe"
)

// Result is one processed dataset with its fundamental polygons.
type Result struct {
	Dataset   *wireframe.Dataset
	Polygons  []*wireframe.Polygon
	Processed time.Time
}

// App encapsulates the application state and dependencies
type App struct {
	Config    *wireframe.Config
	Publisher *wireframe.Publisher

	// CLI Flags (effectively dependencies)
	DataDir      string
	ConfigFile   string
	OutputDir    string
	Epsilon      float64
	RenderFormat string
	GridSpacing  float64
	HttpPort     int
	MqttMode     bool
	HttpMode     bool

	mu      sync.RWMutex
	results map[string]*Result
	order   []string
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		Config:  wireframe.DefaultConfig(),
		results: make(map[string]*Result),
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.DataDir = opts.DataDir
	a.ConfigFile = opts.ConfigFile
	a.OutputDir = opts.OutputDir
	a.Epsilon = opts.Epsilon
	a.RenderFormat = opts.RenderFormat
	a.GridSpacing = opts.GridSpacing
	a.HttpPort = opts.HttpPort
	a.MqttMode = opts.MqttMode
	a.HttpMode = opts.HttpMode
}

// LoadConfig reads the config file when one was given and folds the CLI
// overrides on top.
func (a *App) LoadConfig() error {
	if a.ConfigFile != "" {
		config, err := wireframe.LoadConfig(a.ConfigFile)
		if err != nil {
			return err
		}
		a.Config = config
	}

	if a.Epsilon > 0 {
		a.Config.Epsilon = a.Epsilon
		a.Config.Epsilons = nil
	}
	if a.OutputDir != "" {
		a.Config.OutputDir = a.OutputDir
	}
	if a.RenderFormat != "" {
		a.Config.Render.Format = a.RenderFormat
	}
	if a.GridSpacing > 0 {
		a.Config.Render.GridSpacing = a.GridSpacing
	}
	return nil
}

// FindDatasets lists the GeoJSON dataset files under the data directory, plus
// any explicitly named inputs. Explicit inputs may be http(s) URLs.
func (a *App) FindDatasets(explicit []string) ([]string, error) {
	inputs := append([]string{}, explicit...)

	if a.DataDir != "" {
		pattern := filepath.Join(a.DataDir, "*.geojson")
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("finding datasets in %s: %w", a.DataDir, err)
		}
		sort.Strings(files)
		inputs = append(inputs, files...)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input datasets: pass file paths or set -data-dir")
	}
	return inputs, nil
}

// LoadDataset reads one input, fetching over HTTP when the input is a URL.
func (a *App) LoadDataset(input string) (*wireframe.Dataset, error) {
	tags, err := a.Config.LineKinds()
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return wireframe.FetchDataset(context.Background(), input, tags)
	}
	return wireframe.ReadDataset(input, tags)
}

// Process polygonalizes one dataset and records the result.
func (a *App) Process(dataset *wireframe.Dataset) *Result {
	start := time.Now()
	polygons := wireframe.PolygonalizeSweep(dataset.Lines, a.Config.EpsilonSweep())
	log.Printf("Polygonalized %s: %d segments -> %d polygons in %v",
		dataset.Name, len(dataset.Lines), len(polygons), time.Since(start).Round(time.Millisecond))

	result := &Result{Dataset: dataset, Polygons: polygons, Processed: time.Now()}

	a.mu.Lock()
	if _, ok := a.results[dataset.Name]; !ok {
		a.order = append(a.order, dataset.Name)
	}
	a.results[dataset.Name] = result
	a.mu.Unlock()

	if a.Publisher != nil {
		if err := a.Publisher.PublishResult(dataset, polygons); err != nil {
			log.Printf("Warning: publishing %s failed: %v", dataset.Name, err)
		}
	}

	return result
}

// Result returns the processed result for a dataset name.
func (a *App) Result(name string) (*Result, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result, ok := a.results[name]
	return result, ok
}

// ResultNames returns the processed dataset names in processing order.
func (a *App) ResultNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Save writes one result's polygons next to the configured output directory.
func (a *App) Save(result *Result) error {
	if err := os.MkdirAll(a.Config.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", a.Config.OutputDir, err)
	}
	return result.Dataset.Save(result.Polygons, a.Config.OutputDir)
}

// Render writes the configured debug renders for one result.
func (a *App) Render(result *Result) error {
	if err := os.MkdirAll(a.Config.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", a.Config.OutputDir, err)
	}

	base := strings.TrimSuffix(result.Dataset.Name, filepath.Ext(result.Dataset.Name))
	format := a.Config.Render.Format
	if format == "" {
		format = "svg"
	}

	if format == "svg" || format == "both" {
		path := filepath.Join(a.Config.OutputDir, base+".svg")
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating render file %s: %w", path, err)
		}
		renderer := wireframe.NewVectorRenderer(result.Polygons)
		renderer.GridSpacing = a.Config.Render.GridSpacing
		if a.Config.Render.Padding > 0 {
			renderer.Padding = a.Config.Render.Padding
		}
		err = renderer.RenderToSVG(file)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("rendering %s: %w", path, err)
		}
		log.Printf("Rendered %s", path)
	}

	if format == "png" || format == "both" {
		path := filepath.Join(a.Config.OutputDir, base+".png")
		if err := wireframe.NewRenderer(result.Polygons).SavePNG(path); err != nil {
			return fmt.Errorf("rendering %s: %w", path, err)
		}
		log.Printf("Rendered %s", path)
	}

	return nil
}

// ConnectPublisher connects the MQTT publisher when the mode is enabled and
// a broker is configured.
func (a *App) ConnectPublisher() error {
	if !a.MqttMode {
		return nil
	}
	if a.Config.MQTT == nil {
		return fmt.Errorf("-mqtt requires an mqtt section in the config file")
	}

	client, err := wireframe.Connect(a.Config.MQTT)
	if err != nil {
		return err
	}
	a.Publisher = wireframe.NewPublisher(client, a.Config.MQTT.PublishPrefix)
	log.Printf("Connected to MQTT broker %s", a.Config.MQTT.Broker)
	return nil
}
