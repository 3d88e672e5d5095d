package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile   = flag.String("config", "", "Path to configuration file (optional)")
	dataDir      = flag.String("data-dir", "", "Directory containing GeoJSON wireframe datasets")
	outputDir    = flag.String("output-dir", "", "Directory for result files (default: config or current dir)")
	epsilon      = flag.Float64("epsilon", 0, "Coplanarity tolerance override")
	parseOnly    = flag.Bool("parse-only", false, "Parse datasets and exit (test mode)")
	renderMode   = flag.Bool("render", false, "Write debug renders next to the results")
	renderFormat = flag.String("format", "", "Render format: svg, png or both")
	gridSpacing  = flag.Float64("grid-spacing", 0, "Grid line spacing for renders, in dataset units")
	mqttMode     = flag.Bool("mqtt", false, "Publish results over MQTT (requires mqtt config)")
	httpMode     = flag.Bool("http", false, "Serve processed results over HTTP")
	httpPort     = flag.Int("http-port", 8080, "HTTP server port (default 8080)")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

// AppOptions carries the parsed CLI flags into the App
type AppOptions struct {
	DataDir      string
	ConfigFile   string
	OutputDir    string
	Epsilon      float64
	RenderFormat string
	GridSpacing  float64
	HttpPort     int
	MqttMode     bool
	HttpMode     bool
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("polygonalize version: %s\n", Version)
		return
	}

	app := NewApp()
	app.ApplyOptions(AppOptions{
		DataDir:      *dataDir,
		ConfigFile:   *configFile,
		OutputDir:    *outputDir,
		Epsilon:      *epsilon,
		RenderFormat: *renderFormat,
		GridSpacing:  *gridSpacing,
		HttpPort:     *httpPort,
		MqttMode:     *mqttMode,
		HttpMode:     *httpMode,
	})

	if err := app.LoadConfig(); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	inputs, err := app.FindDatasets(flag.Args())
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *parseOnly {
		runParseOnly(app, inputs)
		return
	}

	if err := app.ConnectPublisher(); err != nil {
		log.Fatalf("Error connecting MQTT publisher: %v", err)
	}

	for _, input := range inputs {
		dataset, err := app.LoadDataset(input)
		if err != nil {
			log.Fatalf("Error loading %s: %v", input, err)
		}

		result := app.Process(dataset)

		if err := app.Save(result); err != nil {
			log.Fatalf("Error saving %s: %v", dataset.Name, err)
		}

		if *renderMode {
			if err := app.Render(result); err != nil {
				log.Fatalf("Error rendering %s: %v", dataset.Name, err)
			}
		}
	}

	if app.HttpMode {
		serveHTTP(app)
	}
}

// runParseOnly loads every dataset and reports its segment and line kind
// counts without tracing polygons.
func runParseOnly(app *App, inputs []string) {
	for _, input := range inputs {
		dataset, err := app.LoadDataset(input)
		if err != nil {
			log.Fatalf("Error loading %s: %v", input, err)
		}

		kinds := make(map[string]int)
		for _, line := range dataset.Lines {
			if kind, ok := dataset.KindOf(line); ok {
				kinds[kind.String()]++
			} else {
				kinds["untagged"]++
			}
		}

		fmt.Printf("%s: %d segments\n", dataset.Name, len(dataset.Lines))
		for kind, count := range kinds {
			fmt.Printf("  %s: %d\n", kind, count)
		}
	}
}

// serveHTTP blocks serving the processed results until interrupted.
func serveHTTP(app *App) {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.HttpPort),
		Handler: newHTTPServer(app),
	}

	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals

	log.Println("Shutting down")
	if err := server.Close(); err != nil {
		log.Printf("Error closing HTTP server: %v", err)
	}
}
