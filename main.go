package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions holds the values parsed from the command line
type AppOptions struct {
	ConfigFile   string
	PlanFile     string
	PlanURL      string
	OutputFile   string
	RenderFormat string
	GridSpacing  float64
	ShowJoints   bool
	HttpPort     int
	SummaryOnly  bool
	RenderOnly   bool
	GeoJSONOnly  bool
	MqttMode     bool
	HttpMode     bool
	Persist      bool
}

// Application is the set of run modes main dispatches to
type Application interface {
	ApplyOptions(opts AppOptions)
	RunSummary() error
	RunRender() error
	RunGeoJSON() error
	RunService() error
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer, app Application) error {
	fs := flag.NewFlagSet("roomplan", flag.ContinueOnError)
	fs.SetOutput(out)

	var opts AppOptions
	fs.StringVar(&opts.ConfigFile, "config", "config.yaml", "Path to configuration file")
	fs.StringVar(&opts.PlanFile, "plan", "plan.yaml", "Path to the plan file")
	fs.StringVar(&opts.PlanURL, "plan-url", "", "Fetch the plan from this URL instead of --plan")
	fs.StringVar(&opts.OutputFile, "output", "", "Output file for --render and --geojson (default depends on mode, - for stdout)")
	fs.StringVar(&opts.RenderFormat, "format", "svg", "Render format: svg, png or raster")
	fs.Float64Var(&opts.GridSpacing, "grid-spacing", 0, "Grid line spacing in cm (0 keeps the config value)")
	fs.BoolVar(&opts.ShowJoints, "joints", false, "Mark wall joints in rendered output")
	fs.IntVar(&opts.HttpPort, "http-port", 0, "HTTP server port (0 keeps the config value)")
	fs.BoolVar(&opts.SummaryOnly, "summary", false, "Print room areas, walls and connections and exit")
	fs.BoolVar(&opts.RenderOnly, "render", false, "Render the plan and exit")
	fs.BoolVar(&opts.GeoJSONOnly, "geojson", false, "Export the plan as GeoJSON and exit")
	fs.BoolVar(&opts.MqttMode, "mqtt", false, "Accept edit commands and publish room figures over MQTT")
	fs.BoolVar(&opts.HttpMode, "http", false, "Enable HTTP server for serving the plan")
	fs.BoolVar(&opts.Persist, "persist", false, "Write the plan file back after every edit in service mode")

	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "roomplan version: %s\n", Version)
	app.ApplyOptions(opts)

	switch {
	case opts.SummaryOnly:
		return app.RunSummary()
	case opts.RenderOnly:
		return app.RunRender()
	case opts.GeoJSONOnly:
		return app.RunGeoJSON()
	case opts.MqttMode || opts.HttpMode:
		return app.RunService()
	}

	_, _ = fmt.Fprintln(out, "roomplan: nothing to do")
	_, _ = fmt.Fprintln(out, "Use --summary to print room areas and connections")
	_, _ = fmt.Fprintln(out, "Use --render [--format svg|png|raster] to draw the plan")
	_, _ = fmt.Fprintln(out, "Use --geojson to export rooms, walls and joints")
	_, _ = fmt.Fprintln(out, "Use --http and/or --mqtt to run the plan service")
	_, _ = fmt.Fprintln(out, "\nConfiguration:")
	_, _ = fmt.Fprintln(out, "  config.yaml - engine thresholds, MQTT and render settings")
	_, _ = fmt.Fprintln(out, "  plan.yaml   - rooms, standalone walls, doors and furniture")
	return nil
}
