package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kwv/roomplan/plan"
)

// App encapsulates the application state and dependencies
type App struct {
	Config     *plan.Config
	State      *plan.PlanState
	MQTTClient *plan.MQTTClient
	Publisher  *plan.Publisher
	Out        io.Writer

	// CLI Flags (effectively dependencies)
	ConfigFile   string
	PlanFile     string
	PlanURL      string
	OutputFile   string
	RenderFormat string
	GridSpacing  float64
	ShowJoints   bool
	HttpPort     int
	MqttMode     bool
	HttpMode     bool
	Persist      bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{Out: os.Stdout}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.PlanFile = opts.PlanFile
	a.PlanURL = opts.PlanURL
	a.OutputFile = opts.OutputFile
	a.RenderFormat = opts.RenderFormat
	a.GridSpacing = opts.GridSpacing
	a.ShowJoints = opts.ShowJoints
	a.HttpPort = opts.HttpPort
	a.MqttMode = opts.MqttMode
	a.HttpMode = opts.HttpMode
	a.Persist = opts.Persist
}

// loadConfig reads the config file. A missing default config.yaml is not an
// error: the engine runs on stock settings.
func (a *App) loadConfig() (*plan.Config, error) {
	if a.Config != nil {
		return a.Config, nil
	}
	path := a.ConfigFile
	if path == "" {
		path = "config.yaml"
	}
	config, err := plan.LoadConfig(path)
	if err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) && path == "config.yaml" {
			log.Printf("No %s found, using default settings", path)
			config = plan.DefaultConfig()
		} else {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		log.Printf("Loaded config from %s", path)
	}

	if a.GridSpacing > 0 {
		config.Render.GridSpacing = a.GridSpacing
	}
	if a.ShowJoints {
		config.Render.ShowJoints = true
	}
	if a.HttpPort > 0 {
		config.HTTP.Port = a.HttpPort
	}
	a.Config = config
	return config, nil
}

// loadPlan loads the plan from --plan-url or --plan
func (a *App) loadPlan(config *plan.Config) (*plan.Plan, error) {
	if a.PlanURL != "" {
		log.Printf("Fetching plan from %s", a.PlanURL)
		return plan.FetchPlanFromURL(a.PlanURL, plan.WithSettings(config.Engine))
	}
	p, err := plan.ParsePlanFile(a.PlanFile, config.Engine)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d rooms from %s", len(p.Rooms), a.PlanFile)
	return p, nil
}

func (a *App) load() (*plan.Config, *plan.Plan, error) {
	config, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := a.loadPlan(config)
	if err != nil {
		return nil, nil, err
	}
	return config, p, nil
}

// RunSummary prints per-room figures and the plan totals
func (a *App) RunSummary() error {
	_, p, err := a.load()
	if err != nil {
		return err
	}

	summary := p.Summarize()
	out := a.Out

	_, _ = fmt.Fprintf(out, "Rooms: %d  Walls: %d  Joints: %d\n", summary.RoomCount, summary.WallCount, summary.JointCount)
	_, _ = fmt.Fprintf(out, "Connections: %d (%d direct)  Doors: %d  Furniture: %d\n",
		summary.ConnectionCount, summary.DirectCount, summary.DoorCount, summary.FurnitureCount)
	_, _ = fmt.Fprintf(out, "Total floor area: %.2f m2\n\n", summary.TotalArea/10000)

	for _, rs := range summary.Rooms {
		name := rs.Name
		if name == "" {
			name = rs.ID
		}
		_, _ = fmt.Fprintf(out, "=== %s ===\n", name)
		_, _ = fmt.Fprintf(out, "Bounds: (%.0f, %.0f) %.0fx%.0f\n", rs.Bounds.X, rs.Bounds.Y, rs.Bounds.Width, rs.Bounds.Height)
		_, _ = fmt.Fprintf(out, "Area: %.2f m2  Perimeter: %.2f m\n", rs.Area/10000, rs.Perimeter/100)
		_, _ = fmt.Fprintf(out, "Walls: %d  Doors: %d  Connections: %d\n", rs.WallCount, rs.DoorCount, rs.Connections)
		if rs.ParentRoomID != "" {
			_, _ = fmt.Fprintf(out, "Inside: %s\n", rs.ParentRoomID)
		}
		if len(rs.ContainedRooms) > 0 {
			_, _ = fmt.Fprintf(out, "Contains: [%s]\n", strings.Join(rs.ContainedRooms, ", "))
		}
		_, _ = fmt.Fprintln(out)
	}
	return nil
}

// RunRender draws the plan to OutputFile in the requested format
func (a *App) RunRender() error {
	config, p, err := a.load()
	if err != nil {
		return err
	}

	format := strings.ToLower(a.RenderFormat)
	if format == "" {
		format = "svg"
	}
	output := a.OutputFile
	if output == "" {
		ext := format
		if format == "raster" {
			ext = "png"
		}
		output = "plan." + ext
	}

	w, closeFn, err := a.openOutput(output)
	if err != nil {
		return err
	}
	defer closeFn()

	switch format {
	case "svg", "png":
		renderer := plan.NewVectorRenderer(p)
		renderer.ApplyConfig(config.Render)
		if format == "svg" {
			err = renderer.RenderToSVG(w)
		} else {
			err = renderer.RenderToPNG(w)
		}
	case "raster":
		renderer := plan.NewRasterRenderer(p)
		if config.Render.Scale > 0 {
			renderer.Scale = config.Render.Scale
		}
		renderer.ShowJoints = config.Render.ShowJoints
		err = renderer.WritePNG(w)
	default:
		return fmt.Errorf("unknown render format %q (want svg, png or raster)", a.RenderFormat)
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}

	log.Printf("Rendered %d rooms to %s", len(p.Rooms), output)
	return nil
}

// RunGeoJSON exports the plan layers as a GeoJSON FeatureCollection
func (a *App) RunGeoJSON() error {
	_, p, err := a.load()
	if err != nil {
		return err
	}

	output := a.OutputFile
	if output == "" {
		output = "plan.geojson"
	}

	data, err := plan.PlanToFeatureCollection(p).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding GeoJSON: %w", err)
	}

	w, closeFn, err := a.openOutput(output)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

// openOutput opens path for writing; "-" writes to Out
func (a *App) openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return a.Out, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: closing %s: %v", path, err)
		}
	}, nil
}

// startService loads the plan and wires state, MQTT and HTTP together.
// It returns the HTTP handler when HTTP mode is on.
func (a *App) startService() (http.Handler, error) {
	config, p, err := a.load()
	if err != nil {
		return nil, err
	}

	a.State = plan.NewPlanState(p)
	if a.Persist && a.PlanURL == "" {
		a.State.SetSavePath(a.PlanFile)
		log.Printf("Edits will be written back to %s", a.PlanFile)
	}

	if a.MqttMode {
		mqttClient, err := plan.InitMQTT(config, a.handleCommand)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MQTT: %w", err)
		}
		if mqttClient == nil {
			return nil, fmt.Errorf("MQTT broker not configured in %s", a.ConfigFile)
		}
		a.MQTTClient = mqttClient
		a.Publisher = plan.NewPublisher(mqttClient.GetClient())
		a.Publisher.SetPrefix(config.MQTT.PublishPrefix)
		a.State.OnChange(a.publish)
	}

	if a.HttpMode {
		return newHTTPServer(a.State, config), nil
	}
	return nil, nil
}

// handleCommand applies a decoded MQTT command to the shared plan
func (a *App) handleCommand(cmd plan.Command, err error) {
	if err != nil {
		log.Printf("Ignoring command: %v", err)
		return
	}
	if err := a.State.Apply(cmd); err != nil {
		log.Printf("Error applying %s command: %v", cmd.Op, err)
		return
	}
	log.Printf("Applied %s command (plan version %d)", cmd.Op, a.State.Version())
}

func (a *App) publish(p *plan.Plan) {
	if a.Publisher == nil {
		return
	}
	if err := a.Publisher.PublishPlan(p.Summarize()); err != nil {
		log.Printf("Error publishing plan: %v", err)
	}
}

// RunService runs the HTTP and/or MQTT service until interrupted
func (a *App) RunService() error {
	_, _ = fmt.Fprintln(a.Out, "Starting roomplan service...")

	handler, err := a.startService()
	if err != nil {
		return err
	}
	config := a.Config

	if handler != nil {
		go func() {
			addr := fmt.Sprintf("0.0.0.0:%d", config.HTTP.Port)
			log.Printf("[HTTP] Starting server on %s", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				log.Fatalf("[HTTP] Server error: %v", err)
			}
			log.Printf("[HTTP] Server stopped unexpectedly")
		}()
	}

	out := a.Out
	_, _ = fmt.Fprintln(out, "\nService Running")
	_, _ = fmt.Fprintln(out, "===============")

	if a.MqttMode {
		prefix := config.MQTT.PublishPrefix
		if prefix == "" {
			prefix = plan.DefaultPublishPrefix
		}
		_, _ = fmt.Fprintln(out, "\nMQTT:")
		_, _ = fmt.Fprintf(out, "  Commands: %s\n", plan.CommandTopic(prefix))
		_, _ = fmt.Fprintf(out, "  Rooms:    %s/rooms/{roomID}\n", prefix)
		_, _ = fmt.Fprintf(out, "  Summary:  %s/plan\n", prefix)
	}

	if handler != nil {
		_, _ = fmt.Fprintf(out, "\nHTTP endpoints (port %d):\n", config.HTTP.Port)
		_, _ = fmt.Fprintln(out, "  GET  /health        - Health check")
		_, _ = fmt.Fprintln(out, "  GET  /plan.json     - Full plan with walls and connections")
		_, _ = fmt.Fprintln(out, "  GET  /plan.yaml     - Plan file")
		_, _ = fmt.Fprintln(out, "  GET  /plan.geojson  - Rooms, walls, joints as GeoJSON")
		_, _ = fmt.Fprintln(out, "  GET  /plan.svg      - Vector drawing")
		_, _ = fmt.Fprintln(out, "  GET  /plan.png      - Raster drawing")
		_, _ = fmt.Fprintln(out, "  GET  /summary.json  - Room areas and counts")
		_, _ = fmt.Fprintln(out, "  GET  /joints.json   - Wall joints")
		_, _ = fmt.Fprintln(out, "  GET  /rooms/{id}    - Room with its walls and outline")
		_, _ = fmt.Fprintln(out, "  POST /command       - Apply an edit command")
	}

	_, _ = fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	_, _ = fmt.Fprintln(out, "\nShutting down service...")
	if a.MQTTClient != nil {
		a.MQTTClient.Disconnect()
	}
	_, _ = fmt.Fprintln(out, "Service stopped")
	return nil
}
