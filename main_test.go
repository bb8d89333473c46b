package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"
)

type mockApp struct {
	opts   AppOptions
	called map[string]bool
}

func newMockApp() *mockApp {
	return &mockApp{
		called: make(map[string]bool),
	}
}

func (m *mockApp) ApplyOptions(opts AppOptions) { m.opts = opts }
func (m *mockApp) RunSummary() error            { m.called["RunSummary"] = true; return nil }
func (m *mockApp) RunRender() error             { m.called["RunRender"] = true; return nil }
func (m *mockApp) RunGeoJSON() error            { m.called["RunGeoJSON"] = true; return nil }
func (m *mockApp) RunService() error            { m.called["RunService"] = true; return nil }

func TestRun_Flags(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedCalled string
		verifyOpts     func(*testing.T, AppOptions)
	}{
		{
			name:           "Summary",
			args:           []string{"--summary", "--plan", "/tmp/house.yaml"},
			expectedCalled: "RunSummary",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.PlanFile != "/tmp/house.yaml" {
					t.Errorf("expected PlanFile /tmp/house.yaml, got %s", opts.PlanFile)
				}
				if !opts.SummaryOnly {
					t.Error("expected SummaryOnly true")
				}
			},
		},
		{
			name:           "Render",
			args:           []string{"--render", "--output", "out.svg", "--format", "svg", "--grid-spacing", "50", "--joints"},
			expectedCalled: "RunRender",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.OutputFile != "out.svg" {
					t.Errorf("expected OutputFile out.svg, got %s", opts.OutputFile)
				}
				if opts.GridSpacing != 50 {
					t.Errorf("expected GridSpacing 50, got %f", opts.GridSpacing)
				}
				if !opts.ShowJoints {
					t.Error("expected ShowJoints true")
				}
			},
		},
		{
			name:           "RasterRender",
			args:           []string{"--render", "--format", "raster"},
			expectedCalled: "RunRender",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.RenderFormat != "raster" {
					t.Errorf("expected RenderFormat raster, got %s", opts.RenderFormat)
				}
			},
		},
		{
			name:           "GeoJSON",
			args:           []string{"--geojson", "--plan-url", "http://example.com/plan.yaml"},
			expectedCalled: "RunGeoJSON",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.PlanURL != "http://example.com/plan.yaml" {
					t.Errorf("expected PlanURL, got %s", opts.PlanURL)
				}
			},
		},
		{
			name:           "Service",
			args:           []string{"--mqtt", "--http", "--http-port", "9090", "--persist"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.MqttMode || !opts.HttpMode {
					t.Error("expected MqttMode and HttpMode true")
				}
				if opts.HttpPort != 9090 {
					t.Errorf("expected HttpPort 9090, got %d", opts.HttpPort)
				}
				if !opts.Persist {
					t.Error("expected Persist true")
				}
			},
		},
		{
			name:           "Defaults",
			args:           []string{"--http"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.ConfigFile != "config.yaml" {
					t.Errorf("expected ConfigFile config.yaml, got %s", opts.ConfigFile)
				}
				if opts.PlanFile != "plan.yaml" {
					t.Errorf("expected PlanFile plan.yaml, got %s", opts.PlanFile)
				}
				if opts.RenderFormat != "svg" {
					t.Errorf("expected RenderFormat svg, got %s", opts.RenderFormat)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newMockApp()
			var out bytes.Buffer
			err := run(tt.args, &out, app)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			if !app.called[tt.expectedCalled] {
				t.Errorf("expected %s to be called", tt.expectedCalled)
			}
			if len(app.called) != 1 {
				t.Errorf("expected exactly one mode, got %v", app.called)
			}

			if tt.verifyOpts != nil {
				tt.verifyOpts(t, app.opts)
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	err := run([]string{"--help"}, &out, app)
	if err != flag.ErrHelp {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(out.String(), "Usage of roomplan") {
		t.Errorf("expected usage info in output, got: %s", out.String())
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	if err := run([]string{"--bogus"}, &out, app); err == nil {
		t.Error("expected error for unknown flag")
	}
	if len(app.called) != 0 {
		t.Errorf("no mode should run, got %v", app.called)
	}
}

func TestRun_Default(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	err := run([]string{}, &out, app)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(out.String(), "roomplan version: "+Version) {
		t.Errorf("expected output to contain version, got: %s", out.String())
	}
	if !strings.Contains(out.String(), "nothing to do") {
		t.Errorf("expected usage hints, got: %s", out.String())
	}
}
