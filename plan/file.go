package plan

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// planFile is the authoring format of a plan document. Only authored data is
// stored: room rectangles, standalone walls, furniture, doors and the openings
// cut into connections. Room walls, connections and containment are derived
// when the file is loaded.
type planFile struct {
	Settings    *Settings           `yaml:"settings,omitempty"`
	Rooms       []Room              `yaml:"rooms"`
	Walls       []Wall              `yaml:"walls,omitempty"`
	Furniture   []FurnitureInstance `yaml:"furniture,omitempty"`
	Doors       []fileDoor          `yaml:"doors,omitempty"`
	Connections []fileConnection    `yaml:"connections,omitempty"`
}

// fileConnection attaches openings to the derived connection between two
// rooms. Side is the side of Rooms[0] facing Rooms[1]; opening positions are
// measured from the start of the rooms' overlap.
type fileConnection struct {
	Rooms    [2]string `yaml:"rooms"`
	Side     Side      `yaml:"side"`
	Openings []Opening `yaml:"openings"`
}

// fileDoor places a door either on a room side (Position measured along the
// room's interior edge from its top/left end) or on a standalone wall.
type fileDoor struct {
	ID        string      `yaml:"id,omitempty"`
	Type      OpeningType `yaml:"type,omitempty"`
	Room      string      `yaml:"room,omitempty"`
	Side      Side        `yaml:"side,omitempty"`
	Wall      string      `yaml:"wall,omitempty"`
	Position  float64     `yaml:"position"`
	Width     float64     `yaml:"width"`
	Height    float64     `yaml:"height,omitempty"`
	Elevation float64     `yaml:"elevation,omitempty"`
}

// ParsePlanFile reads and parses a YAML plan document
func ParsePlanFile(path string, base Settings) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ParsePlanYAML(data, base)
}

// ParsePlanYAML parses a plan document and derives its walls, connections and
// containment. base supplies the engine settings when the document carries none.
// JSON documents are accepted as well.
func ParsePlanYAML(data []byte, base Settings) (*Plan, error) {
	var f planFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing plan YAML: %w", err)
	}

	s := base
	if f.Settings != nil {
		s = *f.Settings
	}
	p := NewPlan(s)

	seen := make(map[string]bool, len(f.Rooms))
	for i, r := range f.Rooms {
		if r.ID == "" {
			r.ID = fmt.Sprintf("room-%d", i+1)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("parsing plan: duplicate room id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Bounds.Width <= 0 || r.Bounds.Height <= 0 {
			return nil, fmt.Errorf("parsing plan: room %q has non-positive size %.1fx%.1f",
				r.ID, r.Bounds.Width, r.Bounds.Height)
		}
		p.Rooms = append(p.Rooms, r)
	}
	for _, w := range f.Walls {
		w.OwnerRoomID = ""
		p.AddWall(w)
	}
	p.Furniture = append(p.Furniture, f.Furniture...)

	p.RecomputeAll()

	for _, fc := range f.Connections {
		if err := p.placeFileConnection(fc); err != nil {
			return nil, fmt.Errorf("parsing plan: %w", err)
		}
	}
	for _, d := range f.Doors {
		if err := p.placeFileDoor(d); err != nil {
			return nil, fmt.Errorf("parsing plan: %w", err)
		}
	}
	return p, nil
}

// placeFileConnection copies authored openings onto the matching derived
// connection and regenerates both rooms so the owner's wall carries them.
func (p *Plan) placeFileConnection(fc fileConnection) error {
	for _, id := range fc.Rooms {
		if p.roomIndex(id) < 0 {
			return fmt.Errorf("connection %s/%s: %w", fc.Rooms[0], fc.Rooms[1], ErrRoomNotFound)
		}
	}
	for i := range p.Connections {
		c := &p.Connections[i]
		if !c.Involves(fc.Rooms[0]) || !c.Involves(fc.Rooms[1]) {
			continue
		}
		if _, mySide, _ := c.Other(fc.Rooms[0]); fc.Side != "" && mySide != fc.Side {
			continue
		}
		c.Openings = nil
		for _, op := range fc.Openings {
			if op.ID == "" {
				op.ID = p.newID()
			}
			if op.Type == "" {
				op.Type = OpeningDoor
			}
			c.Openings = append(c.Openings, op)
		}
		for _, id := range fc.Rooms {
			if err := p.RegenerateRoomWalls(id); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("no %s connection between %s and %s", fc.Side, fc.Rooms[0], fc.Rooms[1])
}

// placeFileDoor resolves a file door to a concrete wall and adds it
func (p *Plan) placeFileDoor(d fileDoor) error {
	door := Door{
		ID:        d.ID,
		Type:      d.Type,
		WallID:    d.Wall,
		Position:  d.Position,
		Width:     d.Width,
		Height:    d.Height,
		Elevation: d.Elevation,
	}
	if d.Wall == "" {
		room, ok := p.Room(d.Room)
		if !ok {
			return fmt.Errorf("door %s: %w", d.ID, ErrRoomNotFound)
		}
		walls := p.RoomWalls(room.ID)
		j := counterpartWall(walls, room.Bounds, d.Side, d.Position)
		if j < 0 {
			return fmt.Errorf("door %s: room %s has no %s wall: %w", d.ID, room.ID, d.Side, ErrWallNotFound)
		}
		door.WallID = walls[j].ID
		door.Position = projectOnto(walls[j], edgePoint(room.Bounds, d.Side, d.Position, 0))
	}
	_, err := p.AddDoor(door)
	return err
}

// SavePlanFile writes the authored part of the plan as YAML. Doors on room walls
// are stored relative to the room side so that derived wall ids never appear.
// Only connections carrying openings are written.
func SavePlanFile(path string, p *Plan) error {
	data, err := MarshalPlanYAML(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	return nil
}

// MarshalPlanYAML encodes the authored part of the plan
func MarshalPlanYAML(p *Plan) ([]byte, error) {
	s := p.Settings
	f := planFile{Settings: &s, Rooms: p.Rooms, Furniture: p.Furniture}

	for _, w := range p.Walls {
		if w.OwnerRoomID == "" {
			f.Walls = append(f.Walls, w)
		}
	}

	for _, d := range p.Doors {
		fd := fileDoor{
			ID:        d.ID,
			Type:      d.Type,
			Position:  d.Position,
			Width:     d.Width,
			Height:    d.Height,
			Elevation: d.Elevation,
		}
		w, ok := p.Wall(d.WallID)
		if !ok {
			continue
		}
		if room, ok := p.Room(w.OwnerRoomID); ok {
			fd.Room = room.ID
			fd.Side = WallSide(w, room.Bounds)
			fd.Position = sideLocal(room.Bounds, fd.Side, pointAlong(w, d.Position))
		} else {
			fd.Wall = w.ID
		}
		f.Doors = append(f.Doors, fd)
	}
	sort.Slice(f.Doors, func(i, j int) bool { return f.Doors[i].ID < f.Doors[j].ID })

	for _, c := range p.Connections {
		if len(c.Openings) == 0 {
			continue
		}
		f.Connections = append(f.Connections, fileConnection{
			Rooms:    c.RoomIDs,
			Side:     c.RoomSides[0],
			Openings: c.Openings,
		})
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("marshaling plan YAML: %w", err)
	}
	return data, nil
}

const (
	// DefaultFetchTimeout is the default HTTP request timeout for plan fetches.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts.
	DefaultMaxRetries = 3

	// defaultBaseBackoff is the base delay for exponential backoff.
	defaultBaseBackoff = 500 * time.Millisecond

	// maxResponseBytes limits the response body to 10 MB.
	maxResponseBytes = 10 << 20
)

// FetchOption configures FetchPlanFromURL behavior.
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	timeout     time.Duration
	maxRetries  int
	baseBackoff time.Duration
	client      *http.Client
	settings    Settings
}

func defaultFetchConfig() fetchConfig {
	return fetchConfig{
		timeout:     DefaultFetchTimeout,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
		settings:    DefaultSettings(),
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetchOption {
	return func(c *fetchConfig) {
		c.timeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) FetchOption {
	return func(c *fetchConfig) {
		c.maxRetries = n
	}
}

// WithBaseBackoff sets the base delay for exponential backoff between retries.
func WithBaseBackoff(d time.Duration) FetchOption {
	return func(c *fetchConfig) {
		c.baseBackoff = d
	}
}

// WithHTTPClient overrides the default HTTP client (useful for testing).
func WithHTTPClient(client *http.Client) FetchOption {
	return func(c *fetchConfig) {
		c.client = client
	}
}

// WithSettings sets the engine settings used when the fetched document has none.
func WithSettings(s Settings) FetchOption {
	return func(c *fetchConfig) {
		c.settings = s
	}
}

// FetchPlanFromURL downloads a plan document and parses it. Transient failures
// are retried with exponential backoff.
func FetchPlanFromURL(url string, opts ...FetchOption) (*Plan, error) {
	return FetchPlanFromURLWithContext(context.Background(), url, opts...)
}

// FetchPlanFromURLWithContext is like FetchPlanFromURL but accepts a context for cancellation.
func FetchPlanFromURLWithContext(ctx context.Context, url string, opts ...FetchOption) (*Plan, error) {
	if url == "" {
		return nil, fmt.Errorf("fetch plan: URL is empty")
	}

	cfg := defaultFetchConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	client := cfg.client
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}

	var lastErr error
	for attempt := range cfg.maxRetries {
		if attempt > 0 {
			backoff := cfg.baseBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch plan: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		body, err := doFetch(ctx, client, url)
		if err != nil {
			lastErr = err
			continue
		}

		p, err := ParsePlanYAML(body, cfg.settings)
		if err != nil {
			// a malformed document will not fix itself
			return nil, fmt.Errorf("fetch plan: %w", err)
		}
		return p, nil
	}

	return nil, fmt.Errorf("fetch plan: all %d attempts failed: %w", cfg.maxRetries, lastErr)
}

// doFetch performs a single HTTP GET and returns the response body bytes.
func doFetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	return body, nil
}
