package plan

// Default engine constants, in centimeters
const (
	DefaultWallThickness           = 15.0
	DefaultWallHeight              = 280.0
	DefaultWallConnectionTolerance = 5.0
	DefaultDirectSnapThreshold     = 5.0
	DefaultWallSnapThreshold       = 20.0
	DefaultJointTolerance          = 5.0
	DefaultPointTolerance          = 1.0
	DefaultMinConnectionOverlap    = 10.0
	DefaultWallMaterial            = "drywall"
)

// JointClustering selects the endpoint clustering strategy used by the joint detector
type JointClustering string

const (
	// ClusterSingleLink gathers neighbours of each seed endpoint in one pass
	ClusterSingleLink JointClustering = "single-link"
	// ClusterUnionFind merges every endpoint pair within tolerance transitively
	ClusterUnionFind JointClustering = "union-find"
)

// Settings holds the tunable constants of the geometry engine
type Settings struct {
	WallThickness           float64         `yaml:"wallThickness" json:"wallThickness"`
	WallHeight              float64         `yaml:"wallHeight" json:"wallHeight"`
	WallMaterial            string          `yaml:"wallMaterial,omitempty" json:"wallMaterial,omitempty"`
	WallConnectionTolerance float64         `yaml:"wallConnectionTolerance" json:"wallConnectionTolerance"`
	DirectSnapThreshold     float64         `yaml:"directSnapThreshold" json:"directSnapThreshold"`
	WallSnapThreshold       float64         `yaml:"wallSnapThreshold" json:"wallSnapThreshold"`
	JointTolerance          float64         `yaml:"jointTolerance" json:"jointTolerance"`
	PointTolerance          float64         `yaml:"pointTolerance" json:"pointTolerance"`
	MinConnectionOverlap    float64         `yaml:"minConnectionOverlap" json:"minConnectionOverlap"`
	ConnectionHysteresis    float64         `yaml:"connectionHysteresis,omitempty" json:"connectionHysteresis,omitempty"` // 0 reproduces the plain gap classification
	JointClustering         JointClustering `yaml:"jointClustering,omitempty" json:"jointClustering,omitempty"`
}

// DefaultSettings returns the stock engine constants
func DefaultSettings() Settings {
	return Settings{
		WallThickness:           DefaultWallThickness,
		WallHeight:              DefaultWallHeight,
		WallMaterial:            DefaultWallMaterial,
		WallConnectionTolerance: DefaultWallConnectionTolerance,
		DirectSnapThreshold:     DefaultDirectSnapThreshold,
		WallSnapThreshold:       DefaultWallSnapThreshold,
		JointTolerance:          DefaultJointTolerance,
		PointTolerance:          DefaultPointTolerance,
		MinConnectionOverlap:    DefaultMinConnectionOverlap,
		JointClustering:         ClusterSingleLink,
	}
}

// withDefaults fills zero-valued fields from DefaultSettings
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.WallThickness <= 0 {
		s.WallThickness = d.WallThickness
	}
	if s.WallHeight <= 0 {
		s.WallHeight = d.WallHeight
	}
	if s.WallMaterial == "" {
		s.WallMaterial = d.WallMaterial
	}
	if s.WallConnectionTolerance <= 0 {
		s.WallConnectionTolerance = d.WallConnectionTolerance
	}
	if s.DirectSnapThreshold <= 0 {
		s.DirectSnapThreshold = d.DirectSnapThreshold
	}
	if s.WallSnapThreshold <= 0 {
		s.WallSnapThreshold = d.WallSnapThreshold
	}
	if s.JointTolerance <= 0 {
		s.JointTolerance = d.JointTolerance
	}
	if s.PointTolerance <= 0 {
		s.PointTolerance = d.PointTolerance
	}
	if s.MinConnectionOverlap <= 0 {
		s.MinConnectionOverlap = d.MinConnectionOverlap
	}
	if s.JointClustering == "" {
		s.JointClustering = d.JointClustering
	}
	return s
}

// thicknessFor returns the wall thickness a room generates with
func (s Settings) thicknessFor(r Room) float64 {
	if r.WallThickness > 0 {
		return r.WallThickness
	}
	return s.WallThickness
}

// heightFor returns the wall height a room generates with
func (s Settings) heightFor(r Room) float64 {
	if r.WallHeight > 0 {
		return r.WallHeight
	}
	return s.WallHeight
}

// materialFor returns the wall material a room generates with
func (s Settings) materialFor(r Room) string {
	if r.Material != "" {
		return r.Material
	}
	return s.WallMaterial
}
