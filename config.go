package codeviz

// Config holds the user-facing settings of the visualizer.
type Config struct {
	// Shape is the geometry the code is mapped onto.
	Shape ShapeKind
	// RotationSpeed scales rotation; clamped to [0, 1].
	RotationSpeed float64
	// ZoomEnabled lets the mouse wheel move the camera.
	ZoomEnabled bool
	// AutoMode streams code continuously; otherwise the prompt bar is shown.
	AutoMode bool
	// Debug logs per-frame timing to stderr and shows FPS.
	Debug bool

	// Window settings used by Run.
	Title         string
	Width, Height int

	// SnapshotDir receives texture PNG exports. Defaults to "snapshots".
	SnapshotDir string
}

const defaultRotationSpeed = 0.15

// DefaultConfig returns the settings the visualizer starts with.
func DefaultConfig() Config {
	return Config{
		Shape:         ShapeLetter,
		RotationSpeed: defaultRotationSpeed,
		ZoomEnabled:   true,
		AutoMode:      true,
		Title:         "Gemini 3D Code Visualizer",
		Width:         1280,
		Height:        800,
		SnapshotDir:   "snapshots",
	}
}

// Normalize clamps RotationSpeed and fills empty window fields from
// DefaultConfig. Unknown shapes become ShapeLetter.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	c.RotationSpeed = clamp01(c.RotationSpeed)
	if c.Shape >= shapeCount {
		c.Shape = ShapeLetter
	}
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = def.SnapshotDir
	}
	return c
}
