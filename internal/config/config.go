// Package config handles viewer configuration loading and management.
package config

import "fmt"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Shadow   ShadowConfig   `yaml:"shadow"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// TerrainConfig holds terrain data and LOD settings.
type TerrainConfig struct {
	// HeightmapPath points at a grayscale PNG or BMP heightmap. Empty
	// selects procedural generation.
	HeightmapPath string `yaml:"heightmap_path"`

	// Size is the raster side length used when generating procedurally.
	Size int   `yaml:"size"`
	Seed int64 `yaml:"seed"`

	// GridDimension is the grid mesh resolution per patch. Must be even
	// and fit the 16-bit index space.
	GridDimension int `yaml:"grid_dimension"`

	// LODDepth is the number of quadtree levels below the root.
	LODDepth int `yaml:"lod_depth"`

	// VisibleRange is the level-0 visibility distance in world units.
	VisibleRange float32 `yaml:"visible_range"`

	// MorphStartRatio places the morph region start inside a level's
	// range band, 0..1 exclusive.
	MorphStartRatio float32 `yaml:"morph_start_ratio"`

	// HeightScale converts normalized heights to world units.
	HeightScale float32 `yaml:"height_scale"`
}

// ShadowConfig holds cascaded shadow map settings.
type ShadowConfig struct {
	Enabled    bool `yaml:"enabled"`
	Resolution int  `yaml:"resolution"`
	Cascades   int  `yaml:"cascades"`
}

// CameraConfig holds fly camera settings.
type CameraConfig struct {
	FOVDegrees  float32 `yaml:"fov_degrees"`
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	MoveSpeed   float32 `yaml:"move_speed"`
	Sensitivity float32 `yaml:"sensitivity"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Terrain: TerrainConfig{
			HeightmapPath:   "",
			Size:            2048,
			Seed:            1,
			GridDimension:   32,
			LODDepth:        6,
			VisibleRange:    8192,
			MorphStartRatio: 0.667,
			HeightScale:     256,
		},
		Shadow: ShadowConfig{
			Enabled:    true,
			Resolution: 2048,
			Cascades:   3,
		},
		Camera: CameraConfig{
			FOVDegrees:  60,
			Near:        1,
			Far:         10000,
			MoveSpeed:   200,
			Sensitivity: 0.0025,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the values the terrain system cannot recover from at
// runtime. Called once at startup; errors here are fatal.
func (c *Config) Validate() error {
	t := &c.Terrain
	if t.HeightmapPath == "" && t.Size <= 0 {
		return fmt.Errorf("terrain size must be positive for procedural generation, got %d", t.Size)
	}
	if t.GridDimension < 2 || t.GridDimension%2 != 0 {
		return fmt.Errorf("grid dimension must be even and >= 2, got %d", t.GridDimension)
	}
	if v := 4 * (t.GridDimension/2 + 1) * (t.GridDimension/2 + 1); v > 1<<16 {
		return fmt.Errorf("grid dimension %d needs %d vertices, over the 16-bit index budget", t.GridDimension, v)
	}
	if t.LODDepth < 0 || t.LODDepth > 16 {
		return fmt.Errorf("lod depth %d outside [0, 16]", t.LODDepth)
	}
	if t.VisibleRange <= 0 {
		return fmt.Errorf("visible range must be positive, got %f", t.VisibleRange)
	}
	if t.MorphStartRatio < 0 || t.MorphStartRatio >= 1 {
		return fmt.Errorf("morph start ratio %f outside [0, 1)", t.MorphStartRatio)
	}
	if t.HeightScale < 0 {
		return fmt.Errorf("height scale must not be negative, got %f", t.HeightScale)
	}

	s := &c.Shadow
	if s.Enabled {
		if s.Resolution <= 0 {
			return fmt.Errorf("shadow resolution must be positive, got %d", s.Resolution)
		}
		if s.Cascades < 1 || s.Cascades > 4 {
			return fmt.Errorf("shadow cascades %d outside [1, 4]", s.Cascades)
		}
	}

	g := &c.Graphics
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", g.Width, g.Height)
	}

	return nil
}
