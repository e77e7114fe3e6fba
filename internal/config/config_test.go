package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test terrain defaults
	if cfg.Terrain.GridDimension != 32 {
		t.Errorf("expected grid dimension 32, got %d", cfg.Terrain.GridDimension)
	}
	if cfg.Terrain.LODDepth != 6 {
		t.Errorf("expected lod depth 6, got %d", cfg.Terrain.LODDepth)
	}
	if cfg.Terrain.VisibleRange != 8192 {
		t.Errorf("expected visible range 8192, got %f", cfg.Terrain.VisibleRange)
	}
	if cfg.Terrain.HeightmapPath != "" {
		t.Errorf("expected procedural terrain by default, got path %s", cfg.Terrain.HeightmapPath)
	}

	// Test shadow defaults
	if !cfg.Shadow.Enabled {
		t.Error("expected shadows enabled by default")
	}
	if cfg.Shadow.Cascades != 3 {
		t.Errorf("expected 3 cascades, got %d", cfg.Shadow.Cascades)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	// Defaults must pass their own validation
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"odd grid dimension", func(c *Config) { c.Terrain.GridDimension = 31 }, true},
		{"grid dimension too small", func(c *Config) { c.Terrain.GridDimension = 0 }, true},
		{"grid dimension over index budget", func(c *Config) { c.Terrain.GridDimension = 512 }, true},
		{"max grid dimension", func(c *Config) { c.Terrain.GridDimension = 64 }, false},
		{"negative lod depth", func(c *Config) { c.Terrain.LODDepth = -1 }, true},
		{"lod depth over ceiling", func(c *Config) { c.Terrain.LODDepth = 17 }, true},
		{"zero visible range", func(c *Config) { c.Terrain.VisibleRange = 0 }, true},
		{"morph ratio at 1", func(c *Config) { c.Terrain.MorphStartRatio = 1 }, true},
		{"negative height scale", func(c *Config) { c.Terrain.HeightScale = -1 }, true},
		{"zero procedural size", func(c *Config) { c.Terrain.Size = 0 }, true},
		{"zero size with heightmap", func(c *Config) {
			c.Terrain.Size = 0
			c.Terrain.HeightmapPath = "terrain.png"
		}, false},
		{"zero cascades", func(c *Config) { c.Shadow.Cascades = 0 }, true},
		{"too many cascades", func(c *Config) { c.Shadow.Cascades = 5 }, true},
		{"bad cascades but shadows off", func(c *Config) {
			c.Shadow.Enabled = false
			c.Shadow.Cascades = 0
		}, false},
		{"zero window size", func(c *Config) { c.Graphics.Width = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

terrain:
  heightmap_path: "maps/alps.png"
  grid_dimension: 64
  lod_depth: 8
  visible_range: 8192
  height_scale: 512

shadow:
  enabled: false
  resolution: 4096
  cascades: 4

logging:
  level: "debug"
  log_file: "veldt.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Terrain.HeightmapPath != "maps/alps.png" {
		t.Errorf("expected heightmap maps/alps.png, got %s", cfg.Terrain.HeightmapPath)
	}
	if cfg.Terrain.GridDimension != 64 {
		t.Errorf("expected grid dimension 64, got %d", cfg.Terrain.GridDimension)
	}
	if cfg.Terrain.LODDepth != 8 {
		t.Errorf("expected lod depth 8, got %d", cfg.Terrain.LODDepth)
	}
	if cfg.Terrain.HeightScale != 512 {
		t.Errorf("expected height scale 512, got %f", cfg.Terrain.HeightScale)
	}

	// Values absent from the file keep their defaults
	if cfg.Terrain.MorphStartRatio != 0.667 {
		t.Errorf("expected default morph ratio, got %f", cfg.Terrain.MorphStartRatio)
	}

	if cfg.Shadow.Enabled {
		t.Error("expected shadows disabled")
	}
	if cfg.Shadow.Cascades != 4 {
		t.Errorf("expected 4 cascades, got %d", cfg.Shadow.Cascades)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "veldt.log" {
		t.Errorf("expected log file 'veldt.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "heightmap flag",
			setup: func() {
				*flagHeightmap = "maps/custom.png"
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.HeightmapPath != "maps/custom.png" {
					t.Errorf("expected heightmap maps/custom.png, got %s", cfg.Terrain.HeightmapPath)
				}
			},
			teardown: func() {
				*flagHeightmap = ""
			},
		},
		{
			name: "dimension and depth flags",
			setup: func() {
				*flagDimension = 16
				*flagDepth = 4
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.GridDimension != 16 {
					t.Errorf("expected grid dimension 16, got %d", cfg.Terrain.GridDimension)
				}
				if cfg.Terrain.LODDepth != 4 {
					t.Errorf("expected lod depth 4, got %d", cfg.Terrain.LODDepth)
				}
			},
			teardown: func() {
				*flagDimension = 0
				*flagDepth = -1
			},
		},
		{
			name: "depth zero is a valid override",
			setup: func() {
				*flagDepth = 0
			},
			verify: func(cfg *Config) {
				if cfg.Terrain.LODDepth != 0 {
					t.Errorf("expected lod depth 0, got %d", cfg.Terrain.LODDepth)
				}
			},
			teardown: func() {
				*flagDepth = -1
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Syntactically valid YAML with an impossible grid dimension
	yamlContent := `
terrain:
  grid_dimension: 100
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected validation error for odd grid dimension, got nil")
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.GridDimension = 16
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Terrain.GridDimension != 16 {
		t.Errorf("round-trip lost grid dimension: got %d", loaded.Terrain.GridDimension)
	}
}
