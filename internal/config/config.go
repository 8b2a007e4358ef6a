// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Shadows  ShadowConfig   `yaml:"shadows"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RendererConfig holds forward-renderer settings.
type RendererConfig struct {
	// StreamBufferBytes sizes the vertex buffer sprite and billboard
	// geometry streams through.
	StreamBufferBytes int `yaml:"stream_buffer_bytes"`

	Instancing bool `yaml:"instancing"`

	// MaxLightPassPerObject bounds the additive light passes drawn for a
	// single object.
	MaxLightPassPerObject int `yaml:"max_light_pass_per_object"`

	// DebugChecks enables the stream-buffer discipline assertions.
	DebugChecks bool `yaml:"debug_checks"`
}

// ShadowConfig holds shadow mapping settings.
type ShadowConfig struct {
	Enabled    bool `yaml:"enabled"`
	Resolution int  `yaml:"resolution"`
}

// CameraConfig holds the initial orbit camera placement.
type CameraConfig struct {
	Distance float32 `yaml:"distance"`
	Pitch    float32 `yaml:"pitch"`
	Yaw      float32 `yaml:"yaw"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`

	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Title:      "Bifrost Viewer",
			Fullscreen: false,
			VSync:      true,
		},
		Renderer: RendererConfig{
			StreamBufferBytes:     4 << 20,
			Instancing:            true,
			MaxLightPassPerObject: 3,
			DebugChecks:           false,
		},
		Shadows: ShadowConfig{
			Enabled:    true,
			Resolution: 1024,
		},
		Camera: CameraConfig{
			Distance: 30.0,
			Pitch:    0.6,
			Yaw:      0.0,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
