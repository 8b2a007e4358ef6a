package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging and renderer checks")
	flagWindowed      = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen    = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth         = flag.Int("width", 0, "Window width")
	flagHeight        = flag.Int("height", 0, "Window height")
	flagNoVSync       = flag.Bool("no-vsync", false, "Disable vertical sync")
	flagNoInstancing  = flag.Bool("no-instancing", false, "Disable instanced rendering paths")
	flagNoShadows     = flag.Bool("no-shadows", false, "Disable shadow mapping")
	flagStreamBufSize = flag.Int("stream-buffer", 0, "Streaming vertex buffer size in bytes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Renderer.DebugChecks = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagNoVSync {
		cfg.Window.VSync = false
	}
	if *flagNoInstancing {
		cfg.Renderer.Instancing = false
	}
	if *flagNoShadows {
		cfg.Shadows.Enabled = false
	}
	if *flagStreamBufSize > 0 {
		cfg.Renderer.StreamBufferBytes = *flagStreamBufSize
	}
}
