// Package config builds the validated settings of the renderer from the
// command line.
package config

import (
	"flag"
	"time"

	"github.com/cockroachdb/errors"
)

// Config is everything the program can be told from the outside.
type Config struct {
	// Debug enables the Vulkan validation layers and debug logging.
	Debug bool

	Width     int
	Height    int
	Title     string
	Resizable bool

	// ShaderDir is the directory with the compiled vert.spv and frag.spv.
	ShaderDir string

	// ModelPath is an optional Wavefront OBJ file. The built-in geometry is
	// drawn when it is empty.
	ModelPath string

	// FenceTimeout bounds every fence wait and image acquisition. Running out
	// of it is treated as a hung device.
	FenceTimeout time.Duration
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Width:        1024,
		Height:       768,
		Title:        "Vulkan Tutorial: Frames",
		Resizable:    true,
		ShaderDir:    "shaders",
		FenceTimeout: 5 * time.Second,
	}
}

// Parse registers the flags on fs, parses argv and validates the result.
func Parse(fs *flag.FlagSet, argv []string) (Config, error) {
	cfg := Default()

	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable Vulkan validation layers")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "Initial window width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "Initial window height in pixels")
	fs.StringVar(&cfg.Title, "title", cfg.Title, "Window title")
	fs.BoolVar(&cfg.Resizable, "resizable", cfg.Resizable, "Allow resizing the window")
	fs.StringVar(&cfg.ShaderDir, "shaders", cfg.ShaderDir,
		"Directory with the compiled vert.spv and frag.spv shaders")
	fs.StringVar(&cfg.ModelPath, "model", cfg.ModelPath,
		"Wavefront OBJ model to draw instead of the built-in quads")
	fs.DurationVar(&cfg.FenceTimeout, "fence-timeout", cfg.FenceTimeout,
		"Longest wait for a fence or swapchain image before giving up")

	if err := fs.Parse(argv); err != nil {
		return Config{}, errors.Wrap(err, "parsing flags")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate returns an error describing the first invalid setting.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Newf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.ShaderDir == "" {
		return errors.New("shader directory must not be empty")
	}
	if c.FenceTimeout <= 0 {
		return errors.Newf("fence timeout must be positive, got %s", c.FenceTimeout)
	}
	return nil
}
