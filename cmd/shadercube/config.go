package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/hexaflex/shadercube/bench"
	"github.com/hexaflex/shadercube/optimizer"
	"github.com/hexaflex/shadercube/quality"
	"github.com/hexaflex/shadercube/shader"
)

// Duration is a time.Duration written as "5s" in config files.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(p []byte) error {
	v, err := time.ParseDuration(string(p))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Set implements flag.Value.
func (d *Duration) Set(s string) error { return d.UnmarshalText([]byte(s)) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config defines program configuration.
type Config struct {
	ShaderDir     string   `toml:"shader_dir"`     // Directory with .glsl files. Bundled shaders if empty.
	Shader        string   `toml:"shader"`         // Initial fragment shader id.
	Width         int      `toml:"width"`          // Window width.
	Height        int      `toml:"height"`         // Window height.
	Fullscreen    bool     `toml:"fullscreen"`     // Run in fullscreen?
	VSync         bool     `toml:"vsync"`          // Synchronize to the display refresh rate?
	TargetFPS     float64  `toml:"target_fps"`     // Frame rate the quality controller aims for.
	Threshold     int      `toml:"threshold"`      // Frames per quality decision.
	Quality       string   `toml:"quality"`        // Initial quality level or "auto".
	Optimize      bool     `toml:"optimize"`       // Rewrite slow shaders at runtime?
	Cooldown      Duration `toml:"cooldown"`       // Minimum time between rewrites of one shader.
	HotReload     bool     `toml:"hot_reload"`     // Reload shaders from ShaderDir when they change.
	ReportDir     string   `toml:"report_dir"`     // Where exported reports are written.
	BenchDuration Duration `toml:"bench_duration"` // Measurement time per shader in a benchmark run.
	HUDInterval   Duration `toml:"hud_interval"`   // Time between status lines. Zero disables them.
}

// defaultConfig returns the built-in configuration.
func defaultConfig() Config {
	return Config{
		Shader:        shader.DefaultID,
		Width:         1280,
		Height:        720,
		VSync:         true,
		TargetFPS:     quality.DefaultTargetFPS,
		Threshold:     quality.DefaultThreshold,
		Quality:       "auto",
		Optimize:      true,
		Cooldown:      Duration(optimizer.DefaultConfig().Cooldown),
		HotReload:     true,
		ReportDir:     "reports",
		BenchDuration: Duration(bench.DefaultDuration),
		HUDInterval:   Duration(2 * time.Second),
	}
}

// loadConfig decodes the TOML file at path over c.
func loadConfig(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config")
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

// bindFlags registers the command line flags for c with fs.
func bindFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.ShaderDir, "shaders", c.ShaderDir, "Directory containing .glsl shader files. Uses the bundled shaders if empty.")
	fs.StringVar(&c.Shader, "shader", c.Shader, "Initial fragment shader.")
	fs.IntVar(&c.Width, "width", c.Width, "Window width.")
	fs.IntVar(&c.Height, "height", c.Height, "Window height.")
	fs.BoolVar(&c.Fullscreen, "fullscreen", c.Fullscreen, "Run in fullscreen or windowed mode.")
	fs.BoolVar(&c.VSync, "vsync", c.VSync, "Synchronize to the display refresh rate.")
	fs.Float64Var(&c.TargetFPS, "target-fps", c.TargetFPS, "Frame rate the adaptive quality aims for.")
	fs.IntVar(&c.Threshold, "threshold", c.Threshold, "Number of frames per quality decision.")
	fs.StringVar(&c.Quality, "quality", c.Quality, "Initial quality: auto, high, medium or low.")
	fs.BoolVar(&c.Optimize, "optimize", c.Optimize, "Rewrite slow shaders at runtime.")
	fs.Var(&c.Cooldown, "cooldown", "Minimum time between rewrites of one shader.")
	fs.BoolVar(&c.HotReload, "hot-reload", c.HotReload, "Reload shaders when their files change. Requires -shaders.")
	fs.StringVar(&c.ReportDir, "reports", c.ReportDir, "Directory for exported reports.")
	fs.Var(&c.BenchDuration, "bench-duration", "Measurement time per shader in a benchmark run.")
	fs.Var(&c.HUDInterval, "hud-interval", "Time between status lines. 0 disables them.")
}

// parseConfig builds the configuration from args. Values from a -config file
// are applied first; explicitly set flags override them.
func parseConfig(fs *flag.FlagSet, args []string) (*Config, bool, error) {
	c := defaultConfig()
	bindFlags(fs, &c)

	file := fs.String("config", "", "TOML configuration file.")
	version := fs.Bool("version", false, "Display version information.")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	if *version {
		return &c, true, nil
	}

	if *file != "" {
		explicit := make(map[string]string)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })

		if err := loadConfig(*file, &c); err != nil {
			return nil, false, err
		}

		for name, value := range explicit {
			if err := fs.Set(name, value); err != nil {
				return nil, false, err
			}
		}
	}

	if _, err := quality.ParseLevel(c.Quality); err != nil && c.Quality != "auto" {
		return nil, false, err
	}

	return &c, false, nil
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	flag.Usage = func() {
		fmt.Printf("%s [options]\n", os.Args[0])
		flag.PrintDefaults()
	}

	c, version, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if version {
		fmt.Println(Version())
		os.Exit(0)
	}

	return c
}
