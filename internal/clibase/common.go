// internal/clibase/common.go
package clibase

import (
	"flag"
	"fmt"

	"polyreact/internal/config"
	"polyreact/internal/logging"
)

// Common holds flags shared by polyreact and polyreact-assets.
type Common struct {
	// Assets
	Config     string
	AssetDir   string
	AssetDB    string
	Manifest   string
	ORTLibrary string

	// Logging
	LogLevel  string
	LogFormat string
	Quiet     bool

	Version bool

	// set records the flags given on the command line; only those
	// override the config file and environment.
	set map[string]bool
}

// sliceValue appends each value to a *[]string (for repeatable flags).
type sliceValue struct{ dst *[]string }

func (s *sliceValue) String() string {
	if s.dst == nil {
		return ""
	}
	return fmt.Sprint(*s.dst)
}

func (s *sliceValue) Set(v string) error {
	*s.dst = append(*s.dst, v)
	return nil
}

// Slice returns a flag.Value that appends to dst.
func Slice(dst *[]string) flag.Value { return &sliceValue{dst: dst} }

// Register wires the shared flags onto fs.
func Register(fs *flag.FlagSet, c *Common) {
	fs.StringVar(&c.Config, "config", "", "YAML config file")
	fs.StringVar(&c.AssetDir, "assets", "", "model asset directory")
	fs.StringVar(&c.AssetDB, "asset-db", "", "SQLite model asset database")
	fs.StringVar(&c.Manifest, "manifest", "", "model manifest YAML (default: built-in)")
	fs.StringVar(&c.ORTLibrary, "ort-library", "", "ONNX Runtime shared library")

	fs.StringVar(&c.LogLevel, "log-level", "", "log level: debug | info | warn | error")
	fs.StringVar(&c.LogFormat, "log-format", "", "log format: text | json")
	fs.BoolVar(&c.Quiet, "quiet", false, "suppress log output [false]")
	fs.BoolVar(&c.Quiet, "q", false, "alias of --quiet")

	fs.BoolVar(&c.Version, "v", false, "print version and exit [false]")
	fs.BoolVar(&c.Version, "version", false, "print version and exit [false]")
}

// AfterParse records which flags were set explicitly.
func AfterParse(fs *flag.FlagSet, c *Common) {
	c.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })
}

// IsSet reports whether name was given on the command line.
func (c *Common) IsSet(name string) bool { return c.set[name] }

// LoadConfig reads --config (plus environment) and applies explicit flags
// on top.
func (c *Common) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.IsSet("assets") {
		cfg.AssetDir = c.AssetDir
	}
	if c.IsSet("asset-db") {
		cfg.AssetDB = c.AssetDB
	}
	if c.IsSet("manifest") {
		cfg.Manifest = c.Manifest
	}
	if c.IsSet("ort-library") {
		cfg.ORTLibrary = c.ORTLibrary
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.LogLevel
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}
