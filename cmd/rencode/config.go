package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rawbytedev/rencode"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds defaults loaded from the --config file. Flags given on the
// command line win over anything set here.
type Config struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Compress  string `yaml:"compress"`
	Frame     bool   `yaml:"frame"`
	Compact   bool   `yaml:"compact"`
	MaxDepth  int    `yaml:"max_depth"`
	LogFormat string `yaml:"log_format"`
	Verbose   bool   `yaml:"verbose"`
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MaxDepth < 0 {
		return cfg, fmt.Errorf("parse config %s: max_depth must not be negative", path)
	}
	return cfg, nil
}

// globalFlags are accepted by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
	logFormat  string
	maxDepth   int
	cpuProfile string
	memProfile string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "YAML file with default settings")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "log debug details to stderr")
	fs.StringVar(&g.logFormat, "log-format", "text", "log format: text or json")
	fs.IntVar(&g.maxDepth, "max-depth", 0, "maximum list/dict nesting when decoding (0 = unlimited)")
	fs.StringVar(&g.cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	fs.StringVar(&g.memProfile, "memprofile", "", "write a heap profile to this file")
}

// settings is the merged view of config file and flags.
type settings struct {
	globalFlags
	cfg Config
	fs  *pflag.FlagSet
}

// resolve loads the config file, if any, and fills every global setting
// whose flag was not given explicitly.
func (g *globalFlags) resolve(fs *pflag.FlagSet) (*settings, error) {
	s := &settings{globalFlags: *g, fs: fs}
	if g.configPath != "" {
		cfg, err := loadConfig(g.configPath)
		if err != nil {
			return nil, err
		}
		s.cfg = cfg
	}
	if !fs.Changed("verbose") && s.cfg.Verbose {
		s.verbose = true
	}
	if !fs.Changed("log-format") && s.cfg.LogFormat != "" {
		s.logFormat = s.cfg.LogFormat
	}
	if !fs.Changed("max-depth") && s.cfg.MaxDepth != 0 {
		s.maxDepth = s.cfg.MaxDepth
	}
	if s.maxDepth < 0 {
		return nil, fmt.Errorf("--max-depth must not be negative, got %d", s.maxDepth)
	}
	return s, nil
}

// str returns the flag value when it was set on the command line, else
// the config value when non-empty, else the flag default.
func (s *settings) str(name, flagValue, cfgValue string) string {
	if s.fs.Changed(name) || cfgValue == "" {
		return flagValue
	}
	return cfgValue
}

func (s *settings) boolean(name string, flagValue, cfgValue bool) bool {
	if s.fs.Changed(name) {
		return flagValue
	}
	return flagValue || cfgValue
}

func (s *settings) decoder() *rencode.Decoder {
	return rencode.NewDecoder(rencode.DecodeOptions{MaxDepth: s.maxDepth})
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}
