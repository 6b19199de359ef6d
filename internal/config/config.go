// Package config loads kledger configuration from CUE or YAML files.
//
// CUE files are unified with the embedded #Config schema, which supplies
// defaults and rejects unknown fields and out-of-range values. YAML files are
// decoded strictly (unknown keys are errors) and then defaulted and validated
// in Go. Both paths produce the same Config.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/kledger/internal/ledger"
)

//go:embed schema.cue
var schemaCUE string

// Defaults applied when a field is absent.
const (
	DefaultLinkage    = string(ledger.LinkageLenient)
	DefaultSignatures = string(ledger.SignaturesIfPresent)
	DefaultLogLevel   = "info"
)

// Config is the file-level configuration. Command-line flags override it.
type Config struct {
	Database   string `json:"database,omitempty" yaml:"database"`
	Linkage    string `json:"linkage" yaml:"linkage"`
	Signatures string `json:"signatures" yaml:"signatures"`
	LogLevel   string `json:"log_level" yaml:"log_level"`
	KeyFile    string `json:"key_file,omitempty" yaml:"key_file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Linkage:    DefaultLinkage,
		Signatures: DefaultSignatures,
		LogLevel:   DefaultLogLevel,
	}
}

// Load reads a configuration file. The format follows the extension:
// .cue, .yaml or .yml. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		cfg, err = parseCUE(data, filepath.Base(path))
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		return Config{}, fmt.Errorf("load config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func parseCUE(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, nil
}

func parseYAML(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Linkage == "" {
		c.Linkage = DefaultLinkage
	}
	if c.Signatures == "" {
		c.Signatures = DefaultSignatures
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks every enumerated field.
func (c Config) Validate() error {
	if _, err := ledger.ParseLinkagePolicy(c.Linkage); err != nil {
		return err
	}
	if _, err := ledger.ParseSignaturePolicy(c.Signatures); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level. Empty selects info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// LedgerConfig converts c to a ledger configuration.
// The database path doubles as the ledger's storage hint.
func (c Config) LedgerConfig() ledger.Config {
	return ledger.Config{
		StorageHint: c.Database,
		Linkage:     ledger.LinkagePolicy(c.Linkage),
		Signatures:  ledger.SignaturePolicy(c.Signatures),
	}
}
