// Package config loads usertable configuration.
//
// Sources, lowest precedence first:
//
//  1. defaults from the embedded CUE schema
//  2. an optional CUE (or JSON) file
//  3. USERTABLE_* environment variables
//  4. command-line flags, applied by the caller before Validate
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE []byte

// Environment variables read by Load.
const (
	EnvAPIBaseURL     = "USERTABLE_API_BASE_URL"
	EnvAPITimeout     = "USERTABLE_API_TIMEOUT"
	EnvEnvironment    = "USERTABLE_ENVIRONMENT"
	EnvEnableLogging  = "USERTABLE_ENABLE_LOGGING"
	EnvEnableDevTools = "USERTABLE_ENABLE_DEV_TOOLS"
)

// Config is the effective configuration.
type Config struct {
	APIBaseURL     string       `json:"api_base_url"`
	APITimeoutMS   int          `json:"api_timeout_ms"`
	Environment    string       `json:"environment"`
	EnableLogging  bool         `json:"enable_logging"`
	EnableDevTools bool         `json:"enable_dev_tools"`
	PageSize       int          `json:"page_size"`
	Server         ServerConfig `json:"server"`
}

// ServerConfig configures `usertable serve`.
type ServerConfig struct {
	Addr     string `json:"addr"`
	DBPath   string `json:"db_path"`
	BasePath string `json:"base_path"`
}

// Timeout returns the API timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// Error reports an invalid configuration.
type Error struct {
	// Field is the offending key, when known.
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
	}
	return "config: " + e.Message
}

// Default returns the schema defaults.
func Default() *Config {
	cfg, err := load(nil, "", func(string) (string, bool) { return "", false })
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads the file at path (if non-empty) over the defaults and then
// applies environment overrides from the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	var data []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		data = b
	}
	return load(data, path, lookup)
}

func load(data []byte, filename string, lookup func(string) (string, bool)) (*Config, error) {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return nil, err
	}

	v := def
	if data != nil {
		file := ctx.CompileBytes(data, cue.Filename(filename))
		if err := file.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		v = def.Unify(file)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIBaseURL); ok && v != "" {
		c.APIBaseURL = v
	}
	if v, ok := lookup(EnvAPITimeout); ok && v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: EnvAPITimeout, Message: fmt.Sprintf("not an integer: %q", v)}
		}
		c.APITimeoutMS = ms
	}
	if v, ok := lookup(EnvEnvironment); ok && v != "" {
		c.Environment = v
	}
	if v, ok := lookup(EnvEnableLogging); ok {
		c.EnableLogging = envBool(v)
	}
	if v, ok := lookup(EnvEnableDevTools); ok {
		c.EnableDevTools = envBool(v)
	}
	return nil
}

// envBool treats only "true" (any case) as true.
func envBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// Validate checks c against the schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return err
	}
	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

func schema(ctx *cue.Context) (cue.Value, error) {
	s := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := s.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return s.LookupPath(cue.ParsePath("#Config")), nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}
	first := errs[0]
	ce := &Error{Message: first.Error()}
	if path := first.Path(); len(path) > 0 {
		ce.Field = strings.Join(path, ".")
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
