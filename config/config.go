// Package config holds the settings of the BQL compiler and of the compile
// service.  Both are read from YAML documents in which unknown keys are
// errors.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/units"
	"github.com/bullet-db/bql/compiler/parser"
	"github.com/goccy/go-yaml"
)

const (
	DefaultMaxQueryLength = 30000
	DefaultAddr           = "localhost:9867"
	DefaultMaxBodySize    = Bytes(units.MiB)
	DefaultCacheSize      = 1024
)

// Settings configures a compiler.
type Settings struct {
	// MaxQueryLength is the longest query, in characters, the compiler
	// accepts.
	MaxQueryLength int                `yaml:"max_query_length"`
	DecimalLiteral parser.DecimalMode `yaml:"decimal_literal"`
	// Schema is the path of a schema file.  Without one, fields are
	// not type checked.
	Schema string `yaml:"schema,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxQueryLength: DefaultMaxQueryLength,
		DecimalLiteral: parser.DecimalAsDouble,
	}
}

func (s Settings) Validate() error {
	if s.MaxQueryLength <= 0 {
		return fmt.Errorf("max_query_length must be positive: %d", s.MaxQueryLength)
	}
	if !s.DecimalLiteral.Valid() {
		return fmt.Errorf("decimal_literal must be one of %s, %s or %s: %q",
			parser.DecimalAsDouble, parser.DecimalAsDecimal, parser.DecimalReject, s.DecimalLiteral)
	}
	return nil
}

// Service configures the HTTP compile service.
type Service struct {
	Addr        string `yaml:"addr"`
	MaxBodySize Bytes  `yaml:"max_body_size"`
	// CacheSize is the number of compiled queries kept.  Zero disables
	// the cache.
	CacheSize      int      `yaml:"cache_size"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Compiler       Settings `yaml:"compiler"`
}

func DefaultService() Service {
	return Service{
		Addr:           DefaultAddr,
		MaxBodySize:    DefaultMaxBodySize,
		CacheSize:      DefaultCacheSize,
		AllowedOrigins: []string{"*"},
		Compiler:       DefaultSettings(),
	}
}

func (s Service) Validate() error {
	if s.Addr == "" {
		return errors.New("addr must be set")
	}
	if s.MaxBodySize <= 0 {
		return fmt.Errorf("max_body_size must be positive: %s", s.MaxBodySize)
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative: %d", s.CacheSize)
	}
	if err := s.Compiler.Validate(); err != nil {
		return fmt.Errorf("compiler: %w", err)
	}
	return nil
}

// ParseSettings decodes compiler settings over the defaults.
func ParseSettings(b []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.UnmarshalWithOptions(b, &s, yaml.DisallowUnknownField()); err != nil {
		return Settings{}, err
	}
	return s, s.Validate()
}

func LoadSettings(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	s, err := ParseSettings(b)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseService decodes a service configuration over the defaults.
func ParseService(b []byte) (Service, error) {
	s := DefaultService()
	if err := yaml.UnmarshalWithOptions(b, &s, yaml.DisallowUnknownField()); err != nil {
		return Service{}, err
	}
	return s, s.Validate()
}

func LoadService(path string) (Service, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Service{}, err
	}
	s, err := ParseService(b)
	if err != nil {
		return Service{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
