// Package config holds the YAML-tagged configuration structs shared by the
// library's adapters (accumulator state store connection info, proving-key
// artifact locations, logging).
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Log holds the log configuration.
type Log struct {
	Level      string `yaml:"level"`
	FolderPath string `yaml:"folder_path"`
	Production bool   `yaml:"production"`
}

// KeyValue holds the accumulator state-store connection info.
type KeyValue struct {
	Addr     string `yaml:"addr" validate:"required"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
}

// ArtifactPaths locates the large opaque setup artifacts (proving /
// verifying keys, commitment generators, circuit definitions) the
// back-end facade (pkg/backend) loads by reference. The library never
// mutates files at these paths.
type ArtifactPaths struct {
	LegoGroth16Dir string `yaml:"legogroth16_dir"`
	SAVERDir       string `yaml:"saver_dir"`
	BulletproofsDir string `yaml:"bulletproofs_dir"`
	CircomDir      string `yaml:"circom_dir"`
}

// SignatureParams bounds how large a cached signature-parameter set the
// backend facade will generate before requiring an explicit adapt call.
type SignatureParams struct {
	MaxMessages int    `yaml:"max_messages" validate:"required,min=1"`
	Label       string `yaml:"label"`
}

// Cfg is the root configuration object, threaded through constructors the
// way the teacher threads model.Cfg.
type Cfg struct {
	Log             Log             `yaml:"log"`
	KeyValue        KeyValue        `yaml:"key_value" validate:"omitempty"`
	Artifacts       ArtifactPaths   `yaml:"artifacts"`
	SignatureParams SignatureParams `yaml:"signature_params" validate:"required"`
}

// NewValidator returns a validator configured to read field names from the
// yaml tag (instead of the Go field name) in error messages.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse loads and validates a Cfg from path.
func Parse(path string) (*Cfg, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Cfg{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration usable for in-process/testing setups
// that don't load a file from disk.
func Default() *Cfg {
	return &Cfg{
		Log: Log{Level: "info"},
		SignatureParams: SignatureParams{
			MaxMessages: 64,
			Label:       "anoncred/default-params",
		},
	}
}
