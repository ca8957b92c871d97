// Package config loads the deployment settings of a ticket verifier.
//
// Settings come from environment variables prefixed with APPTICKET_, then from an
// optional YAML file whose keys override them:
//
//	APPTICKET_KEY=0123...       # hex encoded symmetric key
//	APPTICKET_APP_ID=480
//	APPTICKET_LOG_LEVEL=debug
//
// Unset values fall back to the defaults of the struct tags.
package config

import (
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/connesc/appticket"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces the environment variables read by Load.
const EnvPrefix = "APPTICKET"

// Config is the complete configuration of a verifier.
type Config struct {
	// Key is the hex encoded symmetric key shared with Steam.
	Key       string `yaml:"key" envconfig:"KEY" validate:"omitempty,hexadecimal"`
	KeyLength int    `yaml:"key_length" envconfig:"KEY_LENGTH" default:"32" validate:"oneof=16 24 32"`

	MaxTicketSize int  `yaml:"max_ticket_size" envconfig:"MAX_TICKET_SIZE" default:"65536" validate:"min=64,max=16777216"`
	VerifyMAC     bool `yaml:"verify_mac" envconfig:"VERIFY_MAC" default:"true"`

	// PublicKeyFile replaces the embedded Steam public key.
	PublicKeyFile    string `yaml:"public_key_file" envconfig:"PUBLIC_KEY_FILE" validate:"omitempty,file"`
	RequireSignature bool   `yaml:"require_signature" envconfig:"REQUIRE_SIGNATURE"`

	// AppID is the app tickets are checked against.
	AppID uint32 `yaml:"app_id" envconfig:"APP_ID"`

	Log LogConfig `yaml:"log" envconfig:"LOG"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// Load reads the configuration from the environment, then from the YAML file at path
// when it is not empty, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load from env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and the consistency of the key with KeyLength.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, len(validationErrors))
			for i, fieldErr := range validationErrors {
				fields[i] = fmt.Sprintf("%s (%s)", fieldErr.Namespace(), fieldErr.Tag())
			}
			return fmt.Errorf("config: invalid fields: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("config: %w", err)
	}

	if c.Key != "" {
		key, err := c.DecodedKey()
		if err != nil {
			return err
		}
		if len(key) != c.KeyLength {
			return fmt.Errorf("config: key is %d bytes, expected %d", len(key), c.KeyLength)
		}
	}
	return nil
}

// DecodedKey returns the binary form of Key.
func (c *Config) DecodedKey() ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(c.Key, "0x"), "0X"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid key: %w", err)
	}
	return key, nil
}

// PublicKey loads PublicKeyFile, or returns nil when it is not set.
func (c *Config) PublicKey() (*rsa.PublicKey, error) {
	if c.PublicKeyFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read public key: %w", err)
	}
	key, err := appticket.ParsePublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return key, nil
}

// SlogLevel maps Log.Level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options returns the cipher options described by the configuration.
func (c *Config) Options() appticket.Options {
	return appticket.Options{
		MaxTicketSize: c.MaxTicketSize,
		KeyLength:     c.KeyLength,
		SkipMAC:       !c.VerifyMAC,
	}
}

// VerifierConfig builds the configuration of an appticket.Verifier. The key must be set.
func (c *Config) VerifierConfig(logger *slog.Logger) (appticket.VerifierConfig, error) {
	if c.Key == "" {
		return appticket.VerifierConfig{}, errors.New("config: no key configured")
	}
	key, err := c.DecodedKey()
	if err != nil {
		return appticket.VerifierConfig{}, err
	}
	publicKey, err := c.PublicKey()
	if err != nil {
		return appticket.VerifierConfig{}, err
	}
	return appticket.VerifierConfig{
		Options:          c.Options(),
		Key:              key,
		PublicKey:        publicKey,
		RequireSignature: c.RequireSignature,
		Logger:           logger,
	}, nil
}
