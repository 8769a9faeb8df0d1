package host

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	sdkerrors "github.com/contractkit/wasm-sdk/errors"
)

// validate is a package-level singleton; constructing a validator per call
// is expensive.
var validate = validator.New()

// Config holds executor settings.
type Config struct {
	// ModuleName is the import module contracts link against.
	ModuleName string `validate:"required"`

	// MaxRegionSize caps how many bytes a single guest Region handed to a
	// host function may describe.
	MaxRegionSize uint32 `validate:"gt=0"`

	// Logger receives guest log calls and harness diagnostics.
	Logger *slog.Logger `validate:"required"`

	// Canonicalizer backs env.canonicalize_address.
	Canonicalizer Canonicalizer `validate:"required"`
}

func defaultConfig() Config {
	return Config{
		ModuleName:    "env",
		MaxRegionSize: 1 << 20, // 1 MB
		Logger:        slog.Default(),
		Canonicalizer: func(string) ([]byte, error) {
			return nil, &sdkerrors.AddressCanonicalizationError{Code: codeCanonicalizeFailed}
		},
	}
}

func (c Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid executor config: %w", err)
	}
	return nil
}

// Option defines a functional option for configuring the Executor.
type Option func(*Config)

// WithModuleName overrides the host import module name (default "env").
func WithModuleName(name string) Option {
	return func(c *Config) {
		c.ModuleName = name
	}
}

// WithLogger routes guest log calls to the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithCanonicalizer installs the host's address canonicalization.
func WithCanonicalizer(fn Canonicalizer) Option {
	return func(c *Config) {
		if fn != nil {
			c.Canonicalizer = fn
		}
	}
}

// WithMaxRegionSize caps the bytes a guest may hand to a host function.
// Zero is ignored.
func WithMaxRegionSize(size uint32) Option {
	return func(c *Config) {
		if size > 0 {
			c.MaxRegionSize = size
		}
	}
}
