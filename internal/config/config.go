// Package config holds the runtime configuration shared by all commands.
package config

import (
	"errors"
	"fmt"

	"github.com/idelchi/gogen/pkg/validator"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Mode selects what the processor does with each file.
type Mode string

const (
	ModeEncrypt Mode = "encrypt"
	ModeDecrypt Mode = "decrypt"
	ModeGrep    Mode = "grep"
	ModeCheck   Mode = "check"
)

// Granularity values.
const (
	GranularityAuto  = "auto"
	GranularityFile  = "file"
	GranularityBlock = "block"
)

// Suffixes holds the file name suffixes for encrypted and decrypted outputs.
type Suffixes struct {
	Encrypt string `mapstructure:"encrypt-ext" json:"encrypt-ext" validate:"required"`
	Decrypt string `mapstructure:"decrypt-ext" json:"decrypt-ext"`
}

// Config is populated from flags and BROKEN_* environment variables.
type Config struct {
	// Key material, exactly one of the two may be set
	Key     string `mapstructure:"key"      json:"key"      mask:"filled" validate:"exclusive=KeyFile"`
	KeyFile string `mapstructure:"key-file" json:"key-file" validate:"exclusive=Key"`

	Parallel    int    `mapstructure:"parallel"    json:"parallel"    validate:"min=1"`
	Granularity string `mapstructure:"granularity" json:"granularity" validate:"oneof=auto file block"`
	BlockSize   int    `mapstructure:"block-size"  json:"block-size"  validate:"min=1"`
	Rounds      int    `mapstructure:"rounds"      json:"rounds"      validate:"min=0"`

	Suffixes Suffixes `mapstructure:",squash" json:"suffixes"`

	// Decrypt/grep windows
	Head int `mapstructure:"head" json:"head" validate:"min=0,exclusive=Tail"`
	Tail int `mapstructure:"tail" json:"tail" validate:"min=0,exclusive=Head"`

	Include     []string `mapstructure:"include"      json:"include"`
	IncludeFrom string   `mapstructure:"include-from" json:"include-from"`
	Exclude     []string `mapstructure:"exclude"      json:"exclude"`
	ExcludeFrom string   `mapstructure:"exclude-from" json:"exclude-from"`
	IgnoreCase  bool     `mapstructure:"ignore-case"  json:"ignore-case"`

	Quiet              bool   `mapstructure:"quiet"               json:"quiet"`
	Delete             bool   `mapstructure:"delete"              json:"delete"`
	Dry                bool   `mapstructure:"dry"                 json:"dry"`
	Stats              bool   `mapstructure:"stats"               json:"stats"`
	Trim               bool   `mapstructure:"trim"                json:"trim"`
	PreserveTimestamps bool   `mapstructure:"preserve-timestamps" json:"preserve-timestamps"`
	MetricsFile        string `mapstructure:"metrics-file"        json:"metrics-file"`
	LogLevel           string `mapstructure:"log-level"           json:"log-level" validate:"oneof=debug info warn error"`
	Show               bool   `mapstructure:"show"                json:"-"`

	// Pattern is the regular expression searched by grep.
	Pattern string `mapstructure:"-" json:"pattern,omitempty"`

	// Set by the command, not by flags
	Mode Mode `mapstructure:"-" json:"mode" validate:"oneof=encrypt decrypt grep check"`

	// Positional arguments
	Files []string `mapstructure:"-" json:"files" validate:"min=1"`
}

// Decrypts reports whether the mode reads encrypted files.
func (m Mode) Decrypts() bool {
	return m == ModeDecrypt || m == ModeGrep
}

// Display returns the value of the Show field.
func (c *Config) Display() bool {
	return c.Show
}

// Validate validates config against its struct tags and checks the rules spanning several flags.
// It returns a wrapped ErrInvalid if any rule is violated.
func (c *Config) Validate(config any) error {
	validator := validator.NewValidator()

	if err := registerExclusive(validator); err != nil {
		return fmt.Errorf("registering exclusive: %w", err)
	}

	switch errs := validator.Validate(config); {
	case len(errs) == 1:
		return fmt.Errorf("%w: %w", ErrInvalid, errs[0])
	case len(errs) > 1:
		return fmt.Errorf("%w:\n%w", ErrInvalid, errors.Join(errs...))
	}

	if c.Mode == ModeEncrypt && (c.Head > 0 || c.Tail > 0) {
		return fmt.Errorf("%w: --head and --tail only apply to decryption", ErrInvalid)
	}

	if c.Delete && (c.Head > 0 || c.Tail > 0) {
		return fmt.Errorf("%w: --delete cannot be combined with --head or --tail", ErrInvalid)
	}

	if c.Mode == ModeGrep && c.Pattern == "" {
		return fmt.Errorf("%w: grep requires a pattern", ErrInvalid)
	}

	return nil
}
