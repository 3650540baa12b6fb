package ft8

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Protocol selects between FT8 and FT4 framing, timing and tone count.
type Protocol int

const (
	ProtocolFT8 Protocol = iota
	ProtocolFT4
)

// String returns the protocol name.
func (p Protocol) String() string {
	if p == ProtocolFT4 {
		return "FT4"
	}
	return "FT8"
}

// SlotTime returns the slot duration in seconds.
func (p Protocol) SlotTime() float64 {
	if p == ProtocolFT4 {
		return FT4SlotTime
	}
	return FT8SlotTime
}

// SymbolTime returns the symbol duration in seconds.
func (p Protocol) SymbolTime() float64 {
	if p == ProtocolFT4 {
		return FT4SymbolTime
	}
	return FT8SymbolTime
}

// SymbolCount returns the number of channel symbols per transmission.
func (p Protocol) SymbolCount() int {
	if p == ProtocolFT4 {
		return FT4SymbolCount
	}
	return FT8SymbolCount
}

// NumTones returns the tone alphabet size (8-FSK for FT8, 4-FSK for FT4).
func (p Protocol) NumTones() int {
	if p == ProtocolFT4 {
		return 4
	}
	return 8
}

// SymbolBT returns the GFSK Gaussian filter bandwidth-time product.
func (p Protocol) SymbolBT() float64 {
	if p == ProtocolFT4 {
		return 1.0
	}
	return 2.0
}

// FT8Config holds decoder tuning parameters, loadable from YAML.
type FT8Config struct {
	Protocol       Protocol `yaml:"-"`
	ProtocolName   string   `yaml:"protocol"`
	MinScore       int      `yaml:"min_score"`
	MaxCandidates  int      `yaml:"max_candidates"`
	LDPCIterations int      `yaml:"ldpc_iterations"`
	Workers        int      `yaml:"workers"`
}

// DefaultFT8Config returns the reference decoder configuration.
func DefaultFT8Config() FT8Config {
	return FT8Config{
		Protocol:       ProtocolFT8,
		ProtocolName:   "FT8",
		MinScore:       0,
		MaxCandidates:  140,
		LDPCIterations: 25,
		Workers:        8,
	}
}

// Normalize fills ProtocolName/Protocol consistently after YAML unmarshalling and
// applies defaults for zero-valued fields.
func (c *FT8Config) Normalize() {
	switch c.ProtocolName {
	case "FT4":
		c.Protocol = ProtocolFT4
	case "FT8", "":
		c.Protocol = ProtocolFT8
		c.ProtocolName = "FT8"
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 140
	}
	if c.LDPCIterations <= 0 {
		c.LDPCIterations = 25
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
}

// LoadConfig reads an FT8Config from a YAML file, normalizing defaults and
// validating the result.
func LoadConfig(filename string) (*FT8Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ft8: reading config file: %w", err)
	}

	var cfg FT8Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ft8: parsing config file: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports ErrConfig if c names a protocol other than FT8 or FT4.
func (c *FT8Config) Validate() error {
	switch c.ProtocolName {
	case "", "FT8", "FT4":
		return nil
	default:
		return ErrConfig
	}
}
