// =============================================================================
// Spreadsheet to JSON Converter - Configuration Module
// =============================================================================
//
// This module loads the conversion rules and runtime settings. The business
// constants (recognized operation types, settlement methods, VAT brackets,
// the tax-system tag) are deliberately configuration data rather than ambient
// globals: the validation components receive them at construction.
//
// CONFIGURATION FILE:
//   A single optional YAML file. Every field has a default, so the converter
//   runs without any file at all. A partial file overrides only the fields
//   it names.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Rules holds the business-rule tables the field codec validates against.
type Rules struct {
	// OperationTypes are the recognized receipt operation tags.
	OperationTypes []string `yaml:"operation_types"`

	// SettlementMethods are the recognized payment-form tags.
	SettlementMethods []string `yaml:"settlement_methods"`

	// TaxRates maps a VAT bracket tag to its numeric rate, as a decimal
	// string (e.g. "vat20" -> "0.2").
	TaxRates map[string]string `yaml:"tax_rates"`

	// TaxSystem is the fixed tax-system tag emitted for every receipt.
	// The input column is read but ignored; multi-regime support would
	// replace this constant with a real validator.
	TaxSystem string `yaml:"tax_system"`
}

// Config holds the full converter configuration.
type Config struct {
	// Rules are the business-rule tables.
	Rules Rules `yaml:"rules"`

	// Tolerance is the absolute tolerance for the tax consistency check,
	// as a decimal string.
	// Default: "0.01"
	Tolerance string `yaml:"tolerance"`

	// MXTimeoutSeconds bounds each mail-exchange DNS lookup. A lookup that
	// exceeds it fails the transport way, which the e-mail checker treats
	// as success (see the emailcheck package).
	// Default: 5
	MXTimeoutSeconds int `yaml:"mx_timeout_seconds"`

	// OutputIndent is the number of spaces per indent level in the output
	// document.
	// Default: 2
	OutputIndent int `yaml:"output_indent"`
}

// MXTimeout returns the MX lookup timeout as a duration.
func (c *Config) MXTimeout() time.Duration {
	return time.Duration(c.MXTimeoutSeconds) * time.Second
}

// ToleranceDecimal returns the parsed consistency tolerance. Load guarantees
// the field parses, so the error from a hand-built Config is surfaced here.
func (c *Config) ToleranceDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.Tolerance)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid tolerance %q: %w", c.Tolerance, err)
	}
	return d, nil
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rules: Rules{
			OperationTypes: []string{"sale", "sale_refund"},
			SettlementMethods: []string{
				"full_prepayment", "prepayment", "advance", "full_payment",
				"partial_payment", "credit", "credit_payment",
			},
			TaxRates: map[string]string{
				"vat10": "0.1",
				"vat20": "0.2",
			},
			TaxSystem: "OSN",
		},
		Tolerance:        "0.01",
		MXTimeoutSeconds: 5,
		OutputIndent:     2,
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from a YAML file. An empty path returns the
// defaults. Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	// Unmarshal into a zero Config, not a pre-populated one: yaml merges
	// into existing maps, and a file declaring its own rate table must
	// replace the default one, not extend it.
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults restores defaults for fields an explicit file left empty.
func applyDefaults(cfg *Config) {
	def := Default()

	if len(cfg.Rules.OperationTypes) == 0 {
		cfg.Rules.OperationTypes = def.Rules.OperationTypes
	}
	if len(cfg.Rules.SettlementMethods) == 0 {
		cfg.Rules.SettlementMethods = def.Rules.SettlementMethods
	}
	if len(cfg.Rules.TaxRates) == 0 {
		cfg.Rules.TaxRates = def.Rules.TaxRates
	}
	if cfg.Rules.TaxSystem == "" {
		cfg.Rules.TaxSystem = def.Rules.TaxSystem
	}
	if cfg.Tolerance == "" {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MXTimeoutSeconds <= 0 {
		cfg.MXTimeoutSeconds = def.MXTimeoutSeconds
	}
	if cfg.OutputIndent <= 0 {
		cfg.OutputIndent = def.OutputIndent
	}
}

// validate checks that every decimal-valued setting parses.
func validate(cfg *Config) error {
	if _, err := decimal.NewFromString(cfg.Tolerance); err != nil {
		return fmt.Errorf("tolerance %q is not a decimal number", cfg.Tolerance)
	}
	for tag, rate := range cfg.Rules.TaxRates {
		if _, err := decimal.NewFromString(rate); err != nil {
			return fmt.Errorf("tax rate %q for tag %q is not a decimal number", rate, tag)
		}
	}
	return nil
}
