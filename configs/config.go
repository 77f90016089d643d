package configs

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/holiman/uint256"
)

var Values Config

type (
	Config struct {
		Log          Log          `mapstructure:"log"`
		Deploy       Deploy       `mapstructure:"deploy"`
		Whitelist    Whitelist    `mapstructure:"whitelist"`
		Reservations Reservations `mapstructure:"reservations"`
		State        State        `mapstructure:"state"`
		Journal      Journal      `mapstructure:"journal"`
	}

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	Deploy struct {
		Deployer         string        `mapstructure:"deployer"`
		Version          int           `mapstructure:"version"`
		TLD              string        `mapstructure:"tld"`
		WhitelistFile    string        `mapstructure:"whitelist-file"`
		ReservationsFile string        `mapstructure:"reservations-file"`
		NameChecker      NameChecker   `mapstructure:"name-checker"`
		FeeCalculator    FeeCalculator `mapstructure:"fee-calculator"`
	}

	// NameChecker ranges are written as "a-z" or as a single character.
	NameChecker struct {
		MinLength            int      `mapstructure:"min-length"`
		MaxLength            int      `mapstructure:"max-length"`
		AllowedRanges        []string `mapstructure:"allowed-ranges"`
		DisallowedEdgeRanges []string `mapstructure:"disallowed-edge-ranges"`
	}

	// FeeCalculator prices are decimal strings in the smallest unit.
	FeeCalculator struct {
		MaxRegistrationYears int          `mapstructure:"max-registration-years"`
		CommonPrice          string       `mapstructure:"common-price"`
		PricesByLength       []PricePoint `mapstructure:"prices-by-length"`
	}

	PricePoint struct {
		Length int    `mapstructure:"length"`
		Price  string `mapstructure:"price"`
	}

	Whitelist struct {
		File    string `mapstructure:"file"`
		Output  string `mapstructure:"output"`
		Workers int    `mapstructure:"workers"`
	}

	Reservations struct {
		File      string `mapstructure:"file"`
		TLD       string `mapstructure:"tld"`
		BatchSize int    `mapstructure:"batch-size"`
	}

	State struct {
		Dir string `mapstructure:"dir"`
	}

	Journal struct {
		Path string `mapstructure:"path"`
	}
)

// SlogLevel maps the configured level, defaulting to info.
func (c *Log) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Deploy) Validate() error {
	var errs []error

	if c.Deployer == "" {
		errs = append(errs, errors.New("deploy.deployer is required"))
	}
	if c.Version < 0 || int64(c.Version) > math.MaxUint32 {
		errs = append(errs, errors.New("deploy.version must fit in an unsigned 32-bit integer"))
	}
	if c.TLD == "" {
		errs = append(errs, errors.New("deploy.tld is required"))
	}
	if err := c.NameChecker.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.FeeCalculator.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("deploy configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *NameChecker) Validate() error {
	var errs []error

	if c.MinLength < 0 || c.MinLength > 255 {
		errs = append(errs, errors.New("deploy.name-checker.min-length must be between 0 and 255"))
	}
	if c.MaxLength < 1 || c.MaxLength > 255 {
		errs = append(errs, errors.New("deploy.name-checker.max-length must be between 1 and 255"))
	}
	if c.MinLength > c.MaxLength {
		errs = append(errs, errors.New("deploy.name-checker.min-length must not exceed max-length"))
	}
	if len(c.AllowedRanges) == 0 {
		errs = append(errs, errors.New("deploy.name-checker.allowed-ranges is required"))
	}

	return errors.Join(errs...)
}

func (c *FeeCalculator) Validate() error {
	var errs []error

	if c.MaxRegistrationYears < 1 || c.MaxRegistrationYears > 255 {
		errs = append(errs, errors.New("deploy.fee-calculator.max-registration-years must be between 1 and 255"))
	}
	if _, err := ParsePrice(c.CommonPrice); err != nil {
		errs = append(errs, fmt.Errorf("deploy.fee-calculator.common-price: %w", err))
	}
	for i, point := range c.PricesByLength {
		if point.Length < 1 || point.Length > 255 {
			errs = append(errs, fmt.Errorf("deploy.fee-calculator.prices-by-length[%d].length must be between 1 and 255", i))
		}
		if _, err := ParsePrice(point.Price); err != nil {
			errs = append(errs, fmt.Errorf("deploy.fee-calculator.prices-by-length[%d].price: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Whitelist) Validate() error {
	var errs []error

	if c.File == "" {
		errs = append(errs, errors.New("whitelist.file is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("whitelist.output is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("whitelist.workers must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("whitelist configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Reservations) Validate() error {
	var errs []error

	if c.File == "" {
		errs = append(errs, errors.New("reservations.file is required"))
	}
	if c.TLD == "" {
		errs = append(errs, errors.New("reservations.tld is required"))
	}
	if c.BatchSize < 1 {
		errs = append(errs, errors.New("reservations.batch-size must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("reservations configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// ParsePrice parses a non-zero decimal amount.
func ParsePrice(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.New("price is required")
	}
	price, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if price.IsZero() {
		return nil, errors.New("price must not be zero")
	}
	return price, nil
}
