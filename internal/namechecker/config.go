package namechecker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/domain"
)

// NewFromConfig builds a checker administered by admin.
func NewFromConfig(admin domain.AccountID, cfg configs.NameChecker) (*Checker, error) {
	allowed, err := ParseRanges(cfg.AllowedRanges)
	if err != nil {
		return nil, fmt.Errorf("allowed ranges: %w", err)
	}
	edges, err := ParseRanges(cfg.DisallowedEdgeRanges)
	if err != nil {
		return nil, fmt.Errorf("disallowed edge ranges: %w", err)
	}
	if cfg.MinLength < 0 || cfg.MinLength > 255 || cfg.MaxLength < 0 || cfg.MaxLength > 255 {
		return nil, fmt.Errorf("%w: length %d..%d", ErrInvalidRange, cfg.MinLength, cfg.MaxLength)
	}

	return New(admin, Length{Min: uint8(cfg.MinLength), Max: uint8(cfg.MaxLength)}, allowed, edges)
}

// ParseRanges parses each entry with ParseRange.
func ParseRanges(values []string) ([]UnicodeRange, error) {
	ranges := make([]UnicodeRange, 0, len(values))
	var errs []error
	for _, v := range values {
		r, err := ParseRange(v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ranges = append(ranges, r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ranges, nil
}

// ParseRange accepts a single character ("-") or two characters joined by a dash ("a-z").
func ParseRange(s string) (UnicodeRange, error) {
	if utf8.RuneCountInString(s) == 1 {
		c, _ := utf8.DecodeRuneInString(s)
		return UnicodeRange{Lower: c, Upper: c}, nil
	}

	lower, upper, ok := strings.Cut(s, "-")
	if !ok || utf8.RuneCountInString(lower) != 1 || utf8.RuneCountInString(upper) != 1 {
		return UnicodeRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}

	r := UnicodeRange{}
	r.Lower, _ = utf8.DecodeRuneInString(lower)
	r.Upper, _ = utf8.DecodeRuneInString(upper)
	if !r.valid() {
		return UnicodeRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return r, nil
}
