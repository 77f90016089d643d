package namechecker

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/ownable"
)

var (
	ErrTooShort                     = errors.New("name too short")
	ErrTooLong                      = errors.New("name too long")
	ErrContainsDisallowedCharacters = errors.New("name contains disallowed characters")
	ErrInvalidRange                 = errors.New("invalid range")
)

type (
	// UnicodeRange is an inclusive range of code points.
	UnicodeRange struct {
		Lower rune `mapstructure:"lower" json:"lower"`
		Upper rune `mapstructure:"upper" json:"upper"`
	}

	// Length bounds are counted in code points.
	Length struct {
		Min uint8 `mapstructure:"min" json:"min"`
		Max uint8 `mapstructure:"max" json:"max"`
	}

	Checker struct {
		*ownable.Ownable

		mu                   sync.RWMutex
		allowedLength        Length
		allowedRanges        []UnicodeRange
		disallowedEdgeRanges []UnicodeRange
	}
)

func (r UnicodeRange) Contains(c rune) bool {
	return r.Lower <= c && c <= r.Upper
}

func (r UnicodeRange) valid() bool {
	return r.Lower <= r.Upper
}

func (l Length) valid() bool {
	return l.Min > 0 && l.Min <= l.Max
}

// New creates a checker. Invalid bounds or ranges are rejected.
func New(admin domain.AccountID, length Length, allowed, disallowedEdges []UnicodeRange) (*Checker, error) {
	if !length.valid() {
		return nil, fmt.Errorf("%w: length %d..%d", ErrInvalidRange, length.Min, length.Max)
	}
	if err := validateRanges(allowed); err != nil {
		return nil, err
	}
	if err := validateRanges(disallowedEdges); err != nil {
		return nil, err
	}

	return &Checker{
		Ownable:              ownable.New(admin),
		allowedLength:        length,
		allowedRanges:        clone(allowed),
		disallowedEdgeRanges: clone(disallowedEdges),
	}, nil
}

// IsNameAllowed checks length first, then the edge characters, then every character.
func (c *Checker) IsNameAllowed(name string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	length := utf8.RuneCountInString(name)
	switch {
	case length > int(c.allowedLength.Max):
		return ErrTooLong
	case length < int(c.allowedLength.Min):
		return ErrTooShort
	}

	runes := []rune(name)
	for _, edge := range []rune{runes[0], runes[len(runes)-1]} {
		if inAny(c.disallowedEdgeRanges, edge) {
			return ErrContainsDisallowedCharacters
		}
	}

	for _, r := range runes {
		if !inAny(c.allowedRanges, r) {
			return ErrContainsDisallowedCharacters
		}
	}

	return nil
}

func (c *Checker) AllowedLength() Length {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.allowedLength
}

func (c *Checker) AllowedRanges() []UnicodeRange {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.allowedRanges)
}

func (c *Checker) DisallowedEdgeRanges() []UnicodeRange {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.disallowedEdgeRanges)
}

func (c *Checker) SetAllowedRanges(caller domain.AccountID, ranges []UnicodeRange) error {
	if err := c.EnsureAdmin(caller); err != nil {
		return err
	}
	if err := validateRanges(ranges); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowedRanges = clone(ranges)
	return nil
}

func (c *Checker) SetDisallowedEdgeRanges(caller domain.AccountID, ranges []UnicodeRange) error {
	if err := c.EnsureAdmin(caller); err != nil {
		return err
	}
	if err := validateRanges(ranges); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.disallowedEdgeRanges = clone(ranges)
	return nil
}

func (c *Checker) SetAllowedLength(caller domain.AccountID, length Length) error {
	if err := c.EnsureAdmin(caller); err != nil {
		return err
	}
	if !length.valid() {
		return ErrInvalidRange
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowedLength = length
	return nil
}

func validateRanges(ranges []UnicodeRange) error {
	for _, r := range ranges {
		if !r.valid() {
			return fmt.Errorf("%w: %U > %U", ErrInvalidRange, r.Lower, r.Upper)
		}
	}
	return nil
}

func inAny(ranges []UnicodeRange, c rune) bool {
	for _, r := range ranges {
		if r.Contains(c) {
			return true
		}
	}
	return false
}

func clone(ranges []UnicodeRange) []UnicodeRange {
	return append([]UnicodeRange(nil), ranges...)
}
