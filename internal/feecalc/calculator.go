package feecalc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/ownable"
	"github.com/holiman/uint256"
)

var (
	ErrInvalidDuration = errors.New("invalid registration duration")
	ErrZeroLength      = errors.New("zero length name")
	ErrZeroPrice       = errors.New("zero price")
)

type (
	// PricePoint sets the yearly price of names with the given byte length.
	// A nil Price removes the entry when passed to SetPricesByLength.
	PricePoint struct {
		Length uint8
		Price  *uint256.Int
	}

	// Calculator prices a registration by name length and duration.
	Calculator struct {
		*ownable.Ownable

		mu                      sync.RWMutex
		maxRegistrationDuration uint8
		commonPrice             uint256.Int
		priceByLength           map[uint8]uint256.Int
	}
)

func New(admin domain.AccountID, maxRegistrationDuration uint8, commonPrice *uint256.Int, points []PricePoint) (*Calculator, error) {
	if commonPrice == nil || commonPrice.IsZero() {
		return nil, fmt.Errorf("common price: %w", ErrZeroPrice)
	}

	c := &Calculator{
		Ownable:                 ownable.New(admin),
		maxRegistrationDuration: maxRegistrationDuration,
		commonPrice:             *commonPrice,
		priceByLength:           make(map[uint8]uint256.Int, len(points)),
	}

	for _, point := range points {
		if point.Price == nil || point.Price.IsZero() {
			return nil, fmt.Errorf("price for length %d: %w", point.Length, ErrZeroPrice)
		}
		c.priceByLength[point.Length] = *point.Price
	}

	return c, nil
}

// NamePrice returns the base price and the premium for registering name for the given years.
// The premium is (years-1) times the base price.
func (c *Calculator) NamePrice(name string, years uint8) (base, premium *uint256.Int, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if years < 1 || years > c.maxRegistrationDuration {
		return nil, nil, fmt.Errorf("%w: %d years (max %d)", ErrInvalidDuration, years, c.maxRegistrationDuration)
	}
	if len(name) == 0 {
		return nil, nil, ErrZeroLength
	}

	basePrice := c.commonPrice
	if len(name) <= 0xff {
		if price, ok := c.priceByLength[uint8(len(name))]; ok {
			basePrice = price
		}
	}

	base = new(uint256.Int).Set(&basePrice)
	premium, overflow := new(uint256.Int).MulOverflow(base, uint256.NewInt(uint64(years-1)))
	if overflow {
		return nil, nil, fmt.Errorf("premium overflows for %d years", years)
	}

	return base, premium, nil
}

// TotalPrice is base plus premium.
func (c *Calculator) TotalPrice(name string, years uint8) (*uint256.Int, error) {
	base, premium, err := c.NamePrice(name, years)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Add(base, premium), nil
}

func (c *Calculator) MaxRegistrationDuration() uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxRegistrationDuration
}

func (c *Calculator) CommonPrice() *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return new(uint256.Int).Set(&c.commonPrice)
}

// PriceByLength returns nil when no specific price is set for the length.
func (c *Calculator) PriceByLength(length uint8) *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	price, ok := c.priceByLength[length]
	if !ok {
		return nil
	}
	return new(uint256.Int).Set(&price)
}

func (c *Calculator) SetMaxRegistrationDuration(caller domain.AccountID, years uint8) error {
	if err := c.EnsureAdmin(caller); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxRegistrationDuration = years
	return nil
}

func (c *Calculator) SetCommonPrice(caller domain.AccountID, price *uint256.Int) error {
	if err := c.EnsureAdmin(caller); err != nil {
		return err
	}
	if price == nil || price.IsZero() {
		return ErrZeroPrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.commonPrice = *price
	return nil
}

// SetPricesByLength applies all points or none of them.
func (c *Calculator) SetPricesByLength(caller domain.AccountID, points []PricePoint) error {
	if err := c.EnsureAdmin(caller); err != nil {
		return err
	}
	for _, point := range points {
		if point.Price != nil && point.Price.IsZero() {
			return fmt.Errorf("price for length %d: %w", point.Length, ErrZeroPrice)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, point := range points {
		if point.Price == nil {
			delete(c.priceByLength, point.Length)
			continue
		}
		c.priceByLength[point.Length] = *point.Price
	}

	return nil
}
