package feecalc

import (
	"fmt"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/domain"
)

// NewFromConfig builds a calculator administered by admin.
func NewFromConfig(admin domain.AccountID, cfg configs.FeeCalculator) (*Calculator, error) {
	if cfg.MaxRegistrationYears < 1 || cfg.MaxRegistrationYears > 255 {
		return nil, fmt.Errorf("%w: %d years", ErrInvalidDuration, cfg.MaxRegistrationYears)
	}

	common, err := configs.ParsePrice(cfg.CommonPrice)
	if err != nil {
		return nil, fmt.Errorf("common price: %w", err)
	}

	points := make([]PricePoint, 0, len(cfg.PricesByLength))
	for _, p := range cfg.PricesByLength {
		if p.Length < 1 || p.Length > 255 {
			return nil, fmt.Errorf("%w: price for length %d", ErrZeroLength, p.Length)
		}
		price, err := configs.ParsePrice(p.Price)
		if err != nil {
			return nil, fmt.Errorf("price for length %d: %w", p.Length, err)
		}
		points = append(points, PricePoint{Length: uint8(p.Length), Price: price})
	}

	return New(admin, uint8(cfg.MaxRegistrationYears), common, points)
}
