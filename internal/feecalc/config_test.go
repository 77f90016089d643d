package feecalc

import (
	"testing"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig(t *testing.T) {
	c, err := NewFromConfig(alice, configs.FeeCalculator{
		MaxRegistrationYears: 3,
		CommonPrice:          "6",
		PricesByLength: []configs.PricePoint{
			{Length: 5, Price: "640"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, uint8(3), c.MaxRegistrationDuration())
	assert.Equal(t, uint256.NewInt(6), c.CommonPrice())
	assert.Equal(t, uint256.NewInt(640), c.PriceByLength(5))
	assert.Nil(t, c.PriceByLength(6))
}

func TestNewFromConfig_Rejects(t *testing.T) {
	tests := map[string]configs.FeeCalculator{
		"zero years":   {MaxRegistrationYears: 0, CommonPrice: "6"},
		"zero common":  {MaxRegistrationYears: 1, CommonPrice: "0"},
		"bad price":    {MaxRegistrationYears: 1, CommonPrice: "6", PricesByLength: []configs.PricePoint{{Length: 5, Price: "x"}}},
		"large length": {MaxRegistrationYears: 1, CommonPrice: "6", PricesByLength: []configs.PricePoint{{Length: 256, Price: "1"}}},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewFromConfig(alice, cfg)
			assert.Error(t, err)
		})
	}
}
