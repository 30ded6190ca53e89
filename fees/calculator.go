// Package fees derives market-fee and royalty shares of a settlement price.
package fees

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/types"
)

var (
	hundred = decimal.NewFromInt(100)

	ErrFeesExceedPrice = errors.New("fee shares exceed 100% of price")
	ErrNegativeShare   = errors.New("fee share is negative")
)

type Royalty struct {
	Recipient types.Address   `json:"recipient" yaml:"recipient"`
	Percent   decimal.Decimal `json:"percent" yaml:"percent"`
}

// MarketFee is a percentage expressed as Value / 10^Decimals.
type MarketFee struct {
	Value    uint32 `json:"value" yaml:"value"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

func (m MarketFee) Percent() decimal.Decimal {
	return decimal.New(int64(m.Value), -int32(m.Decimals))
}

type RoyaltyValue struct {
	Recipient types.Address   `json:"recipient"`
	Value     decimal.Decimal `json:"value"`
}

type Breakdown struct {
	MarketFeeValue decimal.Decimal `json:"market_fee_value"`
	RoyaltyValues  []RoyaltyValue  `json:"royalty_values"`
	TotalFeeValue  decimal.Decimal `json:"total_fee_value"`
}

// Net is what is left of price once every fee share is taken.
func (b Breakdown) Net(price decimal.Decimal) decimal.Decimal {
	return price.Sub(b.TotalFeeValue)
}

func share(price, percent decimal.Decimal) decimal.Decimal {
	return types.Nano(price.Mul(percent).Div(hundred))
}

// Compute splits price into the market fee and one share per royalty entry. Shares are rounded
// down to nano precision, so TotalFeeValue never exceeds the percentage it was derived from.
func Compute(price decimal.Decimal, marketFee MarketFee, royalties []Royalty) Breakdown {
	breakdown := Breakdown{
		MarketFeeValue: share(price, marketFee.Percent()),
		RoyaltyValues:  make([]RoyaltyValue, 0, len(royalties)),
	}

	total := breakdown.MarketFeeValue
	for _, royalty := range royalties {
		value := share(price, royalty.Percent)
		breakdown.RoyaltyValues = append(breakdown.RoyaltyValues, RoyaltyValue{
			Recipient: royalty.Recipient,
			Value:     value,
		})
		total = total.Add(value)
	}
	breakdown.TotalFeeValue = total

	return breakdown
}

// TotalPercent is the market fee percentage plus every royalty percentage.
func TotalPercent(marketFee MarketFee, royalties []Royalty) decimal.Decimal {
	total := marketFee.Percent()
	for _, royalty := range royalties {
		total = total.Add(royalty.Percent)
	}

	return total
}

// Validate checks that the configured shares can never take more than the whole price.
func Validate(marketFee MarketFee, royalties []Royalty) error {
	for _, royalty := range royalties {
		if royalty.Percent.IsNegative() {
			return fmt.Errorf("royalty for %s: %w", royalty.Recipient, ErrNegativeShare)
		}
	}

	if total := TotalPercent(marketFee, royalties); total.GreaterThan(hundred) {
		return fmt.Errorf("%s%%: %w", total.String(), ErrFeesExceedPrice)
	}

	return nil
}

// NextBid is the smallest bid accepted after current when bids must grow by delta percent.
func NextBid(current, delta decimal.Decimal) decimal.Decimal {
	return types.Nano(current.Mul(hundred.Add(delta)).Div(hundred))
}
