package offers

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/types"
)

const (
	rootAddress  types.Address = "0:7000000000000000000000000000000000000000000000000000000000000000"
	offerAddress types.Address = "0:0f00000000000000000000000000000000000000000000000000000000000000"
	itemAddress  types.Address = "0:1100000000000000000000000000000000000000000000000000000000000000"
	withdrawal   types.Address = "0:fe00000000000000000000000000000000000000000000000000000000000000"
	seller       types.Address = "0:5e00000000000000000000000000000000000000000000000000000000000000"
	buyer        types.Address = "0:b000000000000000000000000000000000000000000000000000000000000000"
)

var epoch = time.Unix(1_700_000_000, 0).UTC()

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testFees() FeeConfig {
	return FeeConfig{
		Version:                1,
		DeploymentFee:          d("1"),
		CreationPrice:          d("0.5"),
		MinimalGasAmount:       d("0.1"),
		NftGasAmount:           d("0.1"),
		NftTransferFee:         d("0.2"),
		MethodsCallsFee:        d("0.1"),
		LeftOnOfferAfterFinish: d("0.05"),
		MarketFee:              fees.MarketFee{Value: 5},
		WithdrawalAddress:      withdrawal,
		BidDelta:               d("10"),
		ExtraSecondsAmount:     5,
	}
}

func testRoyalties() []fees.Royalty {
	return []fees.Royalty{{Recipient: types.ZeroAddress, Percent: d("10")}}
}

func testSell(price string) Offer {
	return NewSell(0, offerAddress, rootAddress, itemAddress, seller, d(price), testRoyalties(), testFees())
}

func testAuction(price string, config FeeConfig, duration time.Duration) Offer {
	return NewAuction(0, offerAddress, rootAddress, itemAddress, seller, d(price), testRoyalties(), config, epoch, duration)
}

func TestFeeConfigValidate(t *testing.T) {
	config := testFees()
	if err := config.Validate(types.KindAuction); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	broken := map[string]func(c *FeeConfig){
		"creation price above deployment fee": func(c *FeeConfig) { c.CreationPrice = d("2") },
		"negative fee":                        func(c *FeeConfig) { c.MethodsCallsFee = d("-1") },
		"bad withdrawal address":              func(c *FeeConfig) { c.WithdrawalAddress = "nowhere" },
		"market fee above 100%":               func(c *FeeConfig) { c.MarketFee = fees.MarketFee{Value: 1001, Decimals: 1} },
		"zero bid delta":                      func(c *FeeConfig) { c.BidDelta = decimal.Zero },
	}

	for name, mutate := range broken {
		t.Run(name, func(t *testing.T) {
			c := testFees()
			mutate(&c)
			if err := c.Validate(types.KindAuction); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}

	sell := testFees()
	sell.BidDelta = decimal.Zero
	if err := sell.Validate(types.KindSell); err != nil {
		t.Fatalf("sell roots need no bid delta: %v", err)
	}

	// Gas amounts above the reserve are paid from the settlement, not refused up front.
	noReserve := testFees()
	noReserve.CreationPrice = noReserve.DeploymentFee
	noReserve.NftTransferFee = d("1.1")
	if err := noReserve.Validate(types.KindSell); err != nil {
		t.Fatalf("config without reserve rejected: %v", err)
	}
}

func errorIs(err, target error) bool {
	return errors.Is(err, target)
}
