package offers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/types"
)

// Reduce applies msg to offer. Any value attached to msg is assumed to already sit on the offer
// balance; rejected messages carry a refund effect for it. Reduce never mutates its input.
func Reduce(offer Offer, msg Message, now time.Time) (Offer, []Effect, error) {
	if offer.State.Terminal() {
		return offer, refund(msg, "bounce"), fmt.Errorf("%s is %s: %w", offer.Address, offer.State, ErrInvalidState)
	}

	switch offer.Kind {
	case types.KindSell:
		return reduceSell(offer, msg, now)
	case types.KindAuction:
		return reduceAuction(offer, msg, now)
	default:
		return offer, refund(msg, "bounce"), fmt.Errorf("unknown offer kind %q: %w", offer.Kind, ErrInvalidState)
	}
}

// settle hands the item to buyer and splits price between seller, market and royalty recipients.
// Anything paid above price goes back to buyer.
func settle(offer Offer, buyer types.Address, price, paid decimal.Decimal) []Effect {
	breakdown := fees.Compute(price, offer.Fees.MarketFee, offer.Royalties)

	effects := []Effect{
		HandOver{To: buyer, Ownership: true},
		Pay{To: offer.Seller, Amount: breakdown.Net(price), Memo: "sale"},
		Pay{To: offer.Fees.WithdrawalAddress, Amount: breakdown.MarketFeeValue, Memo: "market fee"},
	}
	for _, royalty := range breakdown.RoyaltyValues {
		effects = append(effects, Pay{To: royalty.Recipient, Amount: royalty.Value, Memo: "royalty"})
	}
	if change := paid.Sub(price); change.IsPositive() {
		effects = append(effects, Pay{To: buyer, Amount: change, Memo: "change"})
	}

	return effects
}

func cancel(offer Offer, msg CancelOrder) (Offer, []Effect, error) {
	if msg.Caller != offer.Seller {
		return offer, refund(msg, "refund"), fmt.Errorf("%s cannot cancel offer of %s: %w", msg.Caller, offer.Seller, ErrUnauthorized)
	}
	if msg.Value.LessThan(offer.Fees.MethodsCallsFee) {
		return offer, refund(msg, "refund"), fmt.Errorf("cancel needs %s attached, got %s: %w", offer.Fees.MethodsCallsFee, msg.Value, ErrInsufficientValue)
	}

	return offer, []Effect{
		HandOver{To: offer.Seller},
		Emit{Name: events.Cancelled, Data: map[string]string{}, Mirror: true},
		Destroy{},
	}, nil
}
