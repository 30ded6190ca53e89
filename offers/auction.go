package offers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/fees"
)

func reduceAuction(offer Offer, msg Message, now time.Time) (Offer, []Effect, error) {
	switch m := msg.(type) {
	case Transfer:
		return placeBid(offer, m, now)
	case FinishAuction:
		return finish(offer, now)
	default:
		return offer, refund(msg, "refund"), fmt.Errorf("auction does not accept %T: %w", msg, ErrInvalidState)
	}
}

func placeBid(offer Offer, bid Transfer, now time.Time) (Offer, []Effect, error) {
	if !now.Before(offer.EndTime) {
		return offer, refund(bid, "refund"), fmt.Errorf("auction %s ended at %s: %w", offer.Address, offer.EndTime, ErrInvalidState)
	}
	if bid.Value.LessThan(offer.NextBidValue) || (offer.HasBid() && !bid.Value.GreaterThan(offer.CurrentBid.Value)) {
		return offer, refund(bid, "refund"), fmt.Errorf("bid %s below %s: %w", bid.Value, offer.NextBidValue, ErrInsufficientValue)
	}

	var effects []Effect
	if offer.HasBid() {
		effects = append(effects, Pay{To: offer.CurrentBid.Bidder, Amount: offer.CurrentBid.Value, Memo: "outbid"})
	}

	offer.CurrentBid = Bid{Bidder: bid.From, Value: bid.Value}
	offer.NextBidValue = fees.NextBid(bid.Value, offer.Fees.BidDelta)

	if extra := offer.Fees.ExtraSeconds(); offer.EndTime.Sub(now) < extra {
		offer.EndTime = offer.EndTime.Add(extra)
	}

	effects = append(effects, Emit{Name: events.BidPlaced, Data: map[string]string{
		"bidder":           bid.From.String(),
		"value":            bid.Value.String(),
		"next_bid_value":   offer.NextBidValue.String(),
		"auction_end_time": strconv.FormatInt(offer.EndTime.Unix(), 10),
	}})

	return offer, effects, nil
}

func finish(offer Offer, now time.Time) (Offer, []Effect, error) {
	if now.Before(offer.EndTime) {
		return offer, nil, fmt.Errorf("auction %s ends at %s: %w", offer.Address, offer.EndTime, ErrNotExpired)
	}

	offer.ClosedAt = now

	if !offer.HasBid() {
		offer.State = StateExpired
		return offer, []Effect{
			HandOver{To: offer.Seller},
			Emit{Name: events.Expired, Data: map[string]string{}, Mirror: true},
			Destroy{},
		}, nil
	}

	winner := offer.CurrentBid
	effects := settle(offer, winner.Bidder, winner.Value, winner.Value)
	effects = append(effects,
		Emit{Name: events.Finished, Data: map[string]string{
			"winner":      winner.Bidder.String(),
			"final_value": winner.Value.String(),
		}, Mirror: true},
		Destroy{},
	)

	offer.State = StateFinished
	return offer, effects, nil
}
