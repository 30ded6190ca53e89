package offers

import (
	"fmt"
	"time"

	"github.com/zsmartex/nftex/events"
)

func reduceSell(offer Offer, msg Message, now time.Time) (Offer, []Effect, error) {
	switch m := msg.(type) {
	case Transfer:
		if m.Value.LessThan(offer.Price) {
			return offer, refund(m, "refund"), fmt.Errorf("payment %s below price %s: %w", m.Value, offer.Price, ErrInsufficientValue)
		}

		effects := settle(offer, m.From, offer.Price, m.Value)
		effects = append(effects,
			Emit{Name: events.Confirmed, Data: map[string]string{
				"buyer": m.From.String(),
				"price": offer.Price.String(),
			}, Mirror: true},
			Destroy{},
		)

		offer.State = StateConfirmed
		offer.ClosedAt = now
		return offer, effects, nil
	case CancelOrder:
		next, effects, err := cancel(offer, m)
		if err == nil {
			next.State = StateCancelled
			next.ClosedAt = now
		}
		return next, effects, err
	default:
		return offer, refund(msg, "refund"), fmt.Errorf("sell offer does not accept %T: %w", msg, ErrInvalidState)
	}
}
