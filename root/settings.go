package root

import (
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/types"
)

// update applies mutate to a copy of the fee configuration. The copy replaces the live one only
// when caller is the owner and the result is still valid; offers deployed earlier keep theirs.
func (r *Root) update(caller types.Address, name events.Name, data map[string]string, mutate func(c *offers.FeeConfig)) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if caller != r.owner {
		return fmt.Errorf("%s is not the owner of %s: %w", caller, r.Address, offers.ErrUnauthorized)
	}

	candidate := r.config
	mutate(&candidate)
	if err := candidate.Validate(r.Kind); err != nil {
		return err
	}

	candidate.Version++
	r.config = candidate
	r.emit(name, data)

	return nil
}

func (r *Root) emit(name events.Name, data map[string]string) {
	event := events.New(name, r.Address, data, r.deps.Clock.Now())
	event.Kind = r.Kind
	r.deps.Publisher.Publish(event)

	config.Logger.Infof("[nftex.root] %s %s %v", r.Address, name, data)
}

func (r *Root) SetDeploymentFee(caller types.Address, fee decimal.Decimal) error {
	return r.update(caller, events.DeploymentFeeChanged, map[string]string{"deployment_fee": fee.String()}, func(c *offers.FeeConfig) {
		c.DeploymentFee = fee
	})
}

func (r *Root) SetMarketFee(caller types.Address, value uint32, decimals uint8) error {
	return r.update(caller, events.MarketFeeChanged, map[string]string{
		"market_fee":          fmt.Sprint(value),
		"market_fee_decimals": fmt.Sprint(decimals),
	}, func(c *offers.FeeConfig) {
		c.MarketFee = fees.MarketFee{Value: value, Decimals: decimals}
	})
}

func (r *Root) SetCreationPrice(caller types.Address, price decimal.Decimal) error {
	return r.update(caller, events.CreationPriceChanged, map[string]string{"creation_price": price.String()}, func(c *offers.FeeConfig) {
		c.CreationPrice = price
	})
}

func (r *Root) ChangeWithdrawalAddress(caller, address types.Address) error {
	return r.update(caller, events.WithdrawalAddressChanged, map[string]string{"withdrawal_address": address.String()}, func(c *offers.FeeConfig) {
		c.WithdrawalAddress = address
	})
}

func (r *Root) ChangeExtraSecondsAmount(caller types.Address, seconds uint64) error {
	if r.Kind != types.KindAuction {
		return fmt.Errorf("%s root has no auction settings: %w", r.Kind, offers.ErrInvalidState)
	}

	return r.update(caller, events.ExtraSecondsAmountChanged, map[string]string{"extra_seconds_amount": fmt.Sprint(seconds)}, func(c *offers.FeeConfig) {
		c.ExtraSecondsAmount = seconds
	})
}

func (r *Root) ChangeBidDelta(caller types.Address, delta decimal.Decimal) error {
	if r.Kind != types.KindAuction {
		return fmt.Errorf("%s root has no auction settings: %w", r.Kind, offers.ErrInvalidState)
	}

	return r.update(caller, events.BidDeltaChanged, map[string]string{"bid_delta": delta.String()}, func(c *offers.FeeConfig) {
		c.BidDelta = delta
	})
}

func (r *Root) ChangeOwner(caller, owner types.Address) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if caller != r.owner {
		return fmt.Errorf("%s is not the owner of %s: %w", caller, r.Address, offers.ErrUnauthorized)
	}
	if !owner.Valid() {
		return fmt.Errorf("owner %q: %w", owner, offers.ErrConfigValidation)
	}

	r.owner = owner
	r.emit(events.OwnerChanged, map[string]string{"old_owner": caller.String(), "new_owner": owner.String()})

	return nil
}

func (r *Root) GetFeesInfo() offers.FeeConfig {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.config
}

func (r *Root) GetAuctionSettings() (AuctionSettings, error) {
	if r.Kind != types.KindAuction {
		return AuctionSettings{}, fmt.Errorf("%s root has no auction settings: %w", r.Kind, offers.ErrInvalidState)
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return AuctionSettings{
		BidDelta:           r.config.BidDelta,
		ExtraSecondsAmount: r.config.ExtraSecondsAmount,
	}, nil
}

func (r *Root) GetOwner() types.Address {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.owner
}

func (r *Root) GetWithdrawalAddress() types.Address {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.config.WithdrawalAddress
}

// Info is a point-in-time view of a root, published for readers outside the engine process.
type Info struct {
	Address  types.Address    `json:"address"`
	Kind     types.OfferKind  `json:"kind"`
	Owner    types.Address    `json:"owner"`
	Fees     offers.FeeConfig `json:"fees"`
	CodeHash string           `json:"code_hash"`
	NextID   uint64           `json:"next_id"`
	Offers   []Listing        `json:"offers"`
}

func (r *Root) Info() Info {
	listings := r.Offers()

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return Info{
		Address:  r.Address,
		Kind:     r.Kind,
		Owner:    r.owner,
		Fees:     r.config,
		CodeHash: hex.EncodeToString(r.codeHash),
		NextID:   r.sequence,
		Offers:   listings,
	}
}
