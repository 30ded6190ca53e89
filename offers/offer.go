// Package offers runs Sell and Auction offers. Each offer is a reducer over its own state,
// driven one message at a time by an Engine.
package offers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/types"
)

type State string

const (
	StateActive    State = "active"
	StateConfirmed State = "confirmed"
	StateCancelled State = "cancelled"
	StateRejected  State = "rejected"
	StateFinished  State = "finished"
	StateExpired   State = "expired"
)

func (s State) Terminal() bool {
	return s != StateActive
}

// FeeConfig is owned by a root and copied into every offer it deploys.
type FeeConfig struct {
	Version                uint64          `json:"version"`
	DeploymentFee          decimal.Decimal `json:"deployment_fee"`
	CreationPrice          decimal.Decimal `json:"creation_price"`
	MinimalGasAmount       decimal.Decimal `json:"minimal_gas_amount"`
	NftGasAmount           decimal.Decimal `json:"nft_gas_amount"`
	NftTransferFee         decimal.Decimal `json:"nft_transfer_fee"`
	MethodsCallsFee        decimal.Decimal `json:"methods_calls_fee"`
	LeftOnOfferAfterFinish decimal.Decimal `json:"left_on_offer_after_finish"`
	MarketFee              fees.MarketFee  `json:"market_fee"`
	WithdrawalAddress      types.Address   `json:"withdrawal_address"`
	BidDelta               decimal.Decimal `json:"bid_delta"`
	ExtraSecondsAmount     uint64          `json:"extra_seconds_amount"`
}

func (c FeeConfig) ExtraSeconds() time.Duration {
	return time.Duration(c.ExtraSecondsAmount) * time.Second
}

// Reserve is the part of the deployment fee an offer keeps to pay for its own hand-offs.
func (c FeeConfig) Reserve() decimal.Decimal {
	return c.DeploymentFee.Sub(c.CreationPrice)
}

func (c FeeConfig) Validate(kind types.OfferKind) error {
	amounts := map[string]decimal.Decimal{
		"deployment_fee":             c.DeploymentFee,
		"creation_price":             c.CreationPrice,
		"minimal_gas_amount":         c.MinimalGasAmount,
		"nft_gas_amount":             c.NftGasAmount,
		"nft_transfer_fee":           c.NftTransferFee,
		"methods_calls_fee":          c.MethodsCallsFee,
		"left_on_offer_after_finish": c.LeftOnOfferAfterFinish,
		"bid_delta":                  c.BidDelta,
	}
	for name, amount := range amounts {
		if amount.IsNegative() {
			return fmt.Errorf("%s is negative: %w", name, ErrConfigValidation)
		}
	}

	if c.CreationPrice.GreaterThan(c.DeploymentFee) {
		return fmt.Errorf("creation price %s exceeds deployment fee %s: %w", c.CreationPrice, c.DeploymentFee, ErrConfigValidation)
	}
	if !c.WithdrawalAddress.Valid() {
		return fmt.Errorf("withdrawal address %q: %w", c.WithdrawalAddress, ErrConfigValidation)
	}
	if c.MarketFee.Percent().GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("market fee %s%%: %w", c.MarketFee.Percent(), ErrConfigValidation)
	}
	if kind == types.KindAuction && !c.BidDelta.IsPositive() {
		return fmt.Errorf("bid delta must be positive: %w", ErrConfigValidation)
	}

	return nil
}

type Bid struct {
	Bidder types.Address   `json:"bidder"`
	Value  decimal.Decimal `json:"value"`
}

type Offer struct {
	ID           uint64          `json:"id"`
	Address      types.Address   `json:"address"`
	Kind         types.OfferKind `json:"kind"`
	Root         types.Address   `json:"root"`
	Item         types.Address   `json:"item"`
	Seller       types.Address   `json:"seller"`
	Price        decimal.Decimal `json:"price"`
	Royalties    []fees.Royalty  `json:"royalties"`
	Fees         FeeConfig       `json:"fees"`
	State        State           `json:"state"`
	CurrentBid   Bid             `json:"current_bid"`
	NextBidValue decimal.Decimal `json:"next_bid_value"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	ClosedAt     time.Time       `json:"closed_at"`
}

func NewSell(id uint64, address, root, item, seller types.Address, price decimal.Decimal, royalties []fees.Royalty, config FeeConfig) Offer {
	return Offer{
		ID:        id,
		Address:   address,
		Kind:      types.KindSell,
		Root:      root,
		Item:      item,
		Seller:    seller,
		Price:     price,
		Royalties: royalties,
		Fees:      config,
		State:     StateActive,
	}
}

func NewAuction(id uint64, address, root, item, seller types.Address, price decimal.Decimal, royalties []fees.Royalty, config FeeConfig, start time.Time, duration time.Duration) Offer {
	offer := NewSell(id, address, root, item, seller, price, royalties, config)
	offer.Kind = types.KindAuction
	offer.NextBidValue = price
	offer.StartTime = start
	offer.EndTime = start.Add(duration)

	return offer
}

func (o Offer) HasBid() bool {
	return o.CurrentBid.Bidder != ""
}

// FeesValues is the fee split of the current settlement price.
func (o Offer) FeesValues() fees.Breakdown {
	price := o.Price
	if o.HasBid() {
		price = o.CurrentBid.Value
	}

	return fees.Compute(price, o.Fees.MarketFee, o.Royalties)
}

type AuctionInfo struct {
	State        State           `json:"state"`
	Price        decimal.Decimal `json:"price"`
	CurrentBid   Bid             `json:"current_bid"`
	NextBidValue decimal.Decimal `json:"next_bid_value"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	Fees         FeeConfig       `json:"fees"`
}

func (o Offer) AuctionInfo() (AuctionInfo, error) {
	if o.Kind != types.KindAuction {
		return AuctionInfo{}, fmt.Errorf("%s is a %s offer: %w", o.Address, o.Kind, ErrInvalidState)
	}

	return AuctionInfo{
		State:        o.State,
		Price:        o.Price,
		CurrentBid:   o.CurrentBid,
		NextBidValue: o.NextBidValue,
		StartTime:    o.StartTime,
		EndTime:      o.EndTime,
		Fees:         o.Fees,
	}, nil
}
