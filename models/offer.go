package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"

	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/types"
)

type Offer struct {
	Address       string              `json:"address" gorm:"primaryKey"`
	Sequence      uint64              `json:"sequence"`
	Kind          string              `json:"kind"`
	RootAddress   string              `json:"root_address"`
	Item          string              `json:"item"`
	Seller        string              `json:"seller"`
	Price         decimal.Decimal     `json:"price"`
	State         string              `json:"state"`
	Royalties     string              `json:"royalties"`
	Fees          string              `json:"fees"`
	CurrentBidder null.String         `json:"current_bidder"`
	CurrentBid    decimal.NullDecimal `json:"current_bid"`
	NextBidValue  decimal.Decimal     `json:"next_bid_value"`
	StartTime     null.Time           `json:"start_time"`
	EndTime       null.Time           `json:"end_time"`
	ClosedAt      null.Time           `json:"closed_at"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func optionalTime(t time.Time) null.Time {
	if t.IsZero() {
		return null.Time{}
	}

	return null.TimeFrom(t)
}

func OfferFrom(offer offers.Offer) (*Offer, error) {
	royalties, err := json.Marshal(offer.Royalties)
	if err != nil {
		return nil, err
	}

	feeConfig, err := json.Marshal(offer.Fees)
	if err != nil {
		return nil, err
	}

	record := &Offer{
		Address:      offer.Address.String(),
		Sequence:     offer.ID,
		Kind:         string(offer.Kind),
		RootAddress:  offer.Root.String(),
		Item:         offer.Item.String(),
		Seller:       offer.Seller.String(),
		Price:        offer.Price,
		State:        string(offer.State),
		Royalties:    string(royalties),
		Fees:         string(feeConfig),
		NextBidValue: offer.NextBidValue,
		StartTime:    optionalTime(offer.StartTime),
		EndTime:      optionalTime(offer.EndTime),
		ClosedAt:     optionalTime(offer.ClosedAt),
	}

	if offer.HasBid() {
		record.CurrentBidder = null.StringFrom(offer.CurrentBid.Bidder.String())
		record.CurrentBid = decimal.NullDecimal{Decimal: offer.CurrentBid.Value, Valid: true}
	}

	return record, nil
}

func (o *Offer) ToOffer() (offers.Offer, error) {
	var royalties []fees.Royalty
	if err := json.Unmarshal([]byte(o.Royalties), &royalties); err != nil {
		return offers.Offer{}, err
	}

	var feeConfig offers.FeeConfig
	if err := json.Unmarshal([]byte(o.Fees), &feeConfig); err != nil {
		return offers.Offer{}, err
	}

	offer := offers.Offer{
		ID:           o.Sequence,
		Address:      types.Address(o.Address),
		Kind:         types.OfferKind(o.Kind),
		Root:         types.Address(o.RootAddress),
		Item:         types.Address(o.Item),
		Seller:       types.Address(o.Seller),
		Price:        o.Price,
		Royalties:    royalties,
		Fees:         feeConfig,
		State:        offers.State(o.State),
		NextBidValue: o.NextBidValue,
		StartTime:    o.StartTime.Time,
		EndTime:      o.EndTime.Time,
		ClosedAt:     o.ClosedAt.Time,
	}

	if o.CurrentBidder.Valid {
		offer.CurrentBid = offers.Bid{
			Bidder: types.Address(o.CurrentBidder.String),
			Value:  o.CurrentBid.Decimal,
		}
	}

	return offer, nil
}

func (o *Offer) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"address":        o.Address,
		"id":             o.Sequence,
		"kind":           o.Kind,
		"root":           o.RootAddress,
		"item":           o.Item,
		"seller":         o.Seller,
		"price":          o.Price,
		"state":          o.State,
		"current_bidder": o.CurrentBidder,
		"current_bid":    o.CurrentBid,
		"next_bid_value": o.NextBidValue,
		"start_time":     o.StartTime,
		"end_time":       o.EndTime,
		"closed_at":      o.ClosedAt,
		"created_at":     o.CreatedAt,
		"updated_at":     o.UpdatedAt,
	}
}
