// Package market assembles the ledger, the item collection and both roots into one runtime.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/ledger"
	"github.com/zsmartex/nftex/nft"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/root"
	"github.com/zsmartex/nftex/types"
)

type Options struct {
	Clock types.Clock
	// Publishers receive every event after the in-memory log.
	Publishers []events.Publisher
	OnDeploy   func(engine *offers.Engine)
	OnUpdate   func(offer offers.Offer)
}

type Market struct {
	Ledger     *ledger.Ledger
	Collection *nft.Collection
	Log        *events.Log
	Sell       *root.Root
	Auction    *root.Root
	Clock      types.Clock
}

func parseAmount(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", name, value, offers.ErrConfigValidation)
	}

	return types.Nano(amount), nil
}

// FeeConfigFrom turns a root section of roots.yml into a fee configuration.
func FeeConfigFrom(c config.RootConfig) (offers.FeeConfig, error) {
	feeConfig := offers.FeeConfig{
		MarketFee:          fees.MarketFee{Value: c.MarketFee, Decimals: c.MarketFeeDecimals},
		WithdrawalAddress:  types.Address(c.WithdrawalAddress),
		ExtraSecondsAmount: c.ExtraSecondsAmount,
	}

	amounts := []struct {
		name   string
		value  string
		target *decimal.Decimal
	}{
		{"deployment_fee", c.DeploymentFee, &feeConfig.DeploymentFee},
		{"creation_price", c.CreationPrice, &feeConfig.CreationPrice},
		{"minimal_gas_amount", c.MinimalGasAmount, &feeConfig.MinimalGasAmount},
		{"nft_gas_amount", c.NftGasAmount, &feeConfig.NftGasAmount},
		{"nft_transfer_fee", c.NftTransferFee, &feeConfig.NftTransferFee},
		{"methods_calls_fee", c.MethodsCallsFee, &feeConfig.MethodsCallsFee},
		{"left_on_offer_after_finish", c.LeftOnOfferAfterFinish, &feeConfig.LeftOnOfferAfterFinish},
		{"bid_delta", c.BidDelta, &feeConfig.BidDelta},
	}
	for _, amount := range amounts {
		value, err := parseAmount(amount.name, amount.value)
		if err != nil {
			return offers.FeeConfig{}, err
		}
		*amount.target = value
	}

	return feeConfig, nil
}

func New(roots *config.RootsConfig, opts Options) (*Market, error) {
	if opts.Clock == nil {
		opts.Clock = types.SystemClock{}
	}

	m := &Market{
		Ledger: ledger.New(),
		Log:    events.NewLog(),
		Clock:  opts.Clock,
	}
	m.Collection = nft.NewCollection(types.Address(roots.Collection), m.Ledger)

	publisher := append(events.Fanout{m.Log}, opts.Publishers...)
	deps := root.Deps{
		Ledger:    m.Ledger,
		Items:     m.Collection,
		Publisher: publisher,
		Clock:     opts.Clock,
		OnDeploy:  opts.OnDeploy,
		OnUpdate:  opts.OnUpdate,
	}

	for _, section := range []struct {
		kind   types.OfferKind
		config config.RootConfig
		target **root.Root
	}{
		{types.KindSell, roots.Sell, &m.Sell},
		{types.KindAuction, roots.Auction, &m.Auction},
	} {
		feeConfig, err := FeeConfigFrom(section.config)
		if err != nil {
			return nil, fmt.Errorf("%s root: %w", section.kind, err)
		}

		r, err := root.New(types.Address(section.config.Address), section.kind, types.Address(section.config.Owner), feeConfig, deps)
		if err != nil {
			return nil, fmt.Errorf("%s root: %w", section.kind, err)
		}

		m.Collection.Bind(r.Address, r)
		*section.target = r
	}

	config.Logger.Infof("[nftex.market] sell root %s, auction root %s, collection %s", m.Sell.Address, m.Auction.Address, m.Collection.Address)

	return m, nil
}

func (m *Market) Root(kind types.OfferKind) (*root.Root, error) {
	switch kind {
	case types.KindSell:
		return m.Sell, nil
	case types.KindAuction:
		return m.Auction, nil
	default:
		return nil, fmt.Errorf("unknown offer kind %q: %w", kind, offers.ErrInvalidState)
	}
}

func (m *Market) Roots() []*root.Root {
	return []*root.Root{m.Sell, m.Auction}
}

func (m *Market) Offer(address types.Address) (*offers.Engine, error) {
	for _, r := range m.Roots() {
		if engine, found := r.Offer(address); found {
			return engine, nil
		}
	}

	return nil, fmt.Errorf("offer %s not found: %w", address, offers.ErrInvalidState)
}

// List hands item to the root of kind together with a freshly generated payload and the value
// the seller attaches for deployment.
func (m *Market) List(ctx context.Context, kind types.OfferKind, seller, item types.Address, price decimal.Decimal, duration time.Duration, value decimal.Decimal) error {
	r, err := m.Root(kind)
	if err != nil {
		return err
	}

	payload, err := r.GeneratePayload(price, duration)
	if err != nil {
		return err
	}

	return m.Collection.ChangeManager(ctx, item, seller, r.Address, seller, decimal.Zero, nft.Callback{
		Target:  r.Address,
		Value:   value,
		Payload: payload,
	})
}

// Transfer pays a sell offer or bids on an auction.
func (m *Market) Transfer(ctx context.Context, offer, from types.Address, value decimal.Decimal) error {
	engine, err := m.Offer(offer)
	if err != nil {
		return err
	}

	return engine.Call(ctx, offers.Transfer{From: from, Value: value})
}

func (m *Market) Cancel(ctx context.Context, offer, caller types.Address, value decimal.Decimal) error {
	engine, err := m.Offer(offer)
	if err != nil {
		return err
	}

	return engine.Call(ctx, offers.CancelOrder{Caller: caller, Value: value})
}

func (m *Market) Finish(ctx context.Context, offer, caller types.Address) error {
	engine, err := m.Offer(offer)
	if err != nil {
		return err
	}

	return engine.Call(ctx, offers.FinishAuction{Caller: caller})
}

type StateStore interface {
	RootState(address types.Address) (root.State, error)
}

// Resume applies the stored owner, fee configuration and offer sequence to both roots. It runs
// before Restore so settings changed through the setters survive a restart.
func (m *Market) Resume(store StateStore) error {
	for _, r := range m.Roots() {
		state, err := store.RootState(r.Address)
		if err != nil {
			return fmt.Errorf("%s root state: %w", r.Kind, err)
		}

		if err := r.Resume(state); err != nil {
			return fmt.Errorf("%s root: %w", r.Kind, err)
		}
	}

	return nil
}

// Restore reloads stored offers into their roots, like an engine reload after a restart. Items
// held by active offers are put back into the collection under the offer's management.
func (m *Market) Restore(stored []offers.Offer) error {
	for _, offer := range stored {
		r, err := m.Root(offer.Kind)
		if err != nil {
			return err
		}

		if !offer.State.Terminal() {
			err := m.Collection.Restore(nft.Item{
				Address:   offer.Item,
				Owner:     offer.Seller,
				Manager:   offer.Address,
				Royalties: offer.Royalties,
			})
			if err != nil && !errors.Is(err, nft.ErrItemExists) {
				return err
			}
		}

		if _, err := r.Restore(offer); err != nil {
			return err
		}
	}

	config.Logger.Infof("[nftex.market] %d offers reloaded", len(stored))

	return nil
}

func (m *Market) Stop() {
	for _, r := range m.Roots() {
		r.Stop()
	}
}
