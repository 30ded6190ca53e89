// Package root deploys offers and owns the fee configuration they are created with.
package root

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/nft"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/types"
)

type Deps struct {
	Ledger    offers.Ledger
	Items     offers.Items
	Publisher events.Publisher
	Clock     types.Clock
	// OnDeploy sees every offer engine the root starts, deployed or restored.
	OnDeploy func(engine *offers.Engine)
	OnUpdate func(offer offers.Offer)
}

type Listing struct {
	ID      uint64        `json:"id"`
	Address types.Address `json:"address"`
}

type AuctionSettings struct {
	BidDelta           decimal.Decimal `json:"bid_delta"`
	ExtraSecondsAmount uint64          `json:"extra_seconds_amount"`
}

// DeployRequest is a manager hand-off to the root together with its payload.
type DeployRequest struct {
	Item      types.Address
	Seller    types.Address
	Value     decimal.Decimal
	Payload   []byte
	Royalties []fees.Royalty
}

// Offer ids start at 1 and are never handed out twice.
const firstOfferID uint64 = 1

type Root struct {
	mutex     sync.RWMutex
	Address   types.Address
	Kind      types.OfferKind
	owner     types.Address
	config    offers.FeeConfig
	code      []byte
	codeHash  []byte
	sequence  uint64
	engines   *treemap.Map
	byAddress map[types.Address]*offers.Engine
	deps      Deps
}

func New(address types.Address, kind types.OfferKind, owner types.Address, feeConfig offers.FeeConfig, deps Deps) (*Root, error) {
	if kind != types.KindSell && kind != types.KindAuction {
		return nil, fmt.Errorf("unknown offer kind %q: %w", kind, offers.ErrConfigValidation)
	}
	if !owner.Valid() {
		return nil, fmt.Errorf("owner %q: %w", owner, offers.ErrConfigValidation)
	}
	if err := feeConfig.Validate(kind); err != nil {
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = types.SystemClock{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Fanout{}
	}

	code := buildCode(kind)
	feeConfig.Version = 1

	return &Root{
		Address:   address,
		Kind:      kind,
		owner:     owner,
		config:    feeConfig,
		code:      code,
		codeHash:  types.Hash(code),
		sequence:  firstOfferID,
		engines:   treemap.NewWith(utils.UInt64Comparator),
		byAddress: make(map[types.Address]*offers.Engine),
		deps:      deps,
	}, nil
}

func (r *Root) GeneratePayload(price decimal.Decimal, duration time.Duration) ([]byte, error) {
	return PayloadFor(r.Kind, price, duration)
}

func (r *Root) OfferCode() []byte {
	return append([]byte(nil), r.code...)
}

func (r *Root) OfferCodeHash() []byte {
	return append([]byte(nil), r.codeHash...)
}

// OfferAddress derives the address of offer id without looking anything up.
func (r *Root) OfferAddress(id uint64) types.Address {
	return types.DeriveAddress(r.Address, id, r.codeHash)
}

func (r *Root) OnManagerChanged(ctx context.Context, change nft.ManagerChanged) error {
	_, err := r.Deploy(ctx, DeployRequest{
		Item:      change.Item.Address,
		Seller:    change.OldManager,
		Value:     change.Value,
		Payload:   change.Payload,
		Royalties: change.Item.Royalties,
	})

	return err
}

// Deploy starts a new offer for the item the root has just been made manager of. A rejected
// request hands the item and the attached value back to the seller.
func (r *Root) Deploy(ctx context.Context, req DeployRequest) (*offers.Engine, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	feeConfig := r.config

	payload, err := DecodePayload(req.Payload)
	if err != nil {
		return nil, r.reject(ctx, req, "invalid_payload", fmt.Errorf("%v: %w", err, offers.ErrConfigValidation))
	}
	if payload.Kind != string(r.Kind) {
		return nil, r.reject(ctx, req, "wrong_offer_kind", fmt.Errorf("%s payload sent to %s root: %w", payload.Kind, r.Kind, offers.ErrConfigValidation))
	}

	price, err := payload.PriceValue()
	if err != nil || !price.IsPositive() || !types.Nano(price).Equal(price) {
		return nil, r.reject(ctx, req, "invalid_price", fmt.Errorf("price %q: %w", payload.Price, offers.ErrConfigValidation))
	}
	if r.Kind == types.KindAuction && payload.Duration == 0 {
		return nil, r.reject(ctx, req, "invalid_duration", fmt.Errorf("auction duration is zero: %w", offers.ErrConfigValidation))
	}
	if payload.Duration > MaxAuctionDuration {
		return nil, r.reject(ctx, req, "invalid_duration", fmt.Errorf("auction duration %ds is above %ds: %w", payload.Duration, MaxAuctionDuration, offers.ErrConfigValidation))
	}
	if req.Value.LessThan(feeConfig.DeploymentFee) {
		return nil, r.reject(ctx, req, "insufficient_deployment_fee", fmt.Errorf("deployment needs %s, got %s: %w", feeConfig.DeploymentFee, req.Value, offers.ErrInsufficientValue))
	}
	if err := fees.Validate(feeConfig.MarketFee, req.Royalties); err != nil {
		return nil, r.reject(ctx, req, "fees_exceed_price", fmt.Errorf("%v: %w", err, offers.ErrConfigValidation))
	}

	id := r.sequence
	address := r.OfferAddress(id)
	now := r.deps.Clock.Now()

	var offer offers.Offer
	if r.Kind == types.KindAuction {
		offer = offers.NewAuction(id, address, r.Address, req.Item, req.Seller, price, req.Royalties, feeConfig, now, payload.AuctionDuration())
	} else {
		offer = offers.NewSell(id, address, r.Address, req.Item, req.Seller, price, req.Royalties, feeConfig)
	}

	if err := r.deps.Items.ChangeManager(ctx, req.Item, r.Address, address, req.Seller, decimal.Zero); err != nil {
		return nil, r.reject(ctx, req, "hand_off_failure", err)
	}

	moves := []move{
		{to: feeConfig.WithdrawalAddress, amount: feeConfig.CreationPrice, memo: "creation price"},
		{to: address, amount: feeConfig.Reserve(), memo: "reserve"},
		{to: req.Seller, amount: req.Value.Sub(feeConfig.DeploymentFee), memo: "change"},
	}
	for i, m := range moves {
		if err := r.deps.Ledger.Transfer(r.Address, m.to, m.amount, m.memo); err != nil {
			r.revert(ctx, req, address, moves[:i])
			return nil, r.reject(ctx, req, "ledger_failure", err)
		}
	}

	r.sequence++
	engine := r.register(offer)

	data := map[string]string{
		"id":     fmt.Sprint(id),
		"offer":  address.String(),
		"item":   req.Item.String(),
		"price":  price.String(),
		"seller": req.Seller.String(),
	}
	if r.Kind == types.KindAuction {
		data["auction_start_time"] = fmt.Sprint(offer.StartTime.Unix())
		data["auction_end_time"] = fmt.Sprint(offer.EndTime.Unix())
	}
	event := events.New(events.Deployed, r.Address, data, now)
	event.Offer = address
	event.Kind = r.Kind
	r.deps.Publisher.Publish(event)

	config.Logger.Infof("[nftex.root] %s deployed %s offer #%d at %s for %s", r.Address, r.Kind, id, address, req.Item)

	return engine, nil
}

type move struct {
	to     types.Address
	amount decimal.Decimal
	memo   string
}

// revert undoes the ledger moves and the item hand-off of a deployment that could not finish.
func (r *Root) revert(ctx context.Context, req DeployRequest, offer types.Address, done []move) {
	for _, m := range done {
		if err := r.deps.Ledger.Transfer(m.to, r.Address, m.amount, "revert "+m.memo); err != nil {
			config.Logger.Errorf("[nftex.root] %s failed to revert %s of %s from %s: %v", r.Address, m.memo, m.amount, m.to, err)
		}
	}

	if err := r.deps.Items.ChangeManager(ctx, req.Item, offer, r.Address, req.Seller, decimal.Zero); err != nil {
		config.Logger.Errorf("[nftex.root] %s failed to take %s back from %s: %v", r.Address, req.Item, offer, err)
	}
}

func (r *Root) reject(ctx context.Context, req DeployRequest, reason string, cause error) error {
	if req.Value.IsPositive() {
		if err := r.deps.Ledger.Transfer(r.Address, req.Seller, req.Value, "refund"); err != nil {
			config.Logger.Errorf("[nftex.root] %s failed to refund %s to %s: %v", r.Address, req.Value, req.Seller, err)
		}
	}

	if err := r.deps.Items.ChangeManager(ctx, req.Item, r.Address, req.Seller, req.Seller, decimal.Zero); err != nil {
		config.Logger.Errorf("[nftex.root] %s failed to return %s to %s: %v", r.Address, req.Item, req.Seller, err)
	}

	event := events.New(events.Rejected, r.Address, map[string]string{
		"item":   req.Item.String(),
		"seller": req.Seller.String(),
		"reason": reason,
	}, r.deps.Clock.Now())
	event.Kind = r.Kind
	r.deps.Publisher.Publish(event)

	config.Logger.Infof("[nftex.root] %s rejected %s from %s: %v", r.Address, req.Item, req.Seller, cause)

	return fmt.Errorf("deploy rejected (%s): %w", reason, cause)
}

func (r *Root) register(offer offers.Offer) *offers.Engine {
	engine := offers.NewEngine(offer, offers.Deps{
		Ledger:    r.deps.Ledger,
		Items:     r.deps.Items,
		Publisher: r.deps.Publisher,
		Clock:     r.deps.Clock,
		OnUpdate:  r.deps.OnUpdate,
	})

	r.engines.Put(offer.ID, engine)
	r.byAddress[offer.Address] = engine

	engine.Start()
	if r.deps.OnDeploy != nil {
		r.deps.OnDeploy(engine)
	}

	return engine
}

// Restore brings back an offer loaded from storage. Terminal offers are indexed but not started.
func (r *Root) Restore(offer offers.Offer) (*offers.Engine, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if offer.Root != r.Address || offer.Kind != r.Kind {
		return nil, fmt.Errorf("offer %s does not belong to %s root %s: %w", offer.Address, r.Kind, r.Address, offers.ErrInvalidState)
	}
	if offer.Address != r.OfferAddress(offer.ID) {
		return nil, fmt.Errorf("offer %s is not at the address derived for #%d: %w", offer.Address, offer.ID, offers.ErrInvalidState)
	}
	if _, found := r.engines.Get(offer.ID); found {
		return nil, fmt.Errorf("offer #%d already loaded: %w", offer.ID, offers.ErrInvalidState)
	}

	if offer.ID >= r.sequence {
		r.sequence = offer.ID + 1
	}

	return r.register(offer), nil
}

// State is the part of a root that has to survive a restart.
type State struct {
	Owner  types.Address
	Fees   offers.FeeConfig
	NextID uint64
}

// Resume replaces the owner and fee configuration with stored ones and moves the id sequence
// forward to NextID. The sequence never moves back. An empty owner and fees with version 0 were
// never stored and leave the current values in place.
func (r *Root) Resume(state State) error {
	if state.Owner != "" && !state.Owner.Valid() {
		return fmt.Errorf("owner %q: %w", state.Owner, offers.ErrConfigValidation)
	}
	if state.Fees.Version > 0 {
		if err := state.Fees.Validate(r.Kind); err != nil {
			return err
		}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if state.Owner != "" {
		r.owner = state.Owner
	}
	if state.Fees.Version > 0 {
		r.config = state.Fees
	}
	if state.NextID > r.sequence {
		r.sequence = state.NextID
	}

	config.Logger.Infof("[nftex.root] %s resumed at config version %d, next offer #%d", r.Address, r.config.Version, r.sequence)

	return nil
}

// NextID is the id the next deployed offer will get.
func (r *Root) NextID() uint64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.sequence
}

func (r *Root) Offer(address types.Address) (*offers.Engine, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	engine, found := r.byAddress[address]
	return engine, found
}

func (r *Root) OfferByID(id uint64) (*offers.Engine, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	value, found := r.engines.Get(id)
	if !found {
		return nil, false
	}

	return value.(*offers.Engine), true
}

// Offers lists every offer this root deployed, ordered by id.
func (r *Root) Offers() []Listing {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	listings := make([]Listing, 0, r.engines.Size())
	it := r.engines.Iterator()
	for it.Next() {
		listings = append(listings, Listing{
			ID:      it.Key().(uint64),
			Address: it.Value().(*offers.Engine).Address(),
		})
	}

	return listings
}

// Stop halts every running offer engine.
func (r *Root) Stop() {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, value := range r.engines.Values() {
		value.(*offers.Engine).Stop()
	}
}
