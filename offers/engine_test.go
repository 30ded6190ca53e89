package offers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/ledger"
	"github.com/zsmartex/nftex/nft"
	"github.com/zsmartex/nftex/types"
)

type EngineTestSuite struct {
	suite.Suite
	ctx        context.Context
	clock      *types.ManualClock
	ledger     *ledger.Ledger
	collection *nft.Collection
	log        *events.Log
	item       nft.Item
	updates    []Offer
	mutex      sync.Mutex
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = types.NewManualClock(epoch)
	s.ledger = ledger.New()
	s.collection = nft.NewCollection("0:c0", s.ledger)
	s.log = events.NewLog()
	s.updates = nil

	item, err := s.collection.Mint(seller, "{}", testRoyalties())
	s.Require().NoError(err)
	s.item = item

	s.Require().NoError(s.collection.ChangeManager(s.ctx, item.Address, seller, offerAddress, seller, decimal.Zero))
	s.Require().NoError(s.ledger.Deposit(offerAddress, testFees().Reserve()))
	s.Require().NoError(s.ledger.Deposit(buyer, d("3")))
}

type brokenItems struct {
	*nft.Collection
}

func (brokenItems) Transfer(_ context.Context, item, _, _, _ types.Address, _ decimal.Decimal, _ ...nft.Callback) error {
	return fmt.Errorf("%s: %w", item, nft.ErrItemNotFound)
}

func (brokenItems) ChangeManager(_ context.Context, item, _, _, _ types.Address, _ decimal.Decimal, _ ...nft.Callback) error {
	return fmt.Errorf("%s: %w", item, nft.ErrItemNotFound)
}

func (s *EngineTestSuite) start(offer Offer) *Engine {
	return s.startWith(offer, s.collection)
}

func (s *EngineTestSuite) startWith(offer Offer, items Items) *Engine {
	offer.Item = s.item.Address

	engine := NewEngine(offer, Deps{
		Ledger:    s.ledger,
		Items:     items,
		Publisher: s.log,
		Clock:     s.clock,
		OnUpdate: func(offer Offer) {
			s.mutex.Lock()
			defer s.mutex.Unlock()
			s.updates = append(s.updates, offer)
		},
	})
	engine.Start()

	return engine
}

func (s *EngineTestSuite) balance(address types.Address) string {
	return s.ledger.Balance(address).String()
}

func (s *EngineTestSuite) TestSellPurchase() {
	engine := s.start(testSell("1"))

	s.Require().NoError(engine.Call(s.ctx, Transfer{From: buyer, Value: d("2")}))
	<-engine.Done()

	item, _ := s.collection.Get(s.item.Address)
	s.Equal(buyer, item.Owner)
	s.Equal(buyer, item.Manager)

	// 0.85 net, 0.2 transfer gas returned, 0.25 of the reserve left after the market keeps 0.05.
	s.Equal("1.3", s.balance(seller))
	s.Equal("0.1", s.balance(withdrawal))
	s.Equal("0.1", s.balance(types.ZeroAddress))
	s.Equal("2", s.balance(buyer))
	s.Equal("0", s.balance(offerAddress))
	s.True(s.ledger.IsClosed(offerAddress))

	confirmed, found := s.log.LastEvent(offerAddress, events.Confirmed)
	s.True(found)
	s.Equal(buyer.String(), confirmed.Data["buyer"])

	mirrored, found := s.log.LastEvent(rootAddress, events.Confirmed)
	s.True(found)
	s.Equal(offerAddress, mirrored.Offer)

	s.Equal(StateConfirmed, engine.Offer().State)

	err := engine.Call(s.ctx, Transfer{From: buyer, Value: d("1")})
	s.ErrorIs(err, ErrInvalidState)
	s.Equal("2", s.balance(buyer))

	s.ErrorIs(engine.Send(CancelOrder{Caller: seller}), ErrInvalidState)
}

func (s *EngineTestSuite) TestFailedHandOverKeepsOfferActive() {
	engine := s.startWith(testSell("1"), brokenItems{s.collection})
	defer engine.Stop()

	err := engine.Call(s.ctx, Transfer{From: buyer, Value: d("2")})
	s.ErrorIs(err, ErrInvalidState)

	s.Equal(StateActive, engine.Offer().State)
	s.Equal("3", s.balance(buyer))
	s.Equal("0", s.balance(seller))
	s.Equal("0", s.balance(withdrawal))
	s.Equal("0", s.balance(types.ZeroAddress))
	s.Equal("0.5", s.balance(offerAddress))
	s.False(s.ledger.IsClosed(offerAddress))

	item, _ := s.collection.Get(s.item.Address)
	s.Equal(offerAddress, item.Manager)
	s.Equal(seller, item.Owner)

	_, found := s.log.LastEvent(offerAddress, events.Confirmed)
	s.False(found)
	s.Empty(s.updates)

	s.Require().NoError(s.ledger.Deposit(seller, d("1")))
	s.ErrorIs(engine.Call(s.ctx, CancelOrder{Caller: seller, Value: d("0.1")}), ErrInvalidState)
	s.Equal("1", s.balance(seller))
	s.Equal(StateActive, engine.Offer().State)
}

func (s *EngineTestSuite) TestHandOverGasIsCappedBySpareBalance() {
	s.Require().NoError(s.ledger.Transfer(offerAddress, withdrawal, testFees().Reserve(), "drain"))

	offer := testSell("1")
	offer.Fees.NftTransferFee = d("1.1")
	engine := s.start(offer)

	s.Require().NoError(engine.Call(s.ctx, Transfer{From: buyer, Value: d("1")}))
	<-engine.Done()

	item, _ := s.collection.Get(s.item.Address)
	s.Equal(buyer, item.Owner)

	s.Equal("0.85", s.balance(seller))
	s.Equal("0.55", s.balance(withdrawal))
	s.Equal("0.1", s.balance(types.ZeroAddress))
	s.Equal("2", s.balance(buyer))
}

func (s *EngineTestSuite) TestSellUnderpaymentIsRefunded() {
	engine := s.start(testSell("1"))
	defer engine.Stop()

	err := engine.Call(s.ctx, Transfer{From: buyer, Value: d("0.5")})
	s.ErrorIs(err, ErrInsufficientValue)

	s.Equal("3", s.balance(buyer))
	s.Equal("0.5", s.balance(offerAddress))
	s.Equal(StateActive, engine.Offer().State)

	item, _ := s.collection.Get(s.item.Address)
	s.Equal(offerAddress, item.Manager)
}

func (s *EngineTestSuite) TestUnfundedSenderCannotAttachValue() {
	engine := s.start(testSell("1"))
	defer engine.Stop()

	err := engine.Call(s.ctx, Transfer{From: "0:dead", Value: d("1")})
	s.ErrorIs(err, ErrInsufficientValue)
	s.Equal(StateActive, engine.Offer().State)
}

func (s *EngineTestSuite) TestSellCancel() {
	s.Require().NoError(s.ledger.Deposit(seller, d("1")))
	engine := s.start(testSell("1"))

	s.ErrorIs(engine.Call(s.ctx, CancelOrder{Caller: buyer, Value: d("0.1")}), ErrUnauthorized)
	s.Equal("3", s.balance(buyer))

	s.Require().NoError(engine.Call(s.ctx, CancelOrder{Caller: seller, Value: d("0.1")}))
	<-engine.Done()

	item, _ := s.collection.Get(s.item.Address)
	s.Equal(seller, item.Owner)
	s.Equal(seller, item.Manager)

	// 1 - 0.1 call fee + 0.1 gas + 0.45 left of the reserve once the market keeps 0.05
	s.Equal("1.45", s.balance(seller))
	s.Equal("0.05", s.balance(withdrawal))

	_, found := s.log.LastEvent(rootAddress, events.Cancelled)
	s.True(found)
}

func (s *EngineTestSuite) TestAuctionLifecycle() {
	bidder := types.Address("0:b100000000000000000000000000000000000000000000000000000000000000")
	s.Require().NoError(s.ledger.Deposit(bidder, d("5")))

	engine := s.start(testAuction("1", testFees(), 20*time.Second))

	s.Require().NoError(engine.Call(s.ctx, Transfer{From: bidder, Value: d("1")}))
	s.Equal("4", s.balance(bidder))

	s.clock.Advance(time.Second)
	s.ErrorIs(engine.Call(s.ctx, Transfer{From: buyer, Value: d("1.09")}), ErrInsufficientValue)
	s.Equal("3", s.balance(buyer))

	s.Require().NoError(engine.Call(s.ctx, Transfer{From: buyer, Value: d("1.1")}))
	s.Equal("5", s.balance(bidder))
	s.Equal("1.9", s.balance(buyer))

	info, err := engine.Offer().AuctionInfo()
	s.Require().NoError(err)
	s.Equal(buyer, info.CurrentBid.Bidder)
	s.Equal("1.21", info.NextBidValue.String())

	s.ErrorIs(engine.Call(s.ctx, FinishAuction{Caller: bidder}), ErrNotExpired)

	s.clock.Advance(19 * time.Second)
	s.Require().NoError(engine.Call(s.ctx, FinishAuction{Caller: bidder}))
	<-engine.Done()

	item, _ := s.collection.Get(s.item.Address)
	s.Equal(buyer, item.Owner)

	// 1.1 - 0.055 market - 0.11 royalty = 0.935, plus 0.2 gas and 0.25 reserve
	s.Equal("1.385", s.balance(seller))
	s.Equal("0.105", s.balance(withdrawal))
	s.Equal("0.11", s.balance(types.ZeroAddress))

	finished, found := s.log.LastEvent(rootAddress, events.Finished)
	s.True(found)
	s.Equal(buyer.String(), finished.Data["winner"])
	s.Equal("1.1", finished.Data["final_value"])
	s.Len(s.log.Events(offerAddress, events.BidPlaced), 2)
}

func (s *EngineTestSuite) TestAuctionExpiry() {
	engine := s.start(testAuction("1", testFees(), 2*time.Second))

	s.clock.Advance(2 * time.Second)
	s.Require().NoError(engine.Call(s.ctx, FinishAuction{Caller: buyer}))
	<-engine.Done()

	item, _ := s.collection.Get(s.item.Address)
	s.Equal(seller, item.Owner)
	s.Equal(seller, item.Manager)
	s.Equal("3", s.balance(buyer))

	_, found := s.log.LastEvent(rootAddress, events.Expired)
	s.True(found)
	s.ErrorIs(engine.Call(s.ctx, FinishAuction{Caller: buyer}), ErrInvalidState)
}

func (s *EngineTestSuite) TestConcurrentBidsKeepEscrowConsistent() {
	engine := s.start(testAuction("1", testFees(), time.Hour))
	defer engine.Stop()

	bidders := make([]types.Address, 20)
	for i := range bidders {
		bidders[i] = types.Address(fmt.Sprintf("0:%064x", i+1))
		s.Require().NoError(s.ledger.Deposit(bidders[i], d("100")))
	}

	var wg sync.WaitGroup
	for i, bidder := range bidders {
		wg.Add(1)
		go func(i int, bidder types.Address) {
			defer wg.Done()
			engine.Call(s.ctx, Transfer{From: bidder, Value: decimal.NewFromInt(int64(i + 1))})
		}(i, bidder)
	}
	wg.Wait()

	offer := engine.Offer()
	s.True(offer.HasBid())

	for _, bidder := range bidders {
		if bidder == offer.CurrentBid.Bidder {
			s.True(d("100").Sub(offer.CurrentBid.Value).Equal(s.ledger.Balance(bidder)))
		} else {
			s.Equal("100", s.balance(bidder))
		}
	}

	s.True(testFees().Reserve().Add(offer.CurrentBid.Value).Equal(s.ledger.Balance(offerAddress)))
}

func (s *EngineTestSuite) TestCallHonoursContext() {
	engine := s.start(testSell("1"))
	defer engine.Stop()

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	err := engine.Call(ctx, Transfer{From: buyer, Value: d("0.1")})
	s.True(errors.Is(err, context.Canceled) || errors.Is(err, ErrInsufficientValue), "unexpected %v", err)
}

func (s *EngineTestSuite) TestStopBouncesLaterMessages() {
	engine := s.start(testSell("1"))
	engine.Stop()
	<-engine.Done()

	s.ErrorIs(engine.Send(Transfer{From: buyer, Value: d("1")}), ErrInvalidState)
	s.Equal("3", s.balance(buyer))
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
