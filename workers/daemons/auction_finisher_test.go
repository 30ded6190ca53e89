package daemons

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/zsmartex/nftex/market"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/types"
)

const (
	rootAddress types.Address = "0:7000000000000000000000000000000000000000000000000000000000000000"
	seller      types.Address = "0:5e00000000000000000000000000000000000000000000000000000000000000"
	finisher    types.Address = "0:f100000000000000000000000000000000000000000000000000000000000000"
)

var epoch = time.Unix(1_700_000_000, 0).UTC()

type offerSource struct {
	offers []offers.Offer
	err    error
}

func (s *offerSource) ActiveOffers() ([]offers.Offer, error) {
	return s.offers, s.err
}

type captureConn struct {
	commands []market.Command
	err      error
}

func (c *captureConn) Publish(_ string, data []byte) error {
	if c.err != nil {
		return c.err
	}

	command, err := market.DecodeCommand(data)
	if err != nil {
		return err
	}
	c.commands = append(c.commands, command)

	return nil
}

func auction(suffix string, duration time.Duration) offers.Offer {
	address := types.Address("0:0f000000000000000000000000000000000000000000000000000000000000" + suffix)

	return offers.NewAuction(0, address, rootAddress, "0:11", seller, decimal.NewFromInt(1), nil, offers.FeeConfig{BidDelta: decimal.NewFromInt(10)}, epoch, duration)
}

type AuctionFinisherTestSuite struct {
	suite.Suite
	clock    *types.ManualClock
	source   *offerSource
	conn     *captureConn
	finisher *AuctionFinisher
}

func (s *AuctionFinisherTestSuite) SetupTest() {
	s.clock = types.NewManualClock(epoch)
	s.source = &offerSource{}
	s.conn = &captureConn{}
	s.finisher = NewAuctionFinisher(s.source, s.conn, "nftex.commands", finisher, s.clock)
}

func (s *AuctionFinisherTestSuite) finished() []types.Address {
	var list []types.Address
	for _, command := range s.conn.commands {
		s.Equal(types.ActionFinish, command.Action)
		s.Equal(finisher, command.Caller)
		list = append(list, command.Offer)
	}

	return list
}

func (s *AuctionFinisherTestSuite) TestRequestsExpiredAuctionsInDeadlineOrder() {
	late := auction("01", time.Minute)
	early := auction("02", 10*time.Second)
	open := auction("03", time.Hour)
	sell := offers.NewSell(0, "0:0f00000000000000000000000000000000000000000000000000000000000004", rootAddress, "0:12", seller, decimal.NewFromInt(1), nil, offers.FeeConfig{})
	s.source.offers = []offers.Offer{late, open, early, sell}

	s.finisher.Process()
	s.Empty(s.conn.commands)

	s.clock.Advance(time.Minute)
	s.finisher.Process()
	s.Equal([]types.Address{early.Address, late.Address}, s.finished())

	// already requested, still active in the store
	s.finisher.Process()
	s.Len(s.conn.commands, 2)
}

func (s *AuctionFinisherTestSuite) TestRequestsAgainAfterOfferReturns() {
	offer := auction("01", time.Second)
	s.source.offers = []offers.Offer{offer}
	s.clock.Advance(time.Second)

	s.finisher.Process()
	s.source.offers = nil
	s.finisher.Process()
	s.source.offers = []offers.Offer{offer}
	s.finisher.Process()

	s.Equal([]types.Address{offer.Address, offer.Address}, s.finished())
}

func (s *AuctionFinisherTestSuite) TestFailures() {
	s.source.err = errors.New("database down")
	s.finisher.Process()
	s.Empty(s.conn.commands)

	s.source.err = nil
	s.source.offers = []offers.Offer{auction("01", time.Second)}
	s.clock.Advance(time.Second)
	s.conn.err = errors.New("nats down")
	s.finisher.Process()
	s.Empty(s.conn.commands)

	s.conn.err = nil
	s.finisher.Process()
	s.Len(s.conn.commands, 1)
}

func (s *AuctionFinisherTestSuite) TestDue() {
	s.source.offers = []offers.Offer{auction("01", 5*time.Second)}
	s.finisher.Process()

	s.Empty(s.finisher.Due())
	s.clock.Advance(5 * time.Second)
	s.Len(s.finisher.Due(), 1)
}

func TestAuctionFinisher(t *testing.T) {
	suite.Run(t, new(AuctionFinisherTestSuite))
}
