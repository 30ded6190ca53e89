package offers

import (
	"io/ioutil"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	yaml "gopkg.in/yaml.v2"

	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/types"
)

type suiteReducerTester struct {
	suite.Suite
}

type AuctionScenario struct {
	Name         string   `yaml:"name"`
	Price        string   `yaml:"price"`
	BidDelta     string   `yaml:"bid_delta"`
	Duration     int64    `yaml:"duration"`
	ExtraSeconds uint64   `yaml:"extra_seconds"`
	Steps        []string `yaml:"steps"`
	Refunds      []string `yaml:"refunds"`
	State        string   `yaml:"state"`
	CurrentBid   string   `yaml:"current_bid"`
	NextBidValue string   `yaml:"next_bid_value"`
	EndTime      int64    `yaml:"end_time"`
}

func splitFields(line string) []string {
	var result []string
	for _, field := range strings.Split(line, ",") {
		result = append(result, strings.TrimSpace(field))
	}

	return result
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errorIs(err, ErrInsufficientValue):
		return "insufficient_value"
	case errorIs(err, ErrInvalidState):
		return "invalid_state"
	case errorIs(err, ErrNotExpired):
		return "not_expired"
	case errorIs(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return err.Error()
	}
}

func isRefund(memo string) bool {
	return memo == "refund" || memo == "outbid" || memo == "bounce"
}

func (scenario *AuctionScenario) Test(s *suiteReducerTester) {
	s.T().Run(scenario.Name, func(t *testing.T) {
		config := testFees()
		config.BidDelta = d(scenario.BidDelta)
		config.ExtraSecondsAmount = scenario.ExtraSeconds

		offer := testAuction(scenario.Price, config, time.Duration(scenario.Duration)*time.Second)

		var refunds []string
		for _, step := range scenario.Steps {
			fields := splitFields(step)
			second, _ := strconv.ParseInt(fields[0], 10, 64)
			now := epoch.Add(time.Duration(second) * time.Second)
			sender := types.Address(fields[2])

			var msg Message
			switch fields[1] {
			case "bid":
				msg = Transfer{From: sender, Value: d(fields[3])}
			case "finish":
				msg = FinishAuction{Caller: sender}
			}

			next, effects, err := Reduce(offer, msg, now)
			s.Equal(fields[4], outcome(err), step)
			if err != nil {
				s.Equal(offer, next, "rejected message changed the offer: %s", step)
			}

			for _, effect := range effects {
				if pay, ok := effect.(Pay); ok && isRefund(pay.Memo) {
					refunds = append(refunds, pay.To.String()+", "+pay.Amount.String())
				}
			}

			offer = next
		}

		s.Equal(scenario.Refunds, refunds)
		s.Equal(State(scenario.State), offer.State)
		s.True(d(scenario.NextBidValue).Equal(offer.NextBidValue), "next bid value %s", offer.NextBidValue)
		s.Equal(epoch.Add(time.Duration(scenario.EndTime)*time.Second), offer.EndTime)

		if scenario.CurrentBid == "" {
			s.False(offer.HasBid())
		} else {
			fields := splitFields(scenario.CurrentBid)
			s.Equal(types.Address(fields[0]), offer.CurrentBid.Bidder)
			s.True(d(fields[1]).Equal(offer.CurrentBid.Value))
		}
	})
}

func (s *suiteReducerTester) TestAuctionScenarios() {
	buf, err := ioutil.ReadFile("testdata/auction_scenarios.yml")
	s.Require().NoError(err)

	var scenarios []*AuctionScenario
	s.Require().NoError(yaml.Unmarshal(buf, &scenarios))
	s.Require().NotEmpty(scenarios)

	for _, scenario := range scenarios {
		scenario.Test(s)
	}
}

func (s *suiteReducerTester) TestSellSettlement() {
	offer := testSell("1")

	next, effects, err := Reduce(offer, Transfer{From: buyer, Value: d("2")}, epoch)
	s.Require().NoError(err)
	s.Equal(StateConfirmed, next.State)
	s.Equal(epoch, next.ClosedAt)

	s.Equal(HandOver{To: buyer, Ownership: true}, effects[0])

	paid := map[string]decimal.Decimal{}
	var emitted []Emit
	destroyed := false
	for _, effect := range effects {
		switch effect := effect.(type) {
		case Pay:
			paid[effect.Memo+":"+effect.To.String()] = effect.Amount
		case Emit:
			emitted = append(emitted, effect)
		case Destroy:
			destroyed = true
		}
	}

	s.Equal("0.85", paid["sale:"+seller.String()].String())
	s.Equal("0.05", paid["market fee:"+withdrawal.String()].String())
	s.Equal("0.1", paid["royalty:"+types.ZeroAddress.String()].String())
	s.Equal("1", paid["change:"+buyer.String()].String())
	s.True(destroyed)

	s.Require().Len(emitted, 1)
	s.Equal(events.Confirmed, emitted[0].Name)
	s.True(emitted[0].Mirror)
	s.Equal(buyer.String(), emitted[0].Data["buyer"])
	s.Equal("1", emitted[0].Data["price"])
}

func (s *suiteReducerTester) TestSellExactPaymentHasNoChange() {
	_, effects, err := Reduce(testSell("1"), Transfer{From: buyer, Value: d("1")}, epoch)
	s.Require().NoError(err)

	for _, effect := range effects {
		if pay, ok := effect.(Pay); ok {
			s.NotEqual("change", pay.Memo)
		}
	}
}

func (s *suiteReducerTester) TestSellUnderpayment() {
	offer := testSell("1")

	next, effects, err := Reduce(offer, Transfer{From: buyer, Value: d("0.5")}, epoch)
	s.ErrorIs(err, ErrInsufficientValue)
	s.Equal(offer, next)
	s.Equal([]Effect{Pay{To: buyer, Amount: d("0.5"), Memo: "refund"}}, effects)
}

func (s *suiteReducerTester) TestSellCancel() {
	offer := testSell("1")

	_, effects, err := Reduce(offer, CancelOrder{Caller: buyer, Value: d("0.1")}, epoch)
	s.ErrorIs(err, ErrUnauthorized)
	s.Equal([]Effect{Pay{To: buyer, Amount: d("0.1"), Memo: "refund"}}, effects)

	_, _, err = Reduce(offer, CancelOrder{Caller: seller, Value: d("0.05")}, epoch)
	s.ErrorIs(err, ErrInsufficientValue)

	next, effects, err := Reduce(offer, CancelOrder{Caller: seller, Value: d("0.1")}, epoch)
	s.Require().NoError(err)
	s.Equal(StateCancelled, next.State)
	s.Equal(HandOver{To: seller}, effects[0])
	s.Equal(events.Cancelled, effects[1].(Emit).Name)
	s.Equal(Destroy{}, effects[2])

	_, effects, err = Reduce(next, Transfer{From: buyer, Value: d("1")}, epoch)
	s.ErrorIs(err, ErrInvalidState)
	s.Equal([]Effect{Pay{To: buyer, Amount: d("1"), Memo: "bounce"}}, effects)

	_, _, err = Reduce(next, CancelOrder{Caller: seller}, epoch)
	s.ErrorIs(err, ErrInvalidState)
}

func (s *suiteReducerTester) TestSellRejectsFinish() {
	_, _, err := Reduce(testSell("1"), FinishAuction{Caller: seller}, epoch)
	s.ErrorIs(err, ErrInvalidState)
}

func (s *suiteReducerTester) TestAuctionRejectsCancel() {
	offer := testAuction("1", testFees(), 10*time.Second)

	_, effects, err := Reduce(offer, CancelOrder{Caller: seller, Value: d("0.1")}, epoch)
	s.ErrorIs(err, ErrInvalidState)
	s.Len(effects, 1)
}

func (s *suiteReducerTester) TestAuctionFinishSettlesWithWinner() {
	offer := testAuction("1", testFees(), 10*time.Second)

	offer, _, err := Reduce(offer, Transfer{From: buyer, Value: d("1.21")}, epoch)
	s.Require().NoError(err)

	offer, effects, err := Reduce(offer, FinishAuction{Caller: seller}, epoch.Add(10*time.Second))
	s.Require().NoError(err)
	s.Equal(StateFinished, offer.State)

	total := decimal.Zero
	for _, effect := range effects {
		if pay, ok := effect.(Pay); ok {
			total = total.Add(pay.Amount)
			s.NotEqual("change", pay.Memo)
		}
	}
	s.True(d("1.21").Equal(total), "escrow fully disbursed, got %s", total)
	s.Equal(HandOver{To: buyer, Ownership: true}, effects[0])
}

func (s *suiteReducerTester) TestFeeTotalNeverExceedsPrice() {
	for _, price := range []string{"0.000000001", "0.000000011", "1", "3.333333333", "1000000"} {
		breakdown := testSell(price).FeesValues()

		sum := breakdown.MarketFeeValue
		for _, royalty := range breakdown.RoyaltyValues {
			sum = sum.Add(royalty.Value)
		}

		s.True(sum.Equal(breakdown.TotalFeeValue), price)
		s.True(breakdown.TotalFeeValue.LessThanOrEqual(d(price)), price)
	}
}

func TestReducer(t *testing.T) {
	suite.Run(t, new(suiteReducerTester))
}
