package daemons

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/google/uuid"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/market"
	"github.com/zsmartex/nftex/mq_client"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/types"
)

type OfferSource interface {
	ActiveOffers() ([]offers.Offer, error)
}

type deadline struct {
	end     time.Time
	address types.Address
}

func byDeadline(a, b interface{}) int {
	x, y := a.(deadline), b.(deadline)

	switch {
	case x.end.Before(y.end):
		return -1
	case x.end.After(y.end):
		return 1
	case x.address < y.address:
		return -1
	case x.address > y.address:
		return 1
	default:
		return 0
	}
}

// AuctionFinisher asks the engine to finish auctions whose end time has passed. It is an
// ordinary caller of FinishAuction; offers never expire on their own.
type AuctionFinisher struct {
	mutex   sync.Mutex
	source  OfferSource
	conn    mq_client.Conn
	subject string
	caller  types.Address
	clock   types.Clock

	deadlines *redblacktree.Tree
	requested map[types.Address]bool
}

func NewAuctionFinisher(source OfferSource, conn mq_client.Conn, subject string, caller types.Address, clock types.Clock) *AuctionFinisher {
	if clock == nil {
		clock = types.SystemClock{}
	}

	return &AuctionFinisher{
		source:    source,
		conn:      conn,
		subject:   subject,
		caller:    caller,
		clock:     clock,
		deadlines: redblacktree.NewWith(byDeadline),
		requested: make(map[types.Address]bool),
	}
}

// reload replaces the deadline index with the active auctions of source. Requests for offers
// that are no longer active are forgotten.
func (f *AuctionFinisher) reload() error {
	active, err := f.source.ActiveOffers()
	if err != nil {
		return err
	}

	f.deadlines.Clear()
	seen := make(map[types.Address]bool, len(active))
	for _, offer := range active {
		if offer.Kind != types.KindAuction || offer.State != offers.StateActive {
			continue
		}
		seen[offer.Address] = true
		f.deadlines.Put(deadline{end: offer.EndTime, address: offer.Address}, offer)
	}

	for address := range f.requested {
		if !seen[address] {
			delete(f.requested, address)
		}
	}

	return nil
}

// Due lists the indexed auctions that have ended, earliest first.
func (f *AuctionFinisher) Due() []types.Address {
	now := f.clock.Now()

	var due []types.Address
	it := f.deadlines.Iterator()
	for it.Next() {
		key := it.Key().(deadline)
		if now.Before(key.end) {
			break
		}
		due = append(due, key.address)
	}

	return due
}

func (f *AuctionFinisher) Process() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.reload(); err != nil {
		config.Logger.Errorf("[nftex.finisher] failed to load active offers: %v", err)
		return
	}

	for _, address := range f.Due() {
		if f.requested[address] {
			continue
		}

		command := market.Command{
			ID:     uuid.NewString(),
			Action: types.ActionFinish,
			Caller: f.caller,
			Offer:  address,
		}
		if err := mq_client.Enqueue(f.conn, f.subject, command.Bytes()); err != nil {
			config.Logger.Errorf("[nftex.finisher] failed to request finish of %s: %v", address, err)
			continue
		}

		f.requested[address] = true
		config.Logger.Infof("[nftex.finisher] finish of %s requested", address)
	}
}
