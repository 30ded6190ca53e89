package controllers

import (
	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/mq_client"
	"github.com/zsmartex/nftex/services/info_cache"
	"github.com/zsmartex/nftex/types"
)

type EventReader interface {
	Events(address types.Address, name events.Name, limit int, orderBy types.OrderBy) ([]events.Event, error)
}

// Deps is what the handlers read from. The API process never hosts offers: reads come from
// the info cache and the event store, writes become commands for the engine process.
type Deps struct {
	Roots           *config.RootsConfig
	Cache           *info_cache.InfoCache
	Events          EventReader
	Commands        mq_client.Conn
	CommandsSubject string
	Clock           types.Clock
}

var deps Deps

func Setup(d Deps) {
	if d.Clock == nil {
		d.Clock = types.SystemClock{}
	}

	deps = d
}

func rootConfig(kind types.OfferKind) (config.RootConfig, bool) {
	switch kind {
	case types.KindSell:
		return deps.Roots.Sell, true
	case types.KindAuction:
		return deps.Roots.Auction, true
	default:
		return config.RootConfig{}, false
	}
}
