// Package events describes what roots and offers emit and keeps a queryable log of it.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/zsmartex/nftex/types"
)

type Name string

const (
	Deployed  Name = "Deployed"
	Rejected  Name = "Rejected"
	Confirmed Name = "Confirmed"
	Cancelled Name = "Cancelled"
	BidPlaced Name = "BidPlaced"
	Finished  Name = "Finished"
	Expired   Name = "Expired"

	DeploymentFeeChanged      Name = "DeploymentFeeChanged"
	MarketFeeChanged          Name = "MarketFeeChanged"
	CreationPriceChanged      Name = "CreationPriceChanged"
	WithdrawalAddressChanged  Name = "WithdrawalAddressChanged"
	OwnerChanged              Name = "OwnerChanged"
	ExtraSecondsAmountChanged Name = "ExtraSecondsAmountChanged"
	BidDeltaChanged           Name = "BidDeltaChanged"
)

// Event is emitted by Address. Offer is set whenever the event concerns a single offer.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Name      Name              `json:"name"`
	Address   types.Address     `json:"address"`
	Offer     types.Address     `json:"offer,omitempty"`
	Kind      types.OfferKind   `json:"kind,omitempty"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"created_at"`
}

func New(name Name, address types.Address, data map[string]string, at time.Time) Event {
	if data == nil {
		data = map[string]string{}
	}

	return Event{
		ID:        uuid.New(),
		Name:      name,
		Address:   address,
		Data:      data,
		CreatedAt: at,
	}
}

// At returns a copy of e emitted by address, used when a root mirrors an offer event.
func (e Event) At(address types.Address) Event {
	mirrored := e
	mirrored.ID = uuid.New()
	mirrored.Address = address
	mirrored.Data = make(map[string]string, len(e.Data))
	for k, v := range e.Data {
		mirrored.Data[k] = v
	}

	return mirrored
}

func (e Event) Terminal() bool {
	switch e.Name {
	case Confirmed, Cancelled, Finished, Expired:
		return true
	default:
		return false
	}
}
