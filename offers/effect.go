package offers

import (
	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/types"
)

type Effect interface {
	effect()
}

// Pay sends Amount out of the offer balance.
type Pay struct {
	To     types.Address
	Amount decimal.Decimal
	Memo   string
}

// HandOver releases the manager capability. With Ownership the item itself changes hands.
type HandOver struct {
	To        types.Address
	Ownership bool
}

// Emit publishes an event from the offer, and from its root as well when Mirror is set.
type Emit struct {
	Name   events.Name
	Data   map[string]string
	Mirror bool
}

// Destroy drains the reserve and stops the offer.
type Destroy struct{}

func (Pay) effect()      {}
func (HandOver) effect() {}
func (Emit) effect()     {}
func (Destroy) effect()  {}

func refund(m Message, memo string) []Effect {
	if !m.Attached().IsPositive() {
		return nil
	}

	return []Effect{Pay{To: m.Sender(), Amount: m.Attached(), Memo: memo}}
}
