package offers

import (
	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/types"
)

type Message interface {
	Sender() types.Address
	Attached() decimal.Decimal
}

// Transfer is a plain value transfer: a payment for a sell offer, a bid for an auction.
type Transfer struct {
	From  types.Address
	Value decimal.Decimal
}

func (m Transfer) Sender() types.Address     { return m.From }
func (m Transfer) Attached() decimal.Decimal { return m.Value }

type CancelOrder struct {
	Caller types.Address
	Value  decimal.Decimal
}

func (m CancelOrder) Sender() types.Address     { return m.Caller }
func (m CancelOrder) Attached() decimal.Decimal { return m.Value }

type FinishAuction struct {
	Caller types.Address
}

func (m FinishAuction) Sender() types.Address     { return m.Caller }
func (m FinishAuction) Attached() decimal.Decimal { return decimal.Zero }
