package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/types"
)

// Command is the message producers put on the commands subject. Fields unused by Action stay empty.
type Command struct {
	ID        string              `json:"id"`
	Action    types.PayloadAction `json:"action"`
	Kind      types.OfferKind     `json:"kind,omitempty"`
	Caller    types.Address       `json:"caller"`
	Offer     types.Address       `json:"offer,omitempty"`
	Item      types.Address       `json:"item,omitempty"`
	Target    types.Address       `json:"target,omitempty"`
	Price     decimal.Decimal     `json:"price"`
	Value     decimal.Decimal     `json:"value"`
	Duration  uint64              `json:"duration,omitempty"`
	Seconds   uint64              `json:"seconds,omitempty"`
	MarketFee fees.MarketFee      `json:"market_fee"`
	JSON      string              `json:"json,omitempty"`
	Royalties []fees.Royalty      `json:"royalties,omitempty"`
}

func (c Command) Bytes() []byte {
	data, _ := json.Marshal(c)

	return data
}

func DecodeCommand(data []byte) (Command, error) {
	var command Command
	if err := json.Unmarshal(data, &command); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if len(command.Action) == 0 {
		return Command{}, fmt.Errorf("command %q has no action: %w", command.ID, offers.ErrConfigValidation)
	}

	return command, nil
}

// Deposit credits an account of the simulated value layer.
func (m *Market) Deposit(address types.Address, amount decimal.Decimal) error {
	return m.Ledger.Deposit(address, types.Nano(amount))
}

// Execute runs one command against the market.
func (m *Market) Execute(ctx context.Context, c Command) error {
	config.Logger.Debugf("[nftex.market] command %s %s from %s", c.ID, c.Action, c.Caller)

	switch c.Action {
	case types.ActionMint:
		item, err := m.Collection.Mint(c.Caller, c.JSON, c.Royalties)
		if err != nil {
			return err
		}
		config.Logger.Infof("[nftex.market] item %s minted for %s", item.Address, c.Caller)
		return nil
	case types.ActionDeposit:
		return m.Deposit(c.Caller, c.Value)
	case types.ActionDeploy:
		return m.List(ctx, c.Kind, c.Caller, c.Item, c.Price, time.Duration(c.Duration)*time.Second, c.Value)
	case types.ActionTransfer:
		return m.Transfer(ctx, c.Offer, c.Caller, c.Value)
	case types.ActionCancel:
		return m.Cancel(ctx, c.Offer, c.Caller, c.Value)
	case types.ActionFinish:
		return m.Finish(ctx, c.Offer, c.Caller)
	}

	r, err := m.Root(c.Kind)
	if err != nil {
		return err
	}

	switch c.Action {
	case types.ActionSetDeploymentFee:
		return r.SetDeploymentFee(c.Caller, c.Value)
	case types.ActionSetMarketFee:
		return r.SetMarketFee(c.Caller, c.MarketFee.Value, c.MarketFee.Decimals)
	case types.ActionSetCreationPrice:
		return r.SetCreationPrice(c.Caller, c.Value)
	case types.ActionChangeWithdrawalAddress:
		return r.ChangeWithdrawalAddress(c.Caller, c.Target)
	case types.ActionChangeOwner:
		return r.ChangeOwner(c.Caller, c.Target)
	case types.ActionChangeExtraSecondsAmount:
		return r.ChangeExtraSecondsAmount(c.Caller, c.Seconds)
	case types.ActionChangeBidDelta:
		return r.ChangeBidDelta(c.Caller, c.Value)
	default:
		return fmt.Errorf("unknown action %q: %w", c.Action, offers.ErrConfigValidation)
	}
}
