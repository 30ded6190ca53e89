package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/nftex/controllers/helpers"
	"github.com/zsmartex/nftex/market"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/types"
)

// rootCommand checks what can be checked without the engine and enqueues the setter. The
// engine repeats the owner check against its live configuration.
func rootCommand(c *fiber.Ctx, params interface{}, auctionOnly bool, build func(command *market.Command)) error {
	kind, ok := kindParam(c)
	if !ok {
		return invalidKind(c)
	}
	if auctionOnly && kind != types.KindAuction {
		return engineError(c, fmt.Errorf("%s root has no auction settings: %w", kind, offers.ErrInvalidState))
	}

	if info, found := deps.Cache.Root(kind); found && info.Owner != GetCurrentCaller(c) {
		return engineError(c, offers.ErrUnauthorized)
	}

	if errs := parseBody(c, params); errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	command := market.Command{Kind: kind}
	build(&command)

	return enqueue(c, command)
}

func SetDeploymentFee(c *fiber.Ctx) error {
	params := new(helpers.AmountParams)

	return rootCommand(c, params, false, func(command *market.Command) {
		command.Action = types.ActionSetDeploymentFee
		command.Value = helpers.Amount(params.Value)
	})
}

func SetCreationPrice(c *fiber.Ctx) error {
	params := new(helpers.AmountParams)

	return rootCommand(c, params, false, func(command *market.Command) {
		command.Action = types.ActionSetCreationPrice
		command.Value = helpers.Amount(params.Value)
	})
}

func SetMarketFee(c *fiber.Ctx) error {
	params := new(helpers.MarketFeeParams)

	return rootCommand(c, params, false, func(command *market.Command) {
		command.Action = types.ActionSetMarketFee
		command.MarketFee = params.MarketFee()
	})
}

func ChangeWithdrawalAddress(c *fiber.Ctx) error {
	params := new(helpers.AddressParams)

	return rootCommand(c, params, false, func(command *market.Command) {
		command.Action = types.ActionChangeWithdrawalAddress
		command.Target = types.Address(params.Address)
	})
}

func ChangeOwner(c *fiber.Ctx) error {
	params := new(helpers.AddressParams)

	return rootCommand(c, params, false, func(command *market.Command) {
		command.Action = types.ActionChangeOwner
		command.Target = types.Address(params.Address)
	})
}

func ChangeExtraSecondsAmount(c *fiber.Ctx) error {
	params := new(helpers.SecondsParams)

	return rootCommand(c, params, true, func(command *market.Command) {
		command.Action = types.ActionChangeExtraSecondsAmount
		command.Seconds = params.Seconds
	})
}

func ChangeBidDelta(c *fiber.Ctx) error {
	params := new(helpers.AmountParams)

	return rootCommand(c, params, true, func(command *market.Command) {
		command.Action = types.ActionChangeBidDelta
		command.Value = helpers.Amount(params.Value)
	})
}
