package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/controllers/helpers"
	"github.com/zsmartex/nftex/market"
	"github.com/zsmartex/nftex/mq_client"
	"github.com/zsmartex/nftex/types"
)

// GetCurrentCaller returns the address the authentication middleware stored for this request.
func GetCurrentCaller(c *fiber.Ctx) types.Address {
	caller, _ := c.Locals("CurrentCaller").(types.Address)

	return caller
}

// enqueue hands command to the engine process. The outcome is observable through the events.
func enqueue(c *fiber.Ctx, command market.Command) error {
	command.ID = uuid.NewString()
	command.Caller = GetCurrentCaller(c)

	if err := mq_client.Enqueue(deps.Commands, deps.CommandsSubject, command.Bytes()); err != nil {
		config.Logger.Errorf("Failed to enqueue command %s %s, Error: %v", command.ID, command.Action, err)

		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{helpers.ServerInternalError},
		})
	}

	return c.Status(202).JSON(fiber.Map{
		"id":     command.ID,
		"action": command.Action,
	})
}

func parseBody(c *fiber.Ctx, payload interface{}) *helpers.Errors {
	errs := new(helpers.Errors)

	if err := c.BodyParser(payload); err != nil {
		errs.Errors = append(errs.Errors, helpers.ServerInvalidBody)
		return errs
	}

	helpers.Validate(payload, errs)

	return errs
}

func CreateItem(c *fiber.Ctx) error {
	params := new(helpers.MintParams)
	if errs := parseBody(c, params); errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	return enqueue(c, market.Command{
		Action:    types.ActionMint,
		JSON:      params.JSON,
		Royalties: params.Royalties,
	})
}

func CreateOffer(c *fiber.Ctx) error {
	params := new(helpers.ListParams)
	errs := parseBody(c, params)
	params.CheckDuration(errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	return enqueue(c, market.Command{
		Action:   types.ActionDeploy,
		Kind:     types.OfferKind(params.Kind),
		Item:     types.Address(params.Item),
		Price:    helpers.Amount(params.Price),
		Duration: params.Duration,
		Value:    helpers.Amount(params.Value),
	})
}

func offerCommand(c *fiber.Ctx, action types.PayloadAction, withValue bool) error {
	address := types.Address(c.Params("address"))
	if _, found := deps.Cache.Offer(address); !found {
		return notFound(c)
	}

	command := market.Command{Action: action, Offer: address}
	if withValue {
		params := new(helpers.ValueParams)
		if errs := parseBody(c, params); errs.Size() > 0 {
			return c.Status(422).JSON(errs)
		}
		command.Value = helpers.Amount(params.Value)
	}

	return enqueue(c, command)
}

func TransferOffer(c *fiber.Ctx) error {
	return offerCommand(c, types.ActionTransfer, true)
}

func CancelOffer(c *fiber.Ctx) error {
	return offerCommand(c, types.ActionCancel, true)
}

func FinishOffer(c *fiber.Ctx) error {
	return offerCommand(c, types.ActionFinish, false)
}
