package controllers

import (
	"encoding/hex"

	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/nftex/controllers/helpers"
	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/root"
	"github.com/zsmartex/nftex/types"
)

func GetTimestamp(c *fiber.Ctx) error {
	return c.Status(200).JSON(deps.Clock.Now())
}

func kindParam(c *fiber.Ctx) (types.OfferKind, bool) {
	kind := c.Params("kind")

	return types.OfferKind(kind), helpers.ValidKind(kind)
}

func invalidKind(c *fiber.Ctx) error {
	return c.Status(422).JSON(helpers.Errors{
		Errors: []string{"public.root.invalid_kind"},
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(404).JSON(helpers.Errors{
		Errors: []string{helpers.RecordNotFound},
	})
}

func engineError(c *fiber.Ctx, err error) error {
	status, key := helpers.ErrorStatus(err)

	return c.Status(status).JSON(helpers.Errors{
		Errors: []string{key},
	})
}

func GetRoot(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return invalidKind(c)
	}

	info, found := deps.Cache.Root(kind)
	if !found {
		return notFound(c)
	}

	return c.Status(200).JSON(info)
}

func GetAuctionSettings(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return invalidKind(c)
	}
	if kind != types.KindAuction {
		return engineError(c, offers.ErrInvalidState)
	}

	info, found := deps.Cache.Root(kind)
	if !found {
		return notFound(c)
	}

	return c.Status(200).JSON(root.AuctionSettings{
		BidDelta:           info.Fees.BidDelta,
		ExtraSecondsAmount: info.Fees.ExtraSecondsAmount,
	})
}

func GetOfferCode(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return invalidKind(c)
	}

	code := root.OfferCode(kind)

	return c.Status(200).JSON(fiber.Map{
		"code":      hex.EncodeToString(code),
		"code_hash": hex.EncodeToString(types.Hash(code)),
	})
}

func GetOfferAddress(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return invalidKind(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{helpers.ServerInvalidQuery},
		})
	}

	rc, _ := rootConfig(kind)

	return c.Status(200).JSON(fiber.Map{
		"id":      id,
		"address": root.OfferAddressOf(types.Address(rc.Address), kind, uint64(id)),
	})
}

func GetPayload(c *fiber.Ctx) error {
	var errs = new(helpers.Errors)

	kind, ok := kindParam(c)
	if !ok {
		return invalidKind(c)
	}

	params := new(helpers.PayloadQuery)
	if err := c.QueryParser(params); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{helpers.ServerInvalidQuery},
		})
	}

	helpers.Validate(params, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	payload, err := root.PayloadFor(kind, helpers.Amount(params.Price), helpers.Seconds(params.Duration))
	if err != nil {
		return engineError(c, err)
	}

	return c.Status(200).JSON(fiber.Map{
		"payload": hex.EncodeToString(payload),
	})
}

func offerParam(c *fiber.Ctx) (offers.Offer, bool) {
	return deps.Cache.Offer(types.Address(c.Params("address")))
}

func GetOffer(c *fiber.Ctx) error {
	offer, found := offerParam(c)
	if !found {
		return notFound(c)
	}

	return c.Status(200).JSON(offer)
}

func GetOfferFees(c *fiber.Ctx) error {
	offer, found := offerParam(c)
	if !found {
		return notFound(c)
	}

	return c.Status(200).JSON(offer.FeesValues())
}

func GetOfferAuction(c *fiber.Ctx) error {
	offer, found := offerParam(c)
	if !found {
		return notFound(c)
	}

	info, err := offer.AuctionInfo()
	if err != nil {
		return engineError(c, err)
	}

	return c.Status(200).JSON(info)
}

func GetEvents(c *fiber.Ctx) error {
	var errs = new(helpers.Errors)

	params := new(helpers.EventsQuery)
	if err := c.QueryParser(params); err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{helpers.ServerInvalidQuery},
		})
	}

	helpers.Validate(params, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	if params.Limit == 0 {
		params.Limit = 100
	}

	list, err := deps.Events.Events(types.Address(c.Params("address")), events.Name(params.Name), params.Limit, params.OrderBy)
	if err != nil {
		return engineError(c, err)
	}

	return c.Status(200).JSON(list)
}
