package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zsmartex/nftex/controllers"
	"github.com/zsmartex/nftex/routes/middlewares"
)

func SetupRouter(deps controllers.Deps) *fiber.App {
	controllers.Setup(deps)

	app := fiber.New()

	public := app.Group("/api/v2/public")
	public.Get("/timestamp", controllers.GetTimestamp)
	public.Get("/roots/:kind", controllers.GetRoot)
	public.Get("/roots/:kind/auction_settings", controllers.GetAuctionSettings)
	public.Get("/roots/:kind/code", controllers.GetOfferCode)
	public.Get("/roots/:kind/payload", controllers.GetPayload)
	public.Get("/roots/:kind/offers/:id/address", controllers.GetOfferAddress)
	public.Get("/offers/:address", controllers.GetOffer)
	public.Get("/offers/:address/fees", controllers.GetOfferFees)
	public.Get("/offers/:address/auction", controllers.GetOfferAuction)
	public.Get("/events/:address", controllers.GetEvents)

	market := app.Group("/api/v2/market", middlewares.Authenticate)
	market.Post("/items", controllers.CreateItem)
	market.Post("/offers", controllers.CreateOffer)
	market.Post("/offers/:address/transfer", controllers.TransferOffer)
	market.Post("/offers/:address/cancel", controllers.CancelOffer)
	market.Post("/offers/:address/finish", controllers.FinishOffer)

	admin := app.Group("/api/v2/admin", middlewares.Authenticate, middlewares.AdminValidator)
	admin.Put("/roots/:kind/deployment_fee", controllers.SetDeploymentFee)
	admin.Put("/roots/:kind/market_fee", controllers.SetMarketFee)
	admin.Put("/roots/:kind/creation_price", controllers.SetCreationPrice)
	admin.Put("/roots/:kind/withdrawal_address", controllers.ChangeWithdrawalAddress)
	admin.Put("/roots/:kind/owner", controllers.ChangeOwner)
	admin.Put("/roots/:kind/extra_seconds_amount", controllers.ChangeExtraSecondsAmount)
	admin.Put("/roots/:kind/bid_delta", controllers.ChangeBidDelta)

	return app
}
