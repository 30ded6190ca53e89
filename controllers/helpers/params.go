package helpers

import (
	"time"

	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/types"
)

func positive(value string) bool {
	amount, err := decimal.NewFromString(value)

	return err == nil && amount.IsPositive()
}

func nonNegative(value string) bool {
	amount, err := decimal.NewFromString(value)

	return err == nil && !amount.IsNegative()
}

func ValidKind(kind string) bool {
	return types.OfferKind(kind) == types.KindSell || types.OfferKind(kind) == types.KindAuction
}

// Amount parses a value that already passed validation.
func Amount(value string) decimal.Decimal {
	amount, _ := decimal.NewFromString(value)

	return types.Nano(amount)
}

func invalidMessages(scope string) validate.MS {
	invalid_message := scope + ".invalid_{field}"

	return validate.MS{
		"required":     scope + ".missing_{field}",
		"ValidAmount":  invalid_message,
		"ValidValue":   invalid_message,
		"ValidPrice":   scope + ".non_positive_price",
		"ValidKind":    invalid_message,
		"ValidAddress": invalid_message,
		"uint":         invalid_message,
		"max":          invalid_message,
		"in":           invalid_message,
	}
}

type PayloadQuery struct {
	Price    string `query:"price" validate:"required|ValidPrice"`
	Duration uint64 `query:"duration"`
}

func (p PayloadQuery) Messages() map[string]string {
	return invalidMessages("public.payload")
}

func (p PayloadQuery) ValidPrice(price string) bool {
	return positive(price)
}

type EventsQuery struct {
	Name    string        `query:"name"`
	Limit   int           `query:"limit" validate:"uint|max:1000"`
	OrderBy types.OrderBy `query:"order_by" validate:"in:asc,desc"`
}

func (p EventsQuery) Messages() map[string]string {
	return invalidMessages("public.events")
}

type MintParams struct {
	JSON      string         `json:"json" form:"json" validate:"required"`
	Royalties []fees.Royalty `json:"royalties" form:"royalties"`
}

func (p MintParams) Messages() map[string]string {
	return invalidMessages("market.item")
}

type ListParams struct {
	Kind     string `json:"kind" form:"kind" validate:"required|ValidKind"`
	Item     string `json:"item" form:"item" validate:"required|ValidAddress"`
	Price    string `json:"price" form:"price" validate:"required|ValidPrice"`
	Duration uint64 `json:"duration" form:"duration"`
	Value    string `json:"value" form:"value" validate:"required|ValidValue"`
}

func (p ListParams) Messages() map[string]string {
	return invalidMessages("market.offer")
}

func (p ListParams) ValidKind(kind string) bool {
	return ValidKind(kind)
}

func (p ListParams) ValidAddress(address string) bool {
	return types.Address(address).Valid()
}

func (p ListParams) ValidPrice(price string) bool {
	return positive(price)
}

func (p ListParams) ValidValue(value string) bool {
	return positive(value)
}

// CheckDuration runs after Validate: zero fields are never handed to validators.
func (p ListParams) CheckDuration(err_src *Errors) {
	if types.OfferKind(p.Kind) == types.KindAuction && p.Duration == 0 {
		err_src.Errors = append(err_src.Errors, "market.offer.invalid_duration")
	}
}

func Seconds(seconds uint64) time.Duration {
	return time.Duration(seconds) * time.Second
}

// ValueParams carries the value attached to transfer and cancel.
type ValueParams struct {
	Value string `json:"value" form:"value" validate:"required|ValidValue"`
}

func (p ValueParams) Messages() map[string]string {
	return invalidMessages("market.offer")
}

func (p ValueParams) ValidValue(value string) bool {
	return positive(value)
}

type AmountParams struct {
	Value string `json:"value" form:"value" validate:"required|ValidAmount"`
}

func (p AmountParams) Messages() map[string]string {
	return invalidMessages("admin.root")
}

func (p AmountParams) ValidAmount(value string) bool {
	return nonNegative(value)
}

type MarketFeeParams struct {
	Value    uint32 `json:"value" form:"value"`
	Decimals uint8  `json:"decimals" form:"decimals"`
}

func (p MarketFeeParams) MarketFee() fees.MarketFee {
	return fees.MarketFee{Value: p.Value, Decimals: p.Decimals}
}

type AddressParams struct {
	Address string `json:"address" form:"address" validate:"required|ValidAddress"`
}

func (p AddressParams) Messages() map[string]string {
	return invalidMessages("admin.root")
}

func (p AddressParams) ValidAddress(address string) bool {
	return types.Address(address).Valid()
}

type SecondsParams struct {
	Seconds uint64 `json:"seconds" form:"seconds"`
}
