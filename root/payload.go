package root

import (
	"fmt"
	"math"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/types"
)

// Payload is what a seller attaches to the manager hand-off that deploys an offer.
type Payload struct {
	_        struct{} `cbor:",toarray"`
	Kind     string
	Price    string
	Duration uint64
}

func EncodePayload(kind types.OfferKind, price decimal.Decimal, duration time.Duration) ([]byte, error) {
	return types.DeterministicEncoding().Marshal(Payload{
		Kind:     string(kind),
		Price:    price.String(),
		Duration: uint64(duration / time.Second),
	})
}

func DecodePayload(data []byte) (Payload, error) {
	var payload Payload
	if err := cbor.Unmarshal(data, &payload); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}

	return payload, nil
}

func (p Payload) PriceValue() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Price)
}

// MaxAuctionDuration is the longest auction, in seconds, that still fits a time.Duration.
const MaxAuctionDuration = uint64(math.MaxInt64 / int64(time.Second))

func (p Payload) AuctionDuration() time.Duration {
	return time.Duration(p.Duration) * time.Second
}

type offerCode struct {
	_        struct{} `cbor:",toarray"`
	Kind     string
	Revision uint32
}

const codeRevision = 1

func buildCode(kind types.OfferKind) []byte {
	code, err := types.DeterministicEncoding().Marshal(offerCode{Kind: string(kind), Revision: codeRevision})
	if err != nil {
		panic(err)
	}

	return code
}

// OfferCode returns the code every offer of kind is deployed with.
func OfferCode(kind types.OfferKind) []byte {
	return buildCode(kind)
}

// OfferAddressOf derives an offer address from the deploying root alone, for processes that do
// not host the root.
func OfferAddressOf(root types.Address, kind types.OfferKind, id uint64) types.Address {
	return types.DeriveAddress(root, id, types.Hash(buildCode(kind)))
}

// PayloadFor is GeneratePayload without a root: sell payloads never carry a duration.
func PayloadFor(kind types.OfferKind, price decimal.Decimal, duration time.Duration) ([]byte, error) {
	if kind == types.KindSell {
		duration = 0
	}

	return EncodePayload(kind, price, duration)
}
