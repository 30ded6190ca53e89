package types

import (
	"encoding/hex"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

// Precision is the number of fractional digits kept for every amount.
const Precision int32 = 9

type Address string

const ZeroAddress Address = "0:0000000000000000000000000000000000000000000000000000000000000000"

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// Valid reports whether a is a workchain-prefixed 32 byte hex address.
func (a Address) Valid() bool {
	parts := strings.SplitN(string(a), ":", 2)
	if len(parts) != 2 || len(parts[1]) != 64 {
		return false
	}

	_, err := hex.DecodeString(parts[1])
	return err == nil
}

func AddressFromHash(hash []byte) Address {
	return Address("0:" + hex.EncodeToString(hash))
}

type addressPreimage struct {
	_        struct{} `cbor:",toarray"`
	Root     string
	ID       uint64
	CodeHash []byte
}

var detEncoding cbor.EncMode

func init() {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	detEncoding = mode
}

// DeterministicEncoding is the canonical CBOR mode used for payloads and address preimages.
func DeterministicEncoding() cbor.EncMode {
	return detEncoding
}

// DeriveAddress computes the address of the offer with sequence id deployed by root from the
// template identified by codeHash.
func DeriveAddress(root Address, id uint64, codeHash []byte) Address {
	preimage, err := detEncoding.Marshal(addressPreimage{
		Root:     string(root),
		ID:       id,
		CodeHash: codeHash,
	})
	if err != nil {
		panic(err)
	}

	sum := sha3.Sum256(preimage)
	return AddressFromHash(sum[:])
}

func Hash(data []byte) []byte {
	sum := sha3.Sum256(data)
	return sum[:]
}

// Nano rounds an amount down to Precision digits.
func Nano(amount decimal.Decimal) decimal.Decimal {
	return amount.Truncate(Precision)
}

func NanoFromString(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return Nano(amount), nil
}

type OfferKind string

var (
	KindSell    OfferKind = "sell"
	KindAuction OfferKind = "auction"
)

type PayloadAction = string

var (
	ActionMint                     PayloadAction = "mint"
	ActionDeposit                  PayloadAction = "deposit"
	ActionDeploy                   PayloadAction = "deploy"
	ActionTransfer                 PayloadAction = "transfer"
	ActionCancel                   PayloadAction = "cancel"
	ActionFinish                   PayloadAction = "finish"
	ActionSetDeploymentFee         PayloadAction = "set_deployment_fee"
	ActionSetMarketFee             PayloadAction = "set_market_fee"
	ActionSetCreationPrice         PayloadAction = "set_creation_price"
	ActionChangeWithdrawalAddress  PayloadAction = "change_withdrawal_address"
	ActionChangeOwner              PayloadAction = "change_owner"
	ActionChangeExtraSecondsAmount PayloadAction = "change_extra_seconds_amount"
	ActionChangeBidDelta           PayloadAction = "change_bid_delta"
)

type OrderBy = string

var (
	OrderByAsc  OrderBy = "asc"
	OrderByDesc OrderBy = "desc"
)
