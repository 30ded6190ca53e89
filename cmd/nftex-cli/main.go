package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/market"
	"github.com/zsmartex/nftex/mq_client"
	"github.com/zsmartex/nftex/root"
	"github.com/zsmartex/nftex/types"
)

func kindFlag() cli.Flag {
	return &cli.StringFlag{Name: "kind", Usage: "sell or auction", Required: true}
}

func parseKind(c *cli.Context) (types.OfferKind, error) {
	kind := types.OfferKind(c.String("kind"))
	if kind != types.KindSell && kind != types.KindAuction {
		return "", fmt.Errorf("unknown offer kind %q", kind)
	}

	return kind, nil
}

func rootAddress(c *cli.Context, kind types.OfferKind) (types.Address, error) {
	if address := c.String("root"); address != "" {
		return types.Address(address), nil
	}

	if err := config.LoadRootsConfig(c.String("roots")); err != nil {
		return "", err
	}
	if kind == types.KindSell {
		return types.Address(config.Roots.Sell.Address), nil
	}

	return types.Address(config.Roots.Auction.Address), nil
}

func amount(c *cli.Context, name string) (decimal.Decimal, error) {
	value := c.String(name)
	if value == "" {
		return decimal.Zero, nil
	}

	return types.NanoFromString(value)
}

func payloadAction(c *cli.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}

	price, err := amount(c, "price")
	if err != nil {
		return err
	}

	payload, err := root.PayloadFor(kind, price, time.Duration(c.Uint64("duration"))*time.Second)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, hex.EncodeToString(payload))
	return nil
}

func addressAction(c *cli.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}

	address, err := rootAddress(c, kind)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, root.OfferAddressOf(address, kind, c.Uint64("id")))
	return nil
}

func codeHashAction(c *cli.Context) error {
	kind, err := parseKind(c)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, hex.EncodeToString(types.Hash(root.OfferCode(kind))))
	return nil
}

// commandFrom builds the command described by the send flags.
func commandFrom(c *cli.Context) (market.Command, error) {
	price, err := amount(c, "price")
	if err != nil {
		return market.Command{}, err
	}
	value, err := amount(c, "value")
	if err != nil {
		return market.Command{}, err
	}

	command := market.Command{
		ID:       uuid.NewString(),
		Action:   c.String("action"),
		Kind:     types.OfferKind(c.String("kind")),
		Caller:   types.Address(c.String("caller")),
		Offer:    types.Address(c.String("offer")),
		Item:     types.Address(c.String("item")),
		Target:   types.Address(c.String("target")),
		Price:    price,
		Value:    value,
		Duration: c.Uint64("duration"),
		Seconds:  c.Uint64("seconds"),
		JSON:     c.String("json"),
	}

	if !command.Caller.Valid() {
		return market.Command{}, fmt.Errorf("caller %q is not a valid address", command.Caller)
	}

	return command, nil
}

func sendAction(c *cli.Context) error {
	command, err := commandFrom(c)
	if err != nil {
		return err
	}

	if err := config.LoadEnv(); err != nil {
		return err
	}
	if err := mq_client.LoadConfig(c.String("mq")); err != nil {
		return err
	}
	if err := config.ConnectNats(); err != nil {
		return err
	}
	defer config.Nats.Close()

	if err := mq_client.Enqueue(config.Nats, mq_client.GetSubject("commands"), command.Bytes()); err != nil {
		return err
	}
	if err := config.Nats.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, command.ID)
	return nil
}

func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "nftex-cli",
		Usage:  "offer payloads, addresses and engine commands",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "payload",
				Usage: "encode the payload attached to a listing",
				Flags: []cli.Flag{
					kindFlag(),
					&cli.StringFlag{Name: "price", Required: true},
					&cli.Uint64Flag{Name: "duration", Usage: "auction duration in seconds"},
				},
				Action: payloadAction,
			},
			{
				Name:  "address",
				Usage: "derive the address of offer id",
				Flags: []cli.Flag{
					kindFlag(),
					&cli.Uint64Flag{Name: "id", Required: true},
					&cli.StringFlag{Name: "root", Usage: "root address, read from --roots when empty"},
					&cli.StringFlag{Name: "roots", Value: config.RootsConfigPath()},
				},
				Action: addressAction,
			},
			{
				Name:   "code-hash",
				Usage:  "print the code hash offers of kind are deployed with",
				Flags:  []cli.Flag{kindFlag()},
				Action: codeHashAction,
			},
			{
				Name:  "send",
				Usage: "publish a command for the engine",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "action", Required: true},
					&cli.StringFlag{Name: "caller", Required: true},
					&cli.StringFlag{Name: "kind"},
					&cli.StringFlag{Name: "offer"},
					&cli.StringFlag{Name: "item"},
					&cli.StringFlag{Name: "target"},
					&cli.StringFlag{Name: "price"},
					&cli.StringFlag{Name: "value"},
					&cli.Uint64Flag{Name: "duration"},
					&cli.Uint64Flag{Name: "seconds"},
					&cli.StringFlag{Name: "json"},
					&cli.StringFlag{Name: "mq", Value: mq_client.ConfigPath()},
				},
				Action: sendAction,
			},
		},
	}
}

func main() {
	if err := NewApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
