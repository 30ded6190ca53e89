package config

import (
	"os"

	"github.com/nats-io/nats.go"
)

var Nats *nats.Conn

func ConnectNats() error {
	options := []nats.Option{nats.Name("nftex")}
	if len(os.Getenv("NATS_USER")) > 0 {
		options = append(options, nats.UserInfo(os.Getenv("NATS_USER"), os.Getenv("NATS_PASS")))
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}

	n, err := nats.Connect(url, options...)
	if err != nil {
		return err
	}

	Nats = n
	return nil
}
