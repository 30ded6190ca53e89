package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/models"
	"github.com/zsmartex/nftex/mq_client"
	"github.com/zsmartex/nftex/types"
	"github.com/zsmartex/nftex/workers/daemons"
)

func CreateWorker(id string) daemons.Worker {
	switch id {
	case "auction_finisher":
		caller := types.Address(os.Getenv("FINISHER_ADDRESS"))
		if !caller.Valid() {
			caller = types.ZeroAddress
		}

		finisher := daemons.NewAuctionFinisher(
			models.NewRepository(config.DataBase),
			config.Nats,
			mq_client.GetSubject("commands"),
			caller,
			types.SystemClock{},
		)

		return daemons.NewCronJob(time.Second, finisher)
	default:
		return nil
	}
}

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	if err := mq_client.LoadConfig(mq_client.ConfigPath()); err != nil {
		fmt.Println(err.Error())
		return
	}

	var workers []daemons.Worker
	for _, id := range os.Args[1:] {
		worker := CreateWorker(id)
		if worker == nil {
			config.Logger.Errorf("Unknown daemon: %s", id)
			continue
		}

		fmt.Println("Start nftex-daemon: " + id)
		worker.Start()
		workers = append(workers, worker)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	for _, worker := range workers {
		worker.Stop()
	}
}
