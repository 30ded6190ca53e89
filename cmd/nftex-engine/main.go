package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/jobs/cron"
	"github.com/zsmartex/nftex/market"
	"github.com/zsmartex/nftex/models"
	"github.com/zsmartex/nftex/mq_client"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/services/info_cache"
	"github.com/zsmartex/nftex/services/settlement_metrics"
	"github.com/zsmartex/nftex/workers/daemons"
	"github.com/zsmartex/nftex/workers/engines"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	if err := mq_client.LoadConfig(mq_client.ConfigPath()); err != nil {
		fmt.Println(err.Error())
		return
	}

	repository := models.NewRepository(config.DataBase)
	if err := repository.Migrate(); err != nil {
		config.Logger.Errorf("Migrate: %v", err)
		return
	}

	cache := info_cache.New(config.Redis, time.Minute)

	m, err := market.New(config.Roots, market.Options{
		Publishers: []events.Publisher{
			repository,
			mq_client.NewEventPublisher(config.Nats, mq_client.GetSubject("events")),
			settlement_metrics.NewRecorder(config.InfluxDB),
		},
		OnDeploy: func(engine *offers.Engine) {
			offer := engine.Offer()
			repository.OfferUpdated(offer)
			cache.PutOffer(offer)
		},
		OnUpdate: func(offer offers.Offer) {
			repository.OfferUpdated(offer)
			cache.PutOffer(offer)
		},
	})
	if err != nil {
		config.Logger.Errorf("Market: %v", err)
		return
	}
	defer m.Stop()

	if err := m.Resume(repository); err != nil {
		config.Logger.Errorf("Resume roots: %v", err)
		return
	}

	stored, err := repository.ActiveOffers()
	if err != nil {
		config.Logger.Errorf("Load offers: %v", err)
		return
	}
	if err := m.Restore(stored); err != nil {
		config.Logger.Errorf("Restore offers: %v", err)
		return
	}

	snapshot := &cron.RootSnapshotJob{Roots: m.Roots(), Cache: cache, Store: repository}
	snapshot.Process()

	cronJob := daemons.NewCronJob(5*time.Second, snapshot)
	cronJob.Start()
	defer cronJob.Stop()

	subject := mq_client.GetSubject("commands")
	queue := mq_client.GetQueue("engine")
	sub, err := config.Nats.QueueSubscribeSync(subject, queue)
	if err != nil {
		config.Logger.Errorf("Subscribe %s: %v", subject, err)
		return
	}
	defer sub.Unsubscribe()

	worker := engines.NewCommandWorker(m, 10*time.Second)
	fmt.Println("Start nftex-engine: " + subject)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-stop:
			config.Logger.Infof("Stop nftex-engine")
			return
		default:
		}

		msg, err := sub.NextMsg(1 * time.Second)
		if err == nats.ErrTimeout {
			continue
		}
		if err != nil {
			config.Logger.Errorf("Receive message: %v", err)
			continue
		}

		worker.Process(msg.Data)
	}
}
