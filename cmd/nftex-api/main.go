package main

import (
	"fmt"
	"os"
	"time"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/controllers"
	"github.com/zsmartex/nftex/models"
	"github.com/zsmartex/nftex/mq_client"
	"github.com/zsmartex/nftex/routes"
	"github.com/zsmartex/nftex/services/info_cache"
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

	r := routes.SetupRouter(controllers.Deps{
		Roots:           config.Roots,
		Cache:           info_cache.New(config.Redis, 5*time.Second),
		Events:          models.NewRepository(config.DataBase),
		Commands:        config.Nats,
		CommandsSubject: mq_client.GetSubject("commands"),
	})

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "3000"
	}

	if err := r.Listen(":" + port); err != nil {
		config.Logger.Errorf("Listen: %v", err)
	}
}
