package main

import (
	"hopper/internal/credits/handler"
	"hopper/internal/credits/repository"
	"hopper/internal/credits/service"
	"hopper/pkg/app"
	"hopper/pkg/config"
)

const ServiceName = "credits"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Credits service")
	creditService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewCreditHandler(creditService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.CreditService {
	creditRepo := repository.NewMongoCreditRepository(cfg)
	creditService := service.NewCreditService(creditRepo, cfg)

	cfg.Log.Info("Credit service initialized", "database", cfg.MongoDatabaseName)
	return creditService
}
