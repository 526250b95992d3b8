package main

import (
	"hopper/internal/contracts/handler"
	"hopper/internal/contracts/repository"
	"hopper/internal/contracts/service"
	"hopper/pkg/app"
	"hopper/pkg/config"
)

const ServiceName = "contracts"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Contracts service")
	contractService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewContractHandler(contractService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ContractService {
	contractRepo := repository.NewMongoContractRepository(cfg)
	userRepo := repository.NewMongoUserRepository(cfg)
	contractService := service.NewContractService(contractRepo, userRepo, cfg)

	cfg.Log.Info("Contract service initialized", "database", cfg.MongoDatabaseName)
	return contractService
}
