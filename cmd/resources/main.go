package main

import (
	"hopper/internal/resources/handler"
	"hopper/internal/resources/repository"
	"hopper/internal/resources/service"
	"hopper/internal/resources/validator"
	"hopper/pkg/app"
	"hopper/pkg/config"
)

const ServiceName = "resources"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Resources service")
	resourceService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewResourceHandler(resourceService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ResourceService {
	resourceValidator := validator.NewResourceValidator(cfg.Log)
	resourceRepo := repository.NewMongoResourceRepository(cfg)
	siteRepo := repository.NewMongoSiteRepository(cfg)
	resourceService := service.NewResourceService(
		resourceRepo,
		siteRepo,
		resourceValidator,
		cfg,
	)

	cfg.Log.Info("Resource service initialized", "database", cfg.MongoDatabaseName)
	return resourceService
}
