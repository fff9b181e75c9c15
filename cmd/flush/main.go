// Command flush clears festival data between rehearsals and the live event.
//
//	go run ./cmd/flush --registrations
//	go run ./cmd/flush --catalog --reseed
//
// Ticket numbering is never reset; registrations issued after a flush
// continue from the last number handed out.
package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/urcet/yourfest-api/internal/config"
	"github.com/urcet/yourfest-api/internal/db"
	"github.com/urcet/yourfest-api/internal/logger"
	"github.com/urcet/yourfest-api/internal/repository"
	"github.com/urcet/yourfest-api/internal/service"
)

type options struct {
	configPath    string
	registrations bool
	catalog       bool
	reseed        bool
}

func main() {
	opts := options{}
	pflag.StringVarP(&opts.configPath, "config", "c", "./cmd/app/config.yml", "path to the config file")
	pflag.BoolVarP(&opts.registrations, "registrations", "r", false, "delete every registration")
	pflag.BoolVar(&opts.catalog, "catalog", false, "delete every event and stall")
	pflag.BoolVar(&opts.reseed, "reseed", false, "load the default catalog after flushing")
	pflag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if !opts.registrations && !opts.catalog && !opts.reseed {
		return fmt.Errorf("nothing to do, pass --registrations, --catalog or --reseed")
	}

	conf, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	if conf.Storage.Driver == config.StorageDriverMemory {
		return fmt.Errorf("storage driver is %q, there is nothing persistent to flush", conf.Storage.Driver)
	}

	storage, err := db.OpenStorage(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize storage -> %w", err)
	}
	defer storage.Close()

	catalogRepo := repository.NewCatalogRepository(storage.Catalog)
	catalogSvc := service.NewCatalogService(catalogRepo)
	registrationSvc := service.NewRegistrationService(
		repository.NewRegistrationRepository(storage.Registrations),
		catalogRepo,
		nil,
		conf.Ticket.Prefix,
		service.IssueHooks{},
	)

	if opts.registrations {
		n, err := registrationSvc.Clear(ctx)
		if err != nil {
			return fmt.Errorf("registrationSvc.Clear -> %w", err)
		}
		zap.L().Info("registrations cleared", zap.Int64("deleted", n))
	}

	if opts.catalog {
		if err = catalogSvc.Clear(ctx); err != nil {
			return fmt.Errorf("catalogSvc.Clear -> %w", err)
		}
		zap.L().Info("catalog cleared")
	}

	if opts.reseed {
		result, err := catalogSvc.Seed(ctx)
		if err != nil {
			return fmt.Errorf("catalogSvc.Seed -> %w", err)
		}
		zap.L().Info("catalog seeded", zap.Int("events", result.Events), zap.Int("stalls", result.Stalls))
	}

	return nil
}
