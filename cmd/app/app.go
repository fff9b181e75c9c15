package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/urcet/yourfest-api/internal/api"
	"github.com/urcet/yourfest-api/internal/config"
	"github.com/urcet/yourfest-api/internal/db"
	"github.com/urcet/yourfest-api/internal/feed"
	"github.com/urcet/yourfest-api/internal/logger"
	"github.com/urcet/yourfest-api/internal/notification"
	"github.com/urcet/yourfest-api/internal/pkg/archive"
	"github.com/urcet/yourfest-api/internal/pkg/mailer"
	"github.com/urcet/yourfest-api/internal/pkg/ticketqr"
	"github.com/urcet/yourfest-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	storage, err := db.OpenStorage(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize storage -> %w", err)
	}
	defer storage.Close()

	encoder, err := ticketqr.NewGenerator(conf.Ticket.AppURL, ticketqr.Options{
		Size:          conf.QR.Size,
		Foreground:    conf.QR.Foreground,
		Background:    conf.QR.Background,
		DisableBorder: conf.QR.DisableBorder,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize ticket codes -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher, err := newDispatcher(conf.Mail)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications -> %w", err)
	}
	if err = dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start notifications -> %w", err)
	}

	hub := feed.NewHub()
	go hub.Run(ctx)

	hooks := service.IssueHooks{
		Notifier:  dispatcher,
		Publisher: hub,
	}
	if conf.Archive.Enabled {
		store, err := archive.NewR2(ctx, archive.Config{
			AccountID:       conf.Archive.AccountID,
			AccessKeyID:     conf.Archive.AccessKeyID,
			AccessKeySecret: conf.Archive.AccessKeySecret,
			Bucket:          conf.Archive.Bucket,
			PublicBaseURL:   conf.Archive.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize archive -> %w", err)
		}
		hooks.Archiver = store
	}

	s := api.NewServer(conf, api.Deps{
		CatalogDAO:      storage.Catalog,
		RegistrationDAO: storage.Registrations,
		Encoder:         encoder,
		Hooks:           hooks,
		Feed:            hub,
	})

	if conf.Catalog.SeedOnStart {
		seeded, err := s.CatalogService.SeedIfEmpty(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed catalog -> %w", err)
		}
		if seeded {
			zap.L().Info("catalog was empty, loaded the default events and stalls")
		}
	}

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("srv.Shutdown", zap.Error(err))
	}
	if err = dispatcher.Stop(shutdownCtx); err != nil {
		zap.L().Error("dispatcher.Stop", zap.Error(err))
	}

	return nil
}

func newDispatcher(conf *config.MailConfig) (*notification.Dispatcher, error) {
	var sender notification.Sender = notification.DisabledSender{}
	if conf.Enabled {
		sender = mailer.New(mailer.Config{
			Host:        conf.Host,
			Port:        conf.Port,
			Username:    conf.Username,
			Password:    conf.Password,
			FromName:    conf.FromName,
			FromAddress: conf.FromAddress,
		})
	}

	return notification.NewDispatcher(sender, notification.Options{
		Email: notification.EmailOptions{
			FestName:     conf.FromName,
			DeskLocation: conf.DeskLocation,
		},
		Workers:            conf.Workers,
		QueueSize:          conf.QueueSize,
		AttemptTimeout:     conf.Timeout,
		MaxRetries:         conf.MaxRetries,
		RedeliveryInterval: conf.RedeliveryInterval,
	})
}
