package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"shop/pkg/domain/service"
	"shop/pkg/gateway"
	"shop/pkg/infrastructure/auth"
	"shop/pkg/infrastructure/config"
	"shop/pkg/infrastructure/event"
	"shop/pkg/infrastructure/mysql"
	"shop/pkg/infrastructure/transport"
)

const appID = "shop"

func main() {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name: appID,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API server",
				Action: func(*cli.Context) error {
					return serve(logger)
				},
			},
			{
				Name:  "migrate-up",
				Usage: "apply pending database migrations",
				Action: func(*cli.Context) error {
					return migrateUp(logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("terminated")
	}
}

func migrateUp(logger *log.Logger) error {
	cfg, err := config.Parse(appID)
	if err != nil {
		return err
	}

	db, err := mysql.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := mysql.MigrateUp(db); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func serve(logger *log.Logger) error {
	cfg, err := config.Parse(appID)
	if err != nil {
		return err
	}

	db, err := mysql.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := mysql.MigrateUp(db); err != nil {
		return err
	}

	dispatcher := event.NewLogDispatcher(logger)

	userRepo := mysql.NewUserRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)

	gateways := map[string]gateway.PaymentGateway{
		"mock": gateway.NewMockGateway(),
	}
	gw, ok := gateways[cfg.PaymentProvider]
	if !ok {
		return cli.Exit("unknown payment provider: "+cfg.PaymentProvider, 1)
	}

	authService := service.NewAuthService(
		userRepo,
		auth.NewPasswordManager(),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTokenTTL),
		dispatcher,
	)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, dispatcher)
	orderService := service.NewOrderService(orderRepo, productRepo, dispatcher)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, gw, cfg.GatewayTimeout, dispatcher)

	server := transport.NewServer(
		authService, catalogService, orderService, paymentService,
		gateways, cfg.PaymentCurrency, logger,
	)

	httpServer := &http.Server{
		Addr:    cfg.ServeRESTAddress,
		Handler: server.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.WithField("address", cfg.ServeRESTAddress).Info("server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Sweeps payments stuck in created after a failed gateway call, freeing
	// the active-payment slot of their orders.
	group.Go(func() error {
		ticker := time.NewTicker(cfg.StalePaymentSweepRate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				swept, err := paymentService.ExpireStaleCreated(cfg.StalePaymentMaxAge)
				if err != nil {
					logger.WithError(err).Error("stale payment sweep failed")
					continue
				}
				if swept > 0 {
					logger.WithField("count", swept).Info("cancelled stale payments")
				}
			}
		}
	})

	return group.Wait()
}
